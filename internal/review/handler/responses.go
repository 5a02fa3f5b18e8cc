package handler

import "certledger/internal/review/models"

// ListResponse is the response for GET /admin/requests.
type ListResponse struct {
	Requests []*models.MintRequest `json:"requests"`
}
