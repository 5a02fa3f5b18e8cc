package handler

import "certledger/internal/certificate/models"

// ListResponse is the response for GET /wallets/{address}/certificates.
type ListResponse struct {
	Wallet       string              `json:"wallet"`
	Certificates []models.Credential `json:"certificates"`
}

// VerifyBatchResponse is the response for POST /certificates/verify.
type VerifyBatchResponse struct {
	Results []models.VerificationResult `json:"results"`
}
