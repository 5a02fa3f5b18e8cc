package handler

import (
	"strings"

	dErrors "certledger/pkg/domain-errors"
)

const maxBatchIDs = 50

// VerifyBatchRequest is the body of POST /certificates/verify.
type VerifyBatchRequest struct {
	ObjectIDs []string `json:"object_ids"`
}

func (r *VerifyBatchRequest) Normalize() {
	if r == nil {
		return
	}
	for i, id := range r.ObjectIDs {
		r.ObjectIDs[i] = strings.ToLower(strings.TrimSpace(id))
	}
}

func (r *VerifyBatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.ObjectIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "object_ids is required")
	}
	if len(r.ObjectIDs) > maxBatchIDs {
		return dErrors.New(dErrors.CodeValidation, "object_ids must contain at most 50 ids")
	}
	return nil
}
