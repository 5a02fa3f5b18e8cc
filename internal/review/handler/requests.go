package handler

import (
	"strings"

	"certledger/internal/review/models"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// DecisionRequest is the body of POST /admin/requests/{requestId}/decision.
type DecisionRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note"`

	status models.Status
}

func (r *DecisionRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Note = strings.TrimSpace(r.Note)
}

func (r *DecisionRequest) Normalize() {
	if r == nil {
		return
	}
	r.Outcome = strings.ToLower(strings.TrimSpace(r.Outcome))
}

func (r *DecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Outcome == "" {
		return dErrors.New(dErrors.CodeValidation, "outcome is required")
	}
	status, err := models.ParseStatus(r.Outcome)
	if err != nil {
		return err
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return dErrors.New(dErrors.CodeValidation, "outcome must be approved or rejected")
	}
	r.status = status
	return nil
}

// Status returns the validated outcome.
func (r *DecisionRequest) Status() models.Status {
	return r.status
}

// ReconcileRequest is the body of POST /admin/requests/{requestId}/reconcile.
// An empty objectId releases the held claim.
type ReconcileRequest struct {
	ObjectID          string `json:"objectId"`
	TransactionDigest string `json:"transactionDigest"`
}

func (r *ReconcileRequest) Sanitize() {
	if r == nil {
		return
	}
	r.ObjectID = strings.TrimSpace(r.ObjectID)
	r.TransactionDigest = strings.TrimSpace(r.TransactionDigest)
}

func (r *ReconcileRequest) Normalize() {
	if r == nil {
		return
	}
	r.ObjectID = strings.ToLower(r.ObjectID)
}

func (r *ReconcileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.ObjectID != "" && !domain.IsLedgerAddress(r.ObjectID) {
		return dErrors.New(dErrors.CodeValidation, "objectId is not a ledger object id")
	}
	if r.ObjectID == "" && r.TransactionDigest != "" {
		return dErrors.New(dErrors.CodeValidation, "transactionDigest requires objectId")
	}
	return nil
}

func (r *ReconcileRequest) Reconciliation() models.Reconciliation {
	return models.Reconciliation{ObjectID: r.ObjectID, TransactionDigest: r.TransactionDigest}
}

// parseListFilter reads the status query parameter.
func parseListFilter(status string) (models.ListFilter, error) {
	if strings.TrimSpace(status) == "" {
		return models.ListFilter{}, nil
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return models.ListFilter{}, err
	}
	return models.ListFilter{Status: st}, nil
}
