// Package models holds the mint request aggregate and its lifecycle rules.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"certledger/internal/issuer"
	"certledger/pkg/domain"
	dErrors "certledger/pkg/domain-errors"
)

// Status is the lifecycle state of a mint request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	// StatusMinting marks an in-flight claim taken before the ledger call.
	StatusMinting Status = "minting"
	StatusMinted  Status = "minted"
)

// ParseStatus returns the status named by s, or an error for unknown values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected, StatusMinting, StatusMinted:
		return st, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown status %q", s))
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusMinted || s == StatusRejected
}

// HoldsSlot reports whether a request in this state occupies the
// (wallet, course) slot.
func (s Status) HoldsSlot() bool {
	return s != StatusRejected
}

type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Completion struct {
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completedAt,omitempty"`
}

type Preview struct {
	URL  string `json:"url,omitempty"`
	Hash string `json:"hash,omitempty"`
}

// AdminDecision records the reviewer's verdict. Written once.
type AdminDecision struct {
	Status     Status    `json:"status"`
	ReviewedBy string    `json:"reviewedBy"`
	ReviewedAt time.Time `json:"reviewedAt"`
	Note       string    `json:"note,omitempty"`
}

type MintResult struct {
	TransactionDigest string    `json:"transactionDigest"`
	ObjectID          string    `json:"objectId"`
	MintedAt          time.Time `json:"mintedAt"`
}

// MintFailure describes the most recent failed mint attempt.
type MintFailure struct {
	Code              dErrors.Code `json:"code"`
	TransactionDigest string       `json:"transactionDigest,omitempty"`
	Message           string       `json:"message"`
	At                time.Time    `json:"at"`
}

// MintRequest is a learner's request for a credential.
type MintRequest struct {
	RequestID          string         `json:"requestId"`
	RecipientWallet    string         `json:"recipientWallet"`
	DisplayName        string         `json:"displayName"`
	Course             Course         `json:"course"`
	Completion         Completion     `json:"completion"`
	CertificatePreview Preview        `json:"certificatePreview"`
	Status             Status         `json:"status"`
	Decision           *AdminDecision `json:"decision,omitempty"`
	MintResult         *MintResult    `json:"mintResult,omitempty"`
	LastMintFailure    *MintFailure   `json:"lastMintFailure,omitempty"`
	MintAttempts       int            `json:"mintAttempts"`
	SubmittedAt        time.Time      `json:"submittedAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Version            int64          `json:"version"`
}

// Clone returns a deep copy so callers never share pointers with a store.
func (r *MintRequest) Clone() *MintRequest {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Decision != nil {
		d := *r.Decision
		cp.Decision = &d
	}
	if r.MintResult != nil {
		m := *r.MintResult
		cp.MintResult = &m
	}
	if r.LastMintFailure != nil {
		f := *r.LastMintFailure
		cp.LastMintFailure = &f
	}
	return &cp
}

// SlotKey identifies the (wallet, course) pair a request occupies.
func (r *MintRequest) SlotKey() string {
	return r.RecipientWallet + "|" + r.Course.ID
}

// ValidateDecide allows a decision only on pending requests.
func ValidateDecide(r *MintRequest) error {
	if r.Status != StatusPending {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("request %s is %s, not pending", r.RequestID, r.Status))
	}
	return nil
}

// ValidateClaim allows a mint claim only on approved requests.
func ValidateClaim(r *MintRequest) error {
	switch r.Status {
	case StatusApproved:
		return nil
	case StatusMinting, StatusMinted:
		return dErrors.New(dErrors.CodeAlreadyMinted,
			fmt.Sprintf("request %s is already %s", r.RequestID, r.Status))
	default:
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("request %s is %s, not approved", r.RequestID, r.Status))
	}
}

// ValidateInFlight guards the completion of a claim.
func ValidateInFlight(r *MintRequest) error {
	if r.Status != StatusMinting {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("request %s is %s, not minting", r.RequestID, r.Status))
	}
	return nil
}

// Reconciliation is an operator's resolution of a request held in minting.
// An ObjectID names the credential the held transaction created; without
// one the claim is released so the mint can be retried.
type Reconciliation struct {
	ObjectID          string
	TransactionDigest string
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	Status          Status
	SubmittedBefore time.Time
	Limit           int
}

// Matches reports whether r passes the filter, ignoring Limit.
func (f ListFilter) Matches(r *MintRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.SubmittedBefore.IsZero() && !r.SubmittedAt.Before(f.SubmittedBefore) {
		return false
	}
	return true
}

const (
	maxDisplayNameLen = 128
	maxCourseIDLen    = 64
	maxCourseNameLen  = 256
	maxPreviewURLLen  = 2048
)

// SubmitRequest is the learner-supplied payload.
type SubmitRequest struct {
	RecipientWallet    string     `json:"recipientWallet"`
	DisplayName        string     `json:"displayName"`
	Course             Course     `json:"course"`
	Completion         Completion `json:"completion"`
	CertificatePreview Preview    `json:"certificatePreview"`
}

func (r *SubmitRequest) Sanitize() {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	r.Course.ID = strings.TrimSpace(r.Course.ID)
	r.Course.Name = strings.TrimSpace(r.Course.Name)
	r.Completion.CompletedAt = strings.TrimSpace(r.Completion.CompletedAt)
	r.CertificatePreview.URL = strings.TrimSpace(r.CertificatePreview.URL)
	r.CertificatePreview.Hash = strings.TrimSpace(r.CertificatePreview.Hash)
}

func (r *SubmitRequest) Normalize() {
	r.RecipientWallet = issuer.Normalize(r.RecipientWallet)
	r.CertificatePreview.Hash = strings.ToLower(r.CertificatePreview.Hash)
}

func (r *SubmitRequest) Validate() error {
	if r.RecipientWallet == "" {
		return dErrors.New(dErrors.CodeValidation, "recipientWallet is required")
	}
	if !domain.IsLedgerAddress(r.RecipientWallet) {
		return dErrors.New(dErrors.CodeValidation, "recipientWallet is not a ledger address")
	}
	if r.DisplayName == "" {
		return dErrors.New(dErrors.CodeValidation, "displayName is required")
	}
	if utf8.RuneCountInString(r.DisplayName) > maxDisplayNameLen {
		return dErrors.New(dErrors.CodeValidation, "displayName is too long")
	}
	if r.Course.ID == "" {
		return dErrors.New(dErrors.CodeValidation, "course.id is required")
	}
	if len(r.Course.ID) > maxCourseIDLen {
		return dErrors.New(dErrors.CodeValidation, "course.id is too long")
	}
	if utf8.RuneCountInString(r.Course.Name) > maxCourseNameLen {
		return dErrors.New(dErrors.CodeValidation, "course.name is too long")
	}
	if r.Completion.CompletedAt != "" {
		if _, err := time.Parse(time.RFC3339, r.Completion.CompletedAt); err != nil {
			return dErrors.New(dErrors.CodeValidation, "completion.completedAt must be RFC 3339")
		}
	}
	if len(r.CertificatePreview.URL) > maxPreviewURLLen {
		return dErrors.New(dErrors.CodeValidation, "certificatePreview.url is too long")
	}
	return nil
}

// NewMintRequest builds a pending request from a prepared payload.
func NewMintRequest(id string, req SubmitRequest, now time.Time) *MintRequest {
	return &MintRequest{
		RequestID:          id,
		RecipientWallet:    req.RecipientWallet,
		DisplayName:        req.DisplayName,
		Course:             req.Course,
		Completion:         req.Completion,
		CertificatePreview: req.CertificatePreview,
		Status:             StatusPending,
		SubmittedAt:        now,
		UpdatedAt:          now,
		Version:            1,
	}
}
