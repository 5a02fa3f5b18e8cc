// Package store persists mint requests.
//
// Error contract for every implementation:
//   - sentinel.ErrNotFound when the request does not exist
//   - sentinel.ErrConflict when a conditional write loses against a concurrent
//     writer, or when Create would give a (wallet, course) pair a second
//     non-rejected request
//   - errors returned by a validate callback are passed through unchanged and
//     nothing is written
package store

import (
	"context"

	"certledger/internal/review/models"
)

// ValidateFunc inspects the current state and rejects the write by returning an error.
type ValidateFunc func(*models.MintRequest) error

// MutateFunc applies the transition. The store bumps Version afterwards.
type MutateFunc func(*models.MintRequest)

type Store interface {
	Create(ctx context.Context, req *models.MintRequest) error
	FindByID(ctx context.Context, requestID string) (*models.MintRequest, error)
	// List returns requests ordered by submittedAt, then requestId.
	List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error)
	// Execute loads the request, runs validate and mutate against it and
	// persists the result only if no other writer got there first. Returns the
	// updated copy.
	Execute(ctx context.Context, requestID string, validate ValidateFunc, mutate MutateFunc) (*models.MintRequest, error)
}
