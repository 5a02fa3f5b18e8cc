package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"certledger/internal/review/models"
	"certledger/pkg/platform/sentinel"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const (
	insertRequest = `
		INSERT INTO mint_requests (request_id, recipient_wallet, course_id, status, submitted_at, updated_at, version, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectRequest = `SELECT document FROM mint_requests WHERE request_id = $1`

	selectRequestForUpdate = `SELECT document FROM mint_requests WHERE request_id = $1 FOR UPDATE`

	updateRequest = `
		UPDATE mint_requests
		SET status = $3, updated_at = $4, version = $5, document = $6
		WHERE request_id = $1 AND version = $2`

	listRequests = `
		SELECT document FROM mint_requests
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR submitted_at < $2)
		ORDER BY submitted_at ASC, request_id ASC
		LIMIT $3`
)

// PostgresStore keeps each request as a JSONB document next to the columns
// used for filtering, uniqueness and optimistic locking.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, req *models.MintRequest) error {
	if req == nil {
		return fmt.Errorf("mint request is required")
	}
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal mint request: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertRequest,
		req.RequestID,
		req.RecipientWallet,
		req.Course.ID,
		string(req.Status),
		req.SubmittedAt,
		req.UpdatedAt,
		req.Version,
		doc,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create mint request: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create mint request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID string) (*models.MintRequest, error) {
	return scanDocument(s.db.QueryRowContext(ctx, selectRequest, requestID))
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.MintRequest, error) {
	var before sql.NullTime
	if !filter.SubmittedBefore.IsZero() {
		before = sql.NullTime{Time: filter.SubmittedBefore, Valid: true}
	}
	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, listRequests, string(filter.Status), before, limit)
	if err != nil {
		return nil, fmt.Errorf("list mint requests: %w", err)
	}
	defer rows.Close()

	out := make([]*models.MintRequest, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan mint request: %w", err)
		}
		req, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mint requests: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Execute(ctx context.Context, requestID string, validate ValidateFunc, mutate MutateFunc) (*models.MintRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin request execute tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	req, err := scanDocument(tx.QueryRowContext(ctx, selectRequestForUpdate, requestID))
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	loaded := req.Version
	mutate(req)
	req.Version = loaded + 1

	doc, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal mint request: %w", err)
	}
	result, err := tx.ExecContext(ctx, updateRequest,
		requestID,
		loaded,
		string(req.Status),
		req.UpdatedAt,
		req.Version,
		doc,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update mint request: %w", sentinel.ErrConflict)
		}
		return nil, fmt.Errorf("update mint request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("request %s changed concurrently: %w", requestID, sentinel.ErrConflict)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit request execute: %w", err)
	}
	return req, nil
}

func scanDocument(row *sql.Row) (*models.MintRequest, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find mint request: %w", err)
	}
	return decodeDocument(doc)
}

func decodeDocument(doc []byte) (*models.MintRequest, error) {
	var req models.MintRequest
	if err := json.Unmarshal(doc, &req); err != nil {
		return nil, fmt.Errorf("unmarshal mint request: %w", err)
	}
	return &req, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ Store = (*PostgresStore)(nil)
