package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "certledger/pkg/platform/audit"
)

// payloadMatcher checks the JSON payload carries the expected action.
type payloadMatcher struct{ action string }

func (m payloadMatcher) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}
	var p outboxPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	return p.Action == m.action && p.Category == string(audit.CategoryCompliance)
}

func TestAppendWritesOutboxRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store := New(db)
	store.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs(sqlmock.AnyArg(), "mint_request", "01HXREQ", "certificate_minted", payloadMatcher{action: "certificate_minted"}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Append(context.Background(), audit.Event{
		Subject:   "01HXREQ",
		Action:    string(audit.EventCertificateMinted),
		Timestamp: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendWrapsInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).WillReturnError(errors.New("connection reset"))

	err = New(db).Append(context.Background(), audit.Event{Action: string(audit.EventMintFailed)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert outbox entry")
}
