package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certledger/pkg/domain-errors"
)

const wallet = "0x00000000000000000000000000000000000000000000000000000000000000aa"

func validSubmit() SubmitRequest {
	return SubmitRequest{
		RecipientWallet: "  0x00000000000000000000000000000000000000000000000000000000000000AA ",
		DisplayName:     " Ada Lovelace ",
		Course:          Course{ID: " GO-101 ", Name: "Go Basics"},
		Completion:      Completion{Completed: true, CompletedAt: "2026-02-01T10:00:00Z"},
	}
}

func prepare(r *SubmitRequest) error {
	r.Sanitize()
	r.Normalize()
	return r.Validate()
}

func TestSubmitRequestPrepare(t *testing.T) {
	t.Run("canonicalizes fields", func(t *testing.T) {
		r := validSubmit()
		require.NoError(t, prepare(&r))
		assert.Equal(t, wallet, r.RecipientWallet)
		assert.Equal(t, "Ada Lovelace", r.DisplayName)
		assert.Equal(t, "GO-101", r.Course.ID)
	})

	cases := map[string]func(*SubmitRequest){
		"missing wallet":       func(r *SubmitRequest) { r.RecipientWallet = "" },
		"malformed wallet":     func(r *SubmitRequest) { r.RecipientWallet = "0xnothex" },
		"missing display name": func(r *SubmitRequest) { r.DisplayName = "   " },
		"long display name":    func(r *SubmitRequest) { r.DisplayName = strings.Repeat("a", 129) },
		"missing course":       func(r *SubmitRequest) { r.Course.ID = "" },
		"long course id":       func(r *SubmitRequest) { r.Course.ID = strings.Repeat("c", 65) },
		"bad completion time":  func(r *SubmitRequest) { r.Completion.CompletedAt = "yesterday" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validSubmit()
			mutate(&r)
			err := prepare(&r)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestTransitionGuards(t *testing.T) {
	req := func(s Status) *MintRequest { return &MintRequest{RequestID: "r1", Status: s} }

	assert.NoError(t, ValidateDecide(req(StatusPending)))
	for _, s := range []Status{StatusApproved, StatusRejected, StatusMinting, StatusMinted} {
		assert.True(t, dErrors.HasCode(ValidateDecide(req(s)), dErrors.CodeInvalidTransition), s)
	}

	assert.NoError(t, ValidateClaim(req(StatusApproved)))
	assert.True(t, dErrors.HasCode(ValidateClaim(req(StatusMinting)), dErrors.CodeAlreadyMinted))
	assert.True(t, dErrors.HasCode(ValidateClaim(req(StatusMinted)), dErrors.CodeAlreadyMinted))
	assert.True(t, dErrors.HasCode(ValidateClaim(req(StatusPending)), dErrors.CodeInvalidTransition))
	assert.True(t, dErrors.HasCode(ValidateClaim(req(StatusRejected)), dErrors.CodeInvalidTransition))

	assert.NoError(t, ValidateInFlight(req(StatusMinting)))
	assert.Error(t, ValidateInFlight(req(StatusApproved)))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, st)

	_, err = ParseStatus("archived")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCloneIsDeep(t *testing.T) {
	r := &MintRequest{Decision: &AdminDecision{Note: "ok"}, MintResult: &MintResult{ObjectID: "0x1"}}
	cp := r.Clone()
	cp.Decision.Note = "changed"
	cp.MintResult.ObjectID = "0x2"
	assert.Equal(t, "ok", r.Decision.Note)
	assert.Equal(t, "0x1", r.MintResult.ObjectID)
}

func TestListFilterMatches(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	r := &MintRequest{Status: StatusPending, SubmittedAt: now}

	assert.True(t, ListFilter{}.Matches(r))
	assert.True(t, ListFilter{Status: StatusPending}.Matches(r))
	assert.False(t, ListFilter{Status: StatusApproved}.Matches(r))
	assert.True(t, ListFilter{SubmittedBefore: now.Add(time.Second)}.Matches(r))
	assert.False(t, ListFilter{SubmittedBefore: now}.Matches(r))
}
