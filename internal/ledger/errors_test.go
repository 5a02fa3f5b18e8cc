package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorRetryability(t *testing.T) {
	cases := []struct {
		category  Category
		retryable bool
	}{
		{CategoryTransport, true},
		{CategoryRPC, false},
		{CategorySigningCancelled, false},
		{CategoryExecutionAborted, false},
		{CategoryDecode, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.category), func(t *testing.T) {
			err := NewError(tc.category, "sui_getObject", "failed", nil)
			assert.Equal(t, tc.retryable, IsRetryable(err))
			assert.Equal(t, tc.category, GetCategory(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestErrorMatchesCategorySentinels(t *testing.T) {
	err := fmt.Errorf("list: %w", NewError(CategoryTransport, "suix_getOwnedObjects", "timeout", context.DeadlineExceeded))

	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrRPC)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")
	assert.False(t, IsRetryable(err))
	assert.Equal(t, CategoryInternal, GetCategory(err))
}

func TestTargetFormatting(t *testing.T) {
	d := TransactionDescriptor{Package: "0x2", Module: "certificate", Function: "mint_certificate"}
	assert.Equal(t, "0x2::certificate::mint_certificate", d.Target())
}
