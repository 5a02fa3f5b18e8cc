package attrs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	args := []any{
		"mint_request_id", "R1",
		"attempts", 2,
		slog.String("actor", "0xad"),
		"decision", "approved",
		"dangling",
	}

	assert.Equal(t, "R1", ExtractString(args, "mint_request_id"))
	assert.Equal(t, "0xad", ExtractString(args, "actor"))
	assert.Equal(t, "approved", ExtractString(args, "decision"))
	assert.Empty(t, ExtractString(args, "attempts"), "non-string values are ignored")
	assert.Empty(t, ExtractString(args, "dangling"))
	assert.Empty(t, ExtractString(nil, "actor"))
}
