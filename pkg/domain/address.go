// Package domain holds small value helpers shared across bounded contexts.
package domain

import (
	"strings"
)

// maxAddressHexLen is the hex length of a 32-byte ledger address.
const maxAddressHexLen = 64

// IsLedgerAddress reports whether s looks like a canonical ledger address:
// "0x" followed by 1 to 64 lower-case hex digits. Callers normalize first.
func IsLedgerAddress(s string) bool {
	hex, ok := strings.CutPrefix(s, "0x")
	if !ok || hex == "" || len(hex) > maxAddressHexLen {
		return false
	}
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
