// Package issuer decides which ledger addresses are trusted credential issuers.
//
// A Policy is built once at startup and never mutated, so concurrent readers
// need no locking. Building a new Policy is the only way to change the set.
package issuer

import (
	"sort"
	"strings"
)

// Normalize canonicalizes a ledger address by trimming whitespace and
// lower-casing. Empty input yields "", which never matches a policy entry.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Policy is an immutable set of canonical issuer addresses.
type Policy struct {
	trusted map[string]struct{}
}

// NewPolicy builds a policy from raw addresses. Entries are canonicalized and
// blanks are dropped.
func NewPolicy(addresses ...string) *Policy {
	trusted := make(map[string]struct{}, len(addresses))
	for _, addr := range addresses {
		if canonical := Normalize(addr); canonical != "" {
			trusted[canonical] = struct{}{}
		}
	}
	return &Policy{trusted: trusted}
}

// IsTrustedIssuer reports whether address is in the trusted set.
func (p *Policy) IsTrustedIssuer(address string) bool {
	if p == nil {
		return false
	}
	canonical := Normalize(address)
	if canonical == "" {
		return false
	}
	_, ok := p.trusted[canonical]
	return ok
}

// Addresses returns the trusted set in sorted order.
func (p *Policy) Addresses() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.trusted))
	for addr := range p.trusted {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of trusted issuers.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.trusted)
}
