package ledger

import (
	dErrors "certledger/pkg/domain-errors"
)

// DomainCode maps a ledger failure to the domain error code surfaced to callers.
func DomainCode(err error) dErrors.Code {
	switch GetCategory(err) {
	case CategoryTransport, CategoryRPC, CategoryDecode:
		return dErrors.CodeLedgerUnavailable
	case CategorySigningCancelled:
		return dErrors.CodeSigningCancelled
	case CategoryExecutionAborted:
		return dErrors.CodeExecutionAborted
	default:
		return dErrors.CodeInternal
	}
}

// ToDomain wraps err with its domain code, keeping the ledger error in the chain.
func ToDomain(err error, msg string) error {
	if err == nil {
		return nil
	}
	return dErrors.Wrap(err, DomainCode(err), msg)
}
