package ledger

import (
	"errors"
	"fmt"
)

// Category is the normalized ledger failure taxonomy.
type Category string

const (
	// CategoryTransport covers network failures, timeouts, 5xx responses, an
	// open circuit and a caller giving up before dispatch. It is retryable
	// unless a submission may have reached the node.
	CategoryTransport Category = "transport"
	// CategoryRPC is a well-formed error object from the node (bad params, etc.).
	CategoryRPC Category = "rpc"
	// CategorySigningCancelled means the signer declined.
	CategorySigningCancelled Category = "signing_cancelled"
	// CategoryExecutionAborted means the transaction executed but created nothing.
	CategoryExecutionAborted Category = "execution_aborted"
	// CategoryDecode means the node answered with something we could not parse.
	CategoryDecode Category = "decode"
	CategoryInternal Category = "internal"
)

// Error wraps ledger failures with a category.
type Error struct {
	Category   Category
	Op         string
	Message    string
	Digest     string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("ledger %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("ledger %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches category sentinels such as ErrTransport.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Category == e.Category
}

// NewError creates a categorized ledger error. Only transport failures are retryable.
func NewError(category Category, op, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Op:         op,
		Message:    message,
		Underlying: underlying,
		Retryable:  category == CategoryTransport,
	}
}

// Category sentinels for errors.Is.
var (
	ErrTransport        = &Error{Category: CategoryTransport}
	ErrRPC              = &Error{Category: CategoryRPC}
	ErrSigningCancelled = &Error{Category: CategorySigningCancelled}
	ErrExecutionAborted = &Error{Category: CategoryExecutionAborted}
	ErrDecode           = &Error{Category: CategoryDecode}
)

// IsRetryable reports whether the caller may retry with backoff.
func IsRetryable(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to CategoryInternal.
func GetCategory(err error) Category {
	var le *Error
	if errors.As(err, &le) {
		return le.Category
	}
	return CategoryInternal
}
