// Package errors defines typed errors with categories for user-friendly reporting.
// Each Kind maps to a process exit code so the CLI can report what failed
// without parsing messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// FileMissing indicates the SQL script does not exist.
	FileMissing Kind = "file_missing"
	// FileUnreadable indicates the SQL script exists but could not be read or decoded.
	FileUnreadable Kind = "file_unreadable"
	// InvalidDSN indicates no usable connection string could be resolved.
	InvalidDSN Kind = "invalid_dsn"
	// ConnectionFailed indicates the database could not be reached.
	ConnectionFailed Kind = "connection_failed"
	// BatchFailed indicates the batch was rolled back.
	BatchFailed Kind = "batch_failed"
	// StatementsReported indicates the batch committed with reported failures
	// and strict mode was requested.
	StatementsReported Kind = "statements_reported"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "".
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err to a process exit status: 0 for nil, a kind-specific
// code for typed errors and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case FileMissing, FileUnreadable:
		return 2
	case InvalidDSN, ConnectionFailed:
		return 3
	case BatchFailed:
		return 4
	case StatementsReported:
		return 5
	default:
		return 1
	}
}
