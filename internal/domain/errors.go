package domain

import "errors"

var (
	// ErrNotFound marks a referenced user, module or unit that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks caller input the ledger refuses to act on.
	ErrValidation = errors.New("invalid input")

	// ErrDuplicate is a unique-constraint hit at the storage layer. Services
	// turn it into an already-completed / already-submitted outcome.
	ErrDuplicate = errors.New("duplicate record")

	// ErrTransaction wraps storage failures that aborted a transaction.
	// Nothing was committed; the operation may be retried.
	ErrTransaction = errors.New("transaction failed")
)

// IsRetryable reports whether err came from an aborted transaction rather
// than from bad input or a missing entity.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrDuplicate) {
		return false
	}
	return errors.Is(err, ErrTransaction)
}
