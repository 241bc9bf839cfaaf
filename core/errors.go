package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup misses: a wallet with no stored
	// record, a content address with no payload, or a ledger address with no
	// account. It is a soft miss, not a transport failure.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable is returned when the content storage network
	// cannot be reached for a write. No retry is performed; callers retry
	// if desired.
	ErrStoreUnavailable = errors.New("content store unavailable")
)

// ValidationError reports a local pre-flight check failure. It is raised
// before any network call is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// SubmissionError reports a ledger-side transaction rejection: insufficient
// balance, malformed instruction, or a create-only slot already occupied by a
// prior write.
type SubmissionError struct {
	Address string // derived ledger address targeted by the write
	Err     error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("ledger submission to %s failed: %v", e.Address, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *SubmissionError) Unwrap() error { return e.Err }

// FetchError reports a content-network read failure: unreachable gateway,
// unexpected HTTP status, or an undecodable payload. A clean miss is
// ErrNotFound instead.
type FetchError struct {
	CID string
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch of %s failed: %v", e.CID, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *FetchError) Unwrap() error { return e.Err }

// FundingError reports a failed best-effort funding attempt during identity
// creation. It is logged and swallowed by the wallet store: the identity is
// created with a zero balance and later fee-paying operations surface a
// SubmissionError instead.
type FundingError struct {
	PublicAddress string
	Err           error
}

// Error implements the error interface.
func (e *FundingError) Error() string {
	return fmt.Sprintf("funding of %s failed: %v", e.PublicAddress, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *FundingError) Unwrap() error { return e.Err }
