package core

import "context"

// ContentStore persists records on a content-addressable storage network.
// Write returns the content address bound to the record's bytes; Read
// resolves an address back to a record. Implementations perform no retries;
// retry policy belongs to the caller.
type ContentStore interface {
	// Write stores the record and returns its content address. Identical
	// records yield identical addresses (content-store idempotence).
	Write(ctx context.Context, record Record) (string, error)

	// Read fetches the record stored at the content address. Returns
	// ErrNotFound when nothing addressable exists there.
	Read(ctx context.Context, cid string) (Record, error)
}

// LedgerIndex publishes and resolves index entries at deterministic ledger
// addresses derived from (authority, content address).
type LedgerIndex interface {
	// DeriveAddress computes the ledger address for an (authority, cid)
	// pair. Pure: identical inputs always yield the identical address.
	DeriveAddress(authority string, cid string) (string, error)

	// WriteEntry validates cid and tags locally, then submits a signed
	// create-only write to the derived address, paying fees from signer.
	// Returns the ledger transaction id. A second write for the same
	// (authority, cid) pair targets an occupied slot and fails with a
	// SubmissionError.
	WriteEntry(ctx context.Context, signer Signer, cid string, tags []string) (string, error)

	// ReadEntry fetches the entry at the derived address. Returns
	// ErrNotFound (not a transport error) when no account exists there, so
	// callers can distinguish "never written" from a failure.
	ReadEntry(ctx context.Context, authority string, cid string) (IndexEntry, error)
}

// Signer is the loaned identity handle a ledger client needs to author a
// transaction. Implementations must not expose secret material through it.
type Signer interface {
	// PublicAddress returns the identity's canonical public address.
	PublicAddress() string

	// Sign signs the message with the identity's private key.
	Sign(msg []byte) ([]byte, error)
}

// Funder transfers an initial balance to a freshly created identity so it can
// pay ledger transaction fees. Funding is best effort: wallet creation treats
// a funding failure as non-fatal.
type Funder interface {
	Fund(ctx context.Context, publicAddress string, amount uint64) error
}
