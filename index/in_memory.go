package index

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/memorymesh/core"
)

// writeFee is the nominal fee the in-memory ledger deducts per entry write,
// standing in for transaction fees plus rent.
const writeFee = uint64(5000)

// InMemoryLedger is a process-local core.LedgerIndex double. It mirrors the
// failure surface of the real ledger: writes from an unfunded authority fail,
// and a second write to an occupied (authority, cid) slot fails instead of
// overwriting.
//
// InMemoryLedger also implements core.Funder, so wallet stores under test can
// fund identities against it.
type InMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]uint64
	entries  map[string]core.IndexEntry
}

// NewInMemoryLedger returns an empty ledger with no funded accounts.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances: make(map[string]uint64),
		entries:  make(map[string]core.IndexEntry),
	}
}

// Fund credits the account, implementing core.Funder.
func (l *InMemoryLedger) Fund(_ context.Context, publicAddress string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[publicAddress] += amount
	return nil
}

// Balance returns the current balance of the account.
func (l *InMemoryLedger) Balance(publicAddress string) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[publicAddress]
}

// DeriveAddress computes a deterministic pseudo-address from the namespace
// tag, the authority and the content address. Pure.
func (l *InMemoryLedger) DeriveAddress(authority string, cid string) (string, error) {
	h := sha256.New()
	h.Write([]byte("memory"))
	h.Write([]byte(authority))
	h.Write([]byte(cid))
	return fmt.Sprintf("%x", h.Sum(nil)[:20]), nil
}

// WriteEntry validates locally, then creates the entry at the derived address.
// Zero balance and occupied slots both fail with a core.SubmissionError.
func (l *InMemoryLedger) WriteEntry(_ context.Context, signer core.Signer, cid string, tags []string) (string, error) {
	if err := core.ValidateCID(cid); err != nil {
		return "", err
	}
	if err := core.ValidateTags(tags); err != nil {
		return "", err
	}
	authority := signer.PublicAddress()
	address, err := l.DeriveAddress(authority, cid)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[authority] < writeFee {
		return "", &core.SubmissionError{Address: address, Err: errors.New("insufficient funds for transaction")}
	}
	if _, occupied := l.entries[address]; occupied {
		return "", &core.SubmissionError{Address: address, Err: errors.New("account already in use")}
	}
	l.balances[authority] -= writeFee
	l.entries[address] = core.IndexEntry{
		CID:       cid,
		Tags:      append([]string(nil), tags...),
		Timestamp: time.Now().Unix(),
		Authority: authority,
	}
	return uuid.NewString(), nil
}

// ReadEntry resolves the derived address, returning core.ErrNotFound when
// nothing was ever written there.
func (l *InMemoryLedger) ReadEntry(_ context.Context, authority string, cid string) (core.IndexEntry, error) {
	address, err := l.DeriveAddress(authority, cid)
	if err != nil {
		return core.IndexEntry{}, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[address]
	if !ok {
		return core.IndexEntry{}, fmt.Errorf("index entry at %s: %w", address, core.ErrNotFound)
	}
	entry.Tags = append([]string(nil), entry.Tags...)
	return entry, nil
}
