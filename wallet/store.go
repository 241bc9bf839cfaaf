package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

// Identity is a loaned in-memory copy of a stored wallet. The file store
// remains the persistent owner; identities are never mutated after creation.
type Identity struct {
	PublicKey string
	Secret    Secret
	CreatedAt time.Time
}

// PublicAddress implements core.Signer.
func (i Identity) PublicAddress() string { return i.PublicKey }

// Sign implements core.Signer.
func (i Identity) Sign(msg []byte) ([]byte, error) { return i.Secret.Sign(msg) }

// walletRecord is the on-disk shape of a single wallet. Field names are a
// wire contract with existing wallet files.
type walletRecord struct {
	PublicKey string `json:"publicKey"`
	SecretKey string `json:"secretKey"`
	CreatedAt string `json:"createdAt"`
}

// walletFile is the on-disk shape of the whole store.
type walletFile struct {
	Wallets []walletRecord `json:"wallets"`
}

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	// Funder receives best-effort funding requests for freshly created
	// identities. Nil disables funding.
	Funder core.Funder
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// FileStore persists identities in a single JSON wallet file. All mutations
// are whole-file read-modify-write cycles guarded by a process-local mutex;
// see the package documentation for the multi-process caveat.
type FileStore struct {
	mu     sync.Mutex
	path   string
	funder core.Funder
	logger logging.Logger
}

// NewFileStore creates a store backed by the wallet file at path. The file is
// created lazily on the first write.
func NewFileStore(path string, optFns ...func(o *FileStoreOptions)) *FileStore {
	opts := FileStoreOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &FileStore{path: path, funder: opts.Funder, logger: opts.Logger}
}

// Create generates a new identity, attempts to fund it, appends it to the
// wallet file and returns it.
//
// Funding is best effort: a failure is logged and swallowed, and the identity
// is still created with a zero balance. Later fee-paying operations then fail
// with a SubmissionError rather than here.
func (s *FileStore) Create(ctx context.Context, fundAmount uint64) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, fundAmount)
}

func (s *FileStore) createLocked(ctx context.Context, fundAmount uint64) (Identity, error) {
	secret, err := NewRandomSecret()
	if err != nil {
		return Identity{}, err
	}
	identity := Identity{
		PublicKey: secret.PublicKey().String(),
		Secret:    secret,
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Info("generated new wallet", "publicKey", identity.PublicKey)

	if s.funder != nil && fundAmount > 0 {
		if err := s.funder.Fund(ctx, identity.PublicKey, fundAmount); err != nil {
			ferr := &core.FundingError{PublicAddress: identity.PublicKey, Err: err}
			s.logger.Warn("wallet funding failed, continuing with zero balance", "publicKey", identity.PublicKey, "error", ferr.Error())
		} else {
			s.logger.Info("funded wallet", "publicKey", identity.PublicKey, "lamports", fundAmount)
		}
	}

	file, err := s.load()
	if err != nil {
		return Identity{}, err
	}
	file.Wallets = append(file.Wallets, walletRecord{
		PublicKey: identity.PublicKey,
		SecretKey: identity.Secret.Base58(),
		CreatedAt: identity.CreatedAt.Format(time.RFC3339),
	})
	if err := s.save(file); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// Load returns the first stored identity matching publicKey, or
// core.ErrNotFound when no record matches.
func (s *FileStore) Load(publicKey string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.load()
	if err != nil {
		return Identity{}, err
	}
	for _, rec := range file.Wallets {
		if rec.PublicKey == publicKey {
			return identityFromRecord(rec)
		}
	}
	return Identity{}, fmt.Errorf("wallet %s: %w", publicKey, core.ErrNotFound)
}

// GetOrCreate returns the first readable stored identity whenever the store
// holds one, regardless of agentID, and creates a new identity only for an
// empty store. agentID is accepted for forward compatibility but does not key
// the lookup; distinct agent identifiers therefore share one identity once
// any wallet exists. A non-empty store with no readable entry is an error, so
// repeated calls either converge on the same identity or fail; they never
// mint a fresh wallet per call. GetOrCreate never returns core.ErrNotFound.
func (s *FileStore) GetOrCreate(ctx context.Context, agentID string, fundAmount uint64) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.load()
	if err != nil {
		return Identity{}, err
	}
	var lastErr error
	for _, rec := range file.Wallets {
		identity, err := identityFromRecord(rec)
		if err == nil {
			return identity, nil
		}
		s.logger.Warn("skipping unreadable wallet entry", "agentID", agentID, "publicKey", rec.PublicKey, "error", err.Error())
		lastErr = err
	}
	if lastErr != nil {
		return Identity{}, fmt.Errorf("wallet file has no readable entry: %w", lastErr)
	}
	return s.createLocked(ctx, fundAmount)
}

// load reads the whole wallet file; a missing file is an empty store.
func (s *FileStore) load() (walletFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return walletFile{}, nil
	}
	if err != nil {
		return walletFile{}, fmt.Errorf("read wallet file: %w", err)
	}
	var file walletFile
	if err := json.Unmarshal(data, &file); err != nil {
		return walletFile{}, fmt.Errorf("parse wallet file: %w", err)
	}
	return file, nil
}

// save rewrites the whole wallet file via temp file + rename with 0600
// permissions.
func (s *FileStore) save(file walletFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode wallet file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create wallet dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".wallets-*.json")
	if err != nil {
		return fmt.Errorf("create temp wallet file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write wallet file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod wallet file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close wallet file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace wallet file: %w", err)
	}
	return nil
}

func identityFromRecord(rec walletRecord) (Identity, error) {
	secret, err := SecretFromBase58(rec.SecretKey)
	if err != nil {
		return Identity{}, err
	}
	derived := secret.PublicKey().String()
	if rec.PublicKey != "" && rec.PublicKey != derived {
		return Identity{}, fmt.Errorf("wallet file corrupt: stored public key %s does not match secret material", rec.PublicKey)
	}
	createdAt, _ := time.Parse(time.RFC3339, rec.CreatedAt)
	return Identity{PublicKey: derived, Secret: secret, CreatedAt: createdAt}, nil
}
