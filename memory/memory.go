package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/keyword"
	"github.com/hupe1980/memorymesh/logging"
)

// DefaultMaxTags is the number of tags extracted per query.
const DefaultMaxTags = 8

// Receipt reports the outcome of a persist operation. CID is set as soon as
// the content write succeeds; TxID only once the index entry is on the
// ledger.
type Receipt struct {
	CID  string
	TxID string
	Tags []string
}

// IndexWriteError reports a persist that stored the record but failed to
// publish the index entry: the content is retrievable by address yet
// undiscoverable through the ledger. Callers receive the Receipt alongside
// this error and decide whether to retry the index write.
type IndexWriteError struct {
	CID string
	Err error
}

// Error implements the error interface.
func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("record %s stored but index write failed: %v", e.CID, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *IndexWriteError) Unwrap() error { return e.Err }

// Options configure a Memory service.
type Options struct {
	// MaxTags extracted per query.
	MaxTags int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Memory is the orchestrating service over a content store and a ledger
// index. All operations are single-flow: each call awaits its network steps
// sequentially and schedules nothing concurrently.
type Memory struct {
	content core.ContentStore
	index   core.LedgerIndex
	maxTags int
	logger  logging.Logger

	mu    sync.RWMutex
	byTag map[string][]core.IndexEntry
}

// New creates a Memory service over the given stores.
func New(content core.ContentStore, index core.LedgerIndex, optFns ...func(o *Options)) *Memory {
	opts := Options{MaxTags: DefaultMaxTags, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = DefaultMaxTags
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Memory{
		content: content,
		index:   index,
		maxTags: opts.MaxTags,
		logger:  opts.Logger,
		byTag:   make(map[string][]core.IndexEntry),
	}
}

// Persist extracts tags from the query, writes the record to the content
// store and publishes the index entry under the signer's authority. The
// content write completes strictly before the index write is attempted,
// since both the derived address and the entry payload depend on the content
// address.
//
// Failure modes are reported distinctly: a content-store failure returns an
// error with an empty receipt; an index failure after a successful content
// write returns the receipt (CID set, TxID empty) together with an
// *IndexWriteError.
func (m *Memory) Persist(ctx context.Context, signer core.Signer, query string, result any, agentID string) (Receipt, error) {
	tags := keyword.Extract(query, m.maxTags)
	record := core.Record{Query: query, Result: result, AgentID: agentID, Tags: tags}
	if err := record.Validate(); err != nil {
		return Receipt{}, err
	}

	cid, err := m.content.Write(ctx, record)
	if err != nil {
		return Receipt{}, err
	}
	receipt := Receipt{CID: cid, Tags: tags}
	m.logger.Info("record stored", "cid", cid, "agentID", agentID, "tags", tags)

	txID, err := m.index.WriteEntry(ctx, signer, cid, tags)
	if err != nil {
		m.logger.Warn("index write failed, record is stored but undiscoverable", "cid", cid, "error", err.Error())
		return receipt, &IndexWriteError{CID: cid, Err: err}
	}
	receipt.TxID = txID
	m.remember(core.IndexEntry{
		CID:       cid,
		Tags:      tags,
		Timestamp: time.Now().Unix(),
		Authority: signer.PublicAddress(),
	})
	m.logger.Info("index entry published", "cid", cid, "tx", txID)
	return receipt, nil
}

// Recall fetches the record at the content address.
func (m *Memory) Recall(ctx context.Context, cid string) (core.Record, error) {
	return m.content.Read(ctx, cid)
}

// RecallEntry fetches the index entry for an (authority, cid) pair, returning
// core.ErrNotFound when it was never written.
func (m *Memory) RecallEntry(ctx context.Context, authority string, cid string) (core.IndexEntry, error) {
	return m.index.ReadEntry(ctx, authority, cid)
}

// MatchByTags extracts tags from the query and returns the entries persisted
// by this process that share at least one tag, ordered by descending overlap
// (ties by insertion order). The reverse index is process-local; entries
// published by other processes are not visible here.
func (m *Memory) MatchByTags(query string) []core.IndexEntry {
	tags := keyword.Extract(query, m.maxTags)
	if len(tags) == 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	type scored struct {
		entry   core.IndexEntry
		overlap int
		order   int
	}
	seen := make(map[string]scored)
	position := 0
	for _, tag := range tags {
		for _, entry := range m.byTag[tag] {
			s, ok := seen[entry.CID]
			if !ok {
				s = scored{entry: entry, order: position}
				position++
			}
			s.overlap++
			seen[entry.CID] = s
		}
	}
	matches := make([]scored, 0, len(seen))
	for _, s := range seen {
		matches = append(matches, s)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].overlap != matches[j].overlap {
			return matches[i].overlap > matches[j].overlap
		}
		return matches[i].order < matches[j].order
	})
	out := make([]core.IndexEntry, 0, len(matches))
	for _, s := range matches {
		out = append(out, s.entry)
	}
	return out
}

// remember adds a published entry to the local reverse index.
func (m *Memory) remember(entry core.IndexEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tag := range entry.Tags {
		m.byTag[tag] = append(m.byTag[tag], entry)
	}
}
