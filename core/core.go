package core

import "fmt"

// Size limits enforced by the deployed ledger program. These are a wire
// contract shared with the on-chain account layout; changing them here would
// break interoperability with already-deployed state.
const (
	// MaxCIDLen is the maximum length of a content address in bytes.
	MaxCIDLen = 100
	// MaxTags is the maximum number of tags per index entry.
	MaxTags = 20
	// MaxTagLen is the maximum length of a single tag in bytes.
	MaxTagLen = 50
)

// Record is the content-addressable payload an agent persists: the query it
// answered, the result it produced, and tags for later discovery. Field names
// are a wire contract with previously published records.
//
// Records are immutable once written; the content address is a pure function
// of the serialized bytes, so identical records share an address.
type Record struct {
	Query   string   `json:"query"`
	Result  any      `json:"result"`
	AgentID string   `json:"agent_id"`
	Tags    []string `json:"tags"`
}

// Validate checks the record's tag set against the ledger limits. Content
// size is the storage network's concern; tags are validated here because the
// same set is later submitted on-ledger.
func (r Record) Validate() error {
	return ValidateTags(r.Tags)
}

// IndexEntry is the small on-ledger record pointing from an owning identity
// and content address to tags and a timestamp. The field set mirrors the
// deployed program's account schema exactly.
type IndexEntry struct {
	CID       string   `json:"cid"`
	Tags      []string `json:"tags"`
	Timestamp int64    `json:"timestamp"`
	Authority string   `json:"authority"`
}

// ValidateCID checks a content address against the on-ledger size limit.
func ValidateCID(cid string) error {
	if cid == "" {
		return &ValidationError{Field: "cid", Reason: "must not be empty"}
	}
	if len(cid) > MaxCIDLen {
		return &ValidationError{Field: "cid", Reason: fmt.Sprintf("too long: %d bytes, maximum %d", len(cid), MaxCIDLen)}
	}
	return nil
}

// ValidateTags checks a tag set against the on-ledger limits.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return &ValidationError{Field: "tags", Reason: fmt.Sprintf("too many tags: %d, maximum %d", len(tags), MaxTags)}
	}
	for _, tag := range tags {
		if len(tag) > MaxTagLen {
			return &ValidationError{Field: "tags", Reason: fmt.Sprintf("tag %q too long: %d bytes, maximum %d", tag, len(tag), MaxTagLen)}
		}
	}
	return nil
}
