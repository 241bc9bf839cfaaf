// Package core provides the foundational domain types and interfaces for the
// memorymesh persistence layer. It defines:
//
//   - Record (the content-addressable payload agents persist)
//   - IndexEntry (the on-ledger pointer to a record)
//   - Pluggable stores for content (ContentStore) and ledger indexing (LedgerIndex)
//   - Signer / Funder contracts binding identity custody to the ledger
//   - The shared error taxonomy (validation, not-found, submission, fetch)
//
// The package intentionally keeps implementation concerns (wallet files, IPFS
// clients, Solana RPC) out of scope, exposing small interfaces so backends can
// be substituted in tests or production without touching calling code.
package core
