// Package index contains concrete implementations of core.LedgerIndex.
//
// The canonical LedgerIndex interface lives in the core package. This package
// provides an in-process ledger double for tests and prototypes that
// reproduces the semantics that matter to callers: deterministic address
// derivation, create-only slots, and fee payment from a funded authority. The
// solana subpackage provides the production client against the deployed
// memory index program.
package index
