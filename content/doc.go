// Package content contains concrete implementations of core.ContentStore.
//
// The canonical ContentStore interface lives in the core package to keep
// domain contracts central. This package provides an in-process store for
// tests and prototypes; the ipfs subpackage provides the production client
// backed by a Kubo node (writes) and a public HTTP gateway (reads).
//
// Callers should depend on core.ContentStore rather than concrete types so
// they can substitute backends in tests or production.
package content
