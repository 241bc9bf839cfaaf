// Package memory wires tag extraction, content storage and ledger indexing
// into the single persist/recall flow agents call. It owns the ordering
// guarantee (content write strictly before index write) and the distinct
// reporting of "stored but undiscoverable" when the index write fails after
// the content write succeeded.
//
// The package also keeps a process-local reverse index from tags to the
// entries this process persisted, reproducing tag-overlap recall without
// inventing on-ledger reverse-lookup state.
package memory
