// Package wallet implements identity custody for agents: generation and
// at-rest persistence of signing keypairs, plus best-effort funding of fresh
// identities so they can pay ledger fees.
//
// The backing store is a single JSON file of the form
//
//	{"wallets": [{"publicKey": "...", "secretKey": "...", "createdAt": "..."}]}
//
// where secretKey is the base58 encoding of the 64-byte ed25519 private key.
// This layout is a wire contract with wallet files written by earlier
// deployments and must not change.
//
// The store performs whole-file read-modify-write cycles under a process-local
// mutex. It is NOT safe for concurrent multi-process access: two processes
// writing the same file race and the last writer wins. Run a single writer
// process per wallet file.
package wallet
