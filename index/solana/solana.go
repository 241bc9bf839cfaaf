// Package solana implements core.LedgerIndex against the deployed memory
// index program on Solana.
//
// The address derivation is a wire contract shared with the on-chain program
// and every other client implementation: program-derived address over the
// seeds ["memory", authority public key bytes, content address UTF-8 bytes].
// Account layout and size limits likewise mirror the deployed program and
// must not change.
//
// Solana caps each derivation seed at 32 bytes, and the program passes the
// raw content address as a seed. Addresses longer than 32 bytes, which
// includes real CIDv0 and most CIDv1 strings, cannot be indexed; derivation
// fails for them. The limitation is inherited from the deployed program.
package solana

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

// ProgramIDBase58 identifies the deployed memory index program.
const ProgramIDBase58 = "6dLHMacUJMThKeCwCzZRTLy9qfA1fwzoPXSYNy4CHEAE"

// ProgramID is the parsed program identifier.
var ProgramID = solana.MustPublicKeyFromBase58(ProgramIDBase58)

// memorySeed is the fixed namespace tag leading the derivation seeds.
const memorySeed = "memory"

// Anchor discriminators for the store_memory instruction and the MemoryIndex
// account, derived the way the Anchor framework derives them.
var (
	storeMemoryDiscriminator = anchorDiscriminator("global", "store_memory")
	memoryIndexDiscriminator = anchorDiscriminator("account", "MemoryIndex")
)

func anchorDiscriminator(namespace, name string) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return sum[:8]
}

// storeMemoryArgs is the borsh-encoded instruction payload.
type storeMemoryArgs struct {
	CID  string
	Tags []string
}

// memoryIndexAccount is the borsh-encoded account state written by the
// program: field order is part of the wire contract.
type memoryIndexAccount struct {
	CID       string
	Tags      []string
	Timestamp int64
	Authority solana.PublicKey
}

// ledgerRPC is the slice of the Solana RPC surface the client needs, behind a
// seam so validation tests can prove no network call precedes a rejection.
type ledgerRPC interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
}

// clientRPC adapts *rpc.Client to ledgerRPC.
type clientRPC struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
}

func (c *clientRPC) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, err
	}
	return res.Value.Blockhash, nil
}

func (c *clientRPC) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.client.SendTransaction(ctx, tx)
}

func (c *clientRPC) AccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	res, err := c.client.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	if res == nil || res.Value == nil {
		return nil, core.ErrNotFound
	}
	return res.Value.Data.GetBinary(), nil
}

// Options configure the ledger index client.
type Options struct {
	// Endpoint is the RPC endpoint, devnet by default.
	Endpoint string
	// Commitment used for blockhash and account fetches.
	Commitment rpc.CommitmentType
	// ProgramID overrides the deployed program identifier (test validators).
	ProgramID solana.PublicKey
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Client is the production core.LedgerIndex.
type Client struct {
	rpc       ledgerRPC
	programID solana.PublicKey
	logger    logging.Logger
}

// NewClient creates a client against the configured endpoint.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		Endpoint:   rpc.DevNet_RPC,
		Commitment: rpc.CommitmentConfirmed,
		ProgramID:  ProgramID,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Client{
		rpc:       &clientRPC{client: rpc.New(opts.Endpoint), commitment: opts.Commitment},
		programID: opts.ProgramID,
		logger:    opts.Logger,
	}
}

// DeriveAddress computes the program-derived ledger address for an
// (authority, content address) pair. Pure: identical inputs always yield the
// identical address.
func (c *Client) DeriveAddress(authority string, cid string) (string, error) {
	pda, err := c.deriveAddress(authority, cid)
	if err != nil {
		return "", err
	}
	return pda.String(), nil
}

func (c *Client) deriveAddress(authority string, cid string) (solana.PublicKey, error) {
	authorityKey, err := solana.PublicKeyFromBase58(authority)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse authority: %w", err)
	}
	seeds := [][]byte{
		[]byte(memorySeed),
		authorityKey.Bytes(),
		[]byte(cid),
	}
	pda, _, err := solana.FindProgramAddress(seeds, c.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive program address: %w", err)
	}
	return pda, nil
}

// WriteEntry validates cid and tags locally (no network round-trip on
// violation), then submits a signed store_memory transaction targeting the
// derived address, paying fees from the signer. Create-only semantics are
// enforced by the program: a second write for the same pair is rejected by
// the cluster and surfaces as a core.SubmissionError. No retry is performed.
func (c *Client) WriteEntry(ctx context.Context, signer core.Signer, cid string, tags []string) (string, error) {
	if err := core.ValidateCID(cid); err != nil {
		return "", err
	}
	if err := core.ValidateTags(tags); err != nil {
		return "", err
	}

	authority, err := solana.PublicKeyFromBase58(signer.PublicAddress())
	if err != nil {
		return "", fmt.Errorf("parse authority: %w", err)
	}
	pda, err := c.deriveAddress(signer.PublicAddress(), cid)
	if err != nil {
		return "", err
	}

	data, err := encodeStoreMemory(cid, tags)
	if err != nil {
		return "", err
	}
	instruction := solana.NewInstruction(
		c.programID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(pda, true, false),
			solana.NewAccountMeta(authority, true, true),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		data,
	)

	blockhash, err := c.rpc.LatestBlockhash(ctx)
	if err != nil {
		return "", &core.SubmissionError{Address: pda.String(), Err: fmt.Errorf("fetch blockhash: %w", err)}
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(authority),
	)
	if err != nil {
		return "", &core.SubmissionError{Address: pda.String(), Err: fmt.Errorf("build transaction: %w", err)}
	}
	if err := signTransaction(tx, signer); err != nil {
		return "", &core.SubmissionError{Address: pda.String(), Err: err}
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", &core.SubmissionError{Address: pda.String(), Err: err}
	}
	c.logger.Info("index entry stored", "address", pda.String(), "cid", cid, "tx", sig.String())
	return sig.String(), nil
}

// ReadEntry derives the address and fetches the account state. A missing
// account is a soft core.ErrNotFound so callers can distinguish "never
// written" from a transport error.
func (c *Client) ReadEntry(ctx context.Context, authority string, cid string) (core.IndexEntry, error) {
	pda, err := c.deriveAddress(authority, cid)
	if err != nil {
		return core.IndexEntry{}, err
	}
	data, err := c.rpc.AccountData(ctx, pda)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.IndexEntry{}, fmt.Errorf("index entry at %s: %w", pda.String(), core.ErrNotFound)
		}
		return core.IndexEntry{}, fmt.Errorf("fetch account %s: %w", pda.String(), err)
	}
	account, err := decodeMemoryIndex(data)
	if err != nil {
		return core.IndexEntry{}, fmt.Errorf("decode account %s: %w", pda.String(), err)
	}
	return core.IndexEntry{
		CID:       account.CID,
		Tags:      account.Tags,
		Timestamp: account.Timestamp,
		Authority: account.Authority.String(),
	}, nil
}

// encodeStoreMemory builds the instruction data: 8-byte Anchor discriminator
// followed by the borsh-encoded arguments.
func encodeStoreMemory(cid string, tags []string) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(storeMemoryDiscriminator)
	if tags == nil {
		tags = []string{}
	}
	if err := bin.NewBorshEncoder(buf).Encode(storeMemoryArgs{CID: cid, Tags: tags}); err != nil {
		return nil, fmt.Errorf("encode instruction: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeMemoryIndex parses account bytes: 8-byte discriminator followed by
// the borsh-encoded MemoryIndex fields.
func decodeMemoryIndex(data []byte) (memoryIndexAccount, error) {
	if len(data) < len(memoryIndexDiscriminator) {
		return memoryIndexAccount{}, errors.New("account data too short")
	}
	if !bytes.Equal(data[:len(memoryIndexDiscriminator)], memoryIndexDiscriminator) {
		return memoryIndexAccount{}, errors.New("not a memory index account")
	}
	var account memoryIndexAccount
	if err := bin.NewBorshDecoder(data[len(memoryIndexDiscriminator):]).Decode(&account); err != nil {
		return memoryIndexAccount{}, err
	}
	return account, nil
}

// signTransaction signs the serialized message through the core.Signer so the
// private key never leaves the wallet layer.
func signTransaction(tx *solana.Transaction, signer core.Signer) error {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}
	raw, err := signer.Sign(msg)
	if err != nil {
		return fmt.Errorf("sign message: %w", err)
	}
	// SignatureFromBytes truncates or zero-pads silently; a signer handing
	// back the wrong length must fail loudly instead.
	if len(raw) != solana.SignatureLength {
		return fmt.Errorf("signature must be %d bytes, got %d", solana.SignatureLength, len(raw))
	}
	tx.Signatures = []solana.Signature{solana.SignatureFromBytes(raw)}
	return nil
}
