package solana

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memorymesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.LedgerIndex = (*Client)(nil)

// fakeRPC counts calls so tests can prove validation short-circuits before
// any network access.
type fakeRPC struct {
	calls       int
	accountData []byte
	accountErr  error
	sendErr     error
	sentTx      *solana.Transaction
}

func (f *fakeRPC) LatestBlockhash(context.Context) (solana.Hash, error) {
	f.calls++
	return solana.Hash{}, nil
}

func (f *fakeRPC) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.calls++
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sentTx = tx
	return solana.Signature{1, 2, 3}, nil
}

func (f *fakeRPC) AccountData(context.Context, solana.PublicKey) ([]byte, error) {
	f.calls++
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	return f.accountData, nil
}

type keypairSigner struct {
	key solana.PrivateKey
}

func newKeypairSigner(t *testing.T) keypairSigner {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return keypairSigner{key: key}
}

func (s keypairSigner) PublicAddress() string { return s.key.PublicKey().String() }

func (s keypairSigner) Sign(msg []byte) ([]byte, error) {
	sig, err := s.key.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

func newTestClient(rpcDouble ledgerRPC) *Client {
	client := NewClient()
	client.rpc = rpcDouble
	return client
}

func TestDeriveAddressIsPure(t *testing.T) {
	client := newTestClient(&fakeRPC{})
	signer := newKeypairSigner(t)

	a1, err := client.DeriveAddress(signer.PublicAddress(), "QmCid1")
	require.NoError(t, err)
	a2, err := client.DeriveAddress(signer.PublicAddress(), "QmCid1")
	require.NoError(t, err)
	assert.Equal(t, a1, a2, "repeated derivation must be identical")

	other := newKeypairSigner(t)
	b, err := client.DeriveAddress(other.PublicAddress(), "QmCid1")
	require.NoError(t, err)
	assert.NotEqual(t, a1, b, "different authority must derive a different address")

	c, err := client.DeriveAddress(signer.PublicAddress(), "QmCid2")
	require.NoError(t, err)
	assert.NotEqual(t, a1, c, "different cid must derive a different address")
}

func TestDeriveAddressMatchesSeedContract(t *testing.T) {
	client := newTestClient(&fakeRPC{})
	signer := newKeypairSigner(t)
	// Seeds are capped at 32 bytes each, so the cid seed must stay short.
	cid := "bafk-seed-contract-check"

	got, err := client.DeriveAddress(signer.PublicAddress(), cid)
	require.NoError(t, err)

	authority := signer.key.PublicKey()
	want, _, err := solana.FindProgramAddress([][]byte{
		[]byte("memory"),
		authority.Bytes(),
		[]byte(cid),
	}, ProgramID)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got)
}

func TestWriteEntryValidatesBeforeNetwork(t *testing.T) {
	signer := newKeypairSigner(t)
	var ve *core.ValidationError

	cases := []struct {
		name string
		cid  string
		tags []string
	}{
		{"cid too long", strings.Repeat("c", core.MaxCIDLen+1), nil},
		{"too many tags", "QmCid", make([]string, core.MaxTags+1)},
		{"tag too long", "QmCid", []string{strings.Repeat("t", core.MaxTagLen+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rpcDouble := &fakeRPC{}
			client := newTestClient(rpcDouble)
			_, err := client.WriteEntry(context.Background(), signer, tc.cid, tc.tags)
			require.ErrorAs(t, err, &ve)
			assert.Zero(t, rpcDouble.calls, "validation failures must not reach the network")
		})
	}
}

func TestWriteEntrySubmitsSignedTransaction(t *testing.T) {
	rpcDouble := &fakeRPC{}
	client := newTestClient(rpcDouble)
	signer := newKeypairSigner(t)

	txID, err := client.WriteEntry(context.Background(), signer, "QmCid", []string{"solana", "defi"})
	require.NoError(t, err)
	assert.NotEmpty(t, txID)
	require.NotNil(t, rpcDouble.sentTx)

	tx := rpcDouble.sentTx
	require.Len(t, tx.Message.Instructions, 1)
	inst := tx.Message.Instructions[0]

	// Instruction data: Anchor discriminator followed by borsh args.
	data := []byte(inst.Data)
	require.True(t, len(data) > 8)
	assert.True(t, bytes.Equal(data[:8], storeMemoryDiscriminator))
	var args storeMemoryArgs
	require.NoError(t, bin.NewBorshDecoder(data[8:]).Decode(&args))
	assert.Equal(t, "QmCid", args.CID)
	assert.Equal(t, []string{"solana", "defi"}, args.Tags)

	// Accounts: derived PDA, fee-paying authority, system program.
	pda, err := client.deriveAddress(signer.PublicAddress(), "QmCid")
	require.NoError(t, err)
	accounts, err := inst.ResolveInstructionAccounts(&tx.Message)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, pda, accounts[0].PublicKey)
	assert.Equal(t, signer.key.PublicKey(), accounts[1].PublicKey)
	assert.True(t, accounts[1].IsSigner)
	assert.Equal(t, solana.SystemProgramID, accounts[2].PublicKey)

	// Signature verifies against the serialized message.
	require.Len(t, tx.Signatures, 1)
	msg, err := tx.Message.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, signer.key.PublicKey().Verify(msg, tx.Signatures[0]))
}

func TestWriteEntrySubmissionRejected(t *testing.T) {
	rpcDouble := &fakeRPC{sendErr: errors.New("Attempt to debit an account but found no record of a prior credit")}
	client := newTestClient(rpcDouble)
	signer := newKeypairSigner(t)

	_, err := client.WriteEntry(context.Background(), signer, "QmCid", []string{"solana"})
	var se *core.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.NotEmpty(t, se.Address)
}

// truncatedSigner hands back a signature of the wrong length.
type truncatedSigner struct {
	keypairSigner
}

func (s truncatedSigner) Sign(msg []byte) ([]byte, error) {
	sig, err := s.keypairSigner.Sign(msg)
	if err != nil {
		return nil, err
	}
	return sig[:32], nil
}

func TestWriteEntryRejectsMalformedSignature(t *testing.T) {
	rpcDouble := &fakeRPC{}
	client := newTestClient(rpcDouble)
	signer := truncatedSigner{newKeypairSigner(t)}

	_, err := client.WriteEntry(context.Background(), signer, "QmCid", []string{"solana"})
	var se *core.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "signature must be 64 bytes")
	assert.Nil(t, rpcDouble.sentTx, "a malformed signature must never reach the cluster")
}

func TestReadEntryNotFoundIsSoft(t *testing.T) {
	rpcDouble := &fakeRPC{accountErr: core.ErrNotFound}
	client := newTestClient(rpcDouble)
	signer := newKeypairSigner(t)

	_, err := client.ReadEntry(context.Background(), signer.PublicAddress(), "QmNever")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestReadEntryDecodesAccount(t *testing.T) {
	signer := newKeypairSigner(t)
	authority := signer.key.PublicKey()

	buf := new(bytes.Buffer)
	buf.Write(memoryIndexDiscriminator)
	require.NoError(t, bin.NewBorshEncoder(buf).Encode(memoryIndexAccount{
		CID:       "QmStored",
		Tags:      []string{"solana", "validators"},
		Timestamp: 1730000000,
		Authority: authority,
	}))

	rpcDouble := &fakeRPC{accountData: buf.Bytes()}
	client := newTestClient(rpcDouble)

	entry, err := client.ReadEntry(context.Background(), signer.PublicAddress(), "QmStored")
	require.NoError(t, err)
	assert.Equal(t, "QmStored", entry.CID)
	assert.Equal(t, []string{"solana", "validators"}, entry.Tags)
	assert.Equal(t, int64(1730000000), entry.Timestamp)
	assert.Equal(t, authority.String(), entry.Authority)
}

func TestReadEntryRejectsForeignAccount(t *testing.T) {
	rpcDouble := &fakeRPC{accountData: []byte{9, 9, 9, 9, 9, 9, 9, 9, 1, 2, 3}}
	client := newTestClient(rpcDouble)
	signer := newKeypairSigner(t)

	_, err := client.ReadEntry(context.Background(), signer.PublicAddress(), "QmOther")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}
