package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = uint64(solana.LAMPORTS_PER_SOL)

// AirdropFunderOptions configures an AirdropFunder.
type AirdropFunderOptions struct {
	// Commitment for the airdrop request and the confirmation wait.
	Commitment rpc.CommitmentType
	// PollInterval between confirmation checks.
	PollInterval time.Duration
}

// AirdropFunder funds identities via the cluster faucet (devnet/testnet
// airdrops). Production clusters have no faucet; supply a different
// core.Funder there.
type AirdropFunder struct {
	client *rpc.Client
	opts   AirdropFunderOptions
}

// NewAirdropFunder creates a funder against the given RPC endpoint.
func NewAirdropFunder(endpoint string, optFns ...func(o *AirdropFunderOptions)) *AirdropFunder {
	return NewAirdropFunderFromClient(rpc.New(endpoint), optFns...)
}

// NewAirdropFunderFromClient creates a funder from an existing RPC client.
func NewAirdropFunderFromClient(client *rpc.Client, optFns ...func(o *AirdropFunderOptions)) *AirdropFunder {
	opts := AirdropFunderOptions{
		Commitment:   rpc.CommitmentConfirmed,
		PollInterval: 500 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &AirdropFunder{client: client, opts: opts}
}

// Fund requests an airdrop of amount lamports and waits until the funding
// transaction reaches the configured commitment or ctx expires.
func (a *AirdropFunder) Fund(ctx context.Context, publicAddress string, amount uint64) error {
	pubkey, err := solana.PublicKeyFromBase58(publicAddress)
	if err != nil {
		return fmt.Errorf("parse public address: %w", err)
	}
	sig, err := a.client.RequestAirdrop(ctx, pubkey, amount, a.opts.Commitment)
	if err != nil {
		return fmt.Errorf("request airdrop: %w", err)
	}
	return a.awaitConfirmation(ctx, sig)
}

// awaitConfirmation polls signature status until the transaction is confirmed
// or the context is done.
func (a *AirdropFunder) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("await airdrop confirmation: %w", ctx.Err())
		case <-ticker.C:
			res, err := a.client.GetSignatureStatuses(ctx, false, sig)
			if err != nil {
				return fmt.Errorf("get airdrop status: %w", err)
			}
			if len(res.Value) == 0 || res.Value[0] == nil {
				continue
			}
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("airdrop transaction failed: %v", status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}
