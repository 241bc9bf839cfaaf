package testutil

import (
	"testing"
	"time"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/wallet"
)

// NewIdentity builds an ephemeral identity that never touches a wallet file.
func NewIdentity(t *testing.T) wallet.Identity {
	t.Helper()
	secret, err := wallet.NewRandomSecret()
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	return wallet.Identity{
		PublicKey: secret.PublicKey().String(),
		Secret:    secret,
		CreatedAt: time.Now().UTC(),
	}
}

// NewRecord builds a minimal valid record for content-store tests.
func NewRecord(query string, tags ...string) core.Record {
	if tags == nil {
		tags = []string{}
	}
	return core.Record{
		Query:   query,
		Result:  "result",
		AgentID: "agent_test",
		Tags:    tags,
	}
}
