package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memorymesh/content"
	"github.com/hupe1980/memorymesh/index"
	"github.com/hupe1980/memorymesh/internal/testutil"
	"github.com/hupe1980/memorymesh/memory"
	"github.com/hupe1980/memorymesh/model"
)

// fakeModel returns a canned answer or error.
type fakeModel struct {
	answer string
	err    error
	gotReq model.Request
}

func (f *fakeModel) Generate(_ context.Context, req model.Request) (string, error) {
	f.gotReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestAgent(t *testing.T, m model.Model, fund uint64) (*Agent, *memory.Memory) {
	t.Helper()
	ledger := index.NewInMemoryLedger()
	mem := memory.New(content.NewInMemoryStore(), ledger)
	identity := testutil.NewIdentity(t)
	if fund > 0 {
		require.NoError(t, ledger.Fund(context.Background(), identity.PublicKey, fund))
	}
	return New(m, mem, identity, func(o *Options) {
		o.AgentID = "agent_1"
		o.Instruction = "You are a helpful assistant."
	}), mem
}

func TestAnswerAndStore(t *testing.T) {
	m := &fakeModel{answer: "There are 2374 validators."}
	agent, mem := newTestAgent(t, m, 1_000_000)

	res := agent.AnswerAndStore(context.Background(), "Get the latest Solana validator count")
	require.NoError(t, res.PersistErr)
	assert.Equal(t, "There are 2374 validators.", res.Answer)
	assert.Equal(t, "You are a helpful assistant.", m.gotReq.Instruction)
	assert.NotEmpty(t, res.Receipt.CID)
	assert.NotEmpty(t, res.Receipt.TxID)

	record, err := mem.Recall(context.Background(), res.Receipt.CID)
	require.NoError(t, err)
	assert.Equal(t, "agent_1", record.AgentID)
	assert.Equal(t, "There are 2374 validators.", record.Result)
}

func TestAnswerAndStoreModelFailureDegrades(t *testing.T) {
	m := &fakeModel{err: errors.New("rate limited")}
	agent, _ := newTestAgent(t, m, 1_000_000)

	res := agent.AnswerAndStore(context.Background(), "solana validator count")
	require.NoError(t, res.PersistErr, "degraded answers are still persisted")
	assert.True(t, strings.HasPrefix(res.Answer, "(LLM error:"), "answer %q", res.Answer)
}

func TestAnswerAndStorePersistFailureDoesNotCrash(t *testing.T) {
	// Unfunded identity: content stored, index write rejected.
	m := &fakeModel{answer: "answer"}
	agent, mem := newTestAgent(t, m, 0)

	res := agent.AnswerAndStore(context.Background(), "solana validator count")
	require.Error(t, res.PersistErr)
	var iwe *memory.IndexWriteError
	require.ErrorAs(t, res.PersistErr, &iwe)
	assert.Equal(t, "answer", res.Answer, "answer survives the failed persistence")
	assert.NotEmpty(t, res.Receipt.CID)

	_, err := mem.Recall(context.Background(), res.Receipt.CID)
	assert.NoError(t, err)
}

func TestSearchPast(t *testing.T) {
	m := &fakeModel{answer: "2374"}
	agent, _ := newTestAgent(t, m, 10_000_000)

	stored := agent.AnswerAndStore(context.Background(), "solana validator count statistics")
	require.NoError(t, stored.PersistErr)

	record, found, err := agent.SearchPast(context.Background(), "how many solana validator nodes")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2374", record.Result)

	_, found, err = agent.SearchPast(context.Background(), "unrelated gardening topics")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDefaultAgentID(t *testing.T) {
	m := &fakeModel{answer: "a"}
	ledger := index.NewInMemoryLedger()
	mem := memory.New(content.NewInMemoryStore(), ledger)
	agent := New(m, mem, testutil.NewIdentity(t))
	assert.True(t, strings.HasPrefix(agent.ID(), "agent-"))
}
