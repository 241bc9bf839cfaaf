// Package agent ties a language model and the memory service into the two
// flows the system supports: answer a query and persist the result, and
// recall a past result by tag overlap.
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
	"github.com/hupe1980/memorymesh/memory"
	"github.com/hupe1980/memorymesh/model"
)

// Options configure an Agent.
type Options struct {
	// AgentID identifies the agent in persisted records. Defaults to a
	// generated "agent-<uuid>" identifier.
	AgentID string
	// Instruction is the system prompt given to the model.
	Instruction string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Agent answers queries with a model and persists the results under its
// identity.
type Agent struct {
	id          string
	instruction string
	model       model.Model
	memory      *memory.Memory
	signer      core.Signer
	logger      logging.Logger
}

// New creates an agent over a model, the memory service and a signing
// identity.
func New(m model.Model, mem *memory.Memory, signer core.Signer, optFns ...func(o *Options)) *Agent {
	opts := Options{
		AgentID: "agent-" + uuid.NewString(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Agent{
		id:          opts.AgentID,
		instruction: opts.Instruction,
		model:       m,
		memory:      mem,
		signer:      signer,
		logger:      opts.Logger,
	}
}

// ID returns the agent identifier used in persisted records.
func (a *Agent) ID() string { return a.id }

// AnswerResult reports an answer-and-store flow. PersistErr carries a failed
// persistence without failing the flow: a nil PersistErr means the record is
// stored and indexed; a memory.IndexWriteError means stored but
// undiscoverable; any other error means not stored at all.
type AnswerResult struct {
	Answer     string
	Receipt    memory.Receipt
	PersistErr error
}

// AnswerAndStore answers the query with the model and persists the exchange.
// A model failure degrades to an error-text answer rather than aborting, and
// a failed persistence is reported in the result instead of crashing the
// calling flow.
func (a *Agent) AnswerAndStore(ctx context.Context, query string) AnswerResult {
	answer, err := a.model.Generate(ctx, model.Request{Instruction: a.instruction, Prompt: query})
	if err != nil {
		a.logger.Warn("model call failed", "agentID", a.id, "error", err.Error())
		answer = fmt.Sprintf("(LLM error: %v)", err)
	}
	if answer == "" {
		answer = "(empty response from LLM)"
	}

	receipt, persistErr := a.memory.Persist(ctx, a.signer, query, answer, a.id)
	if persistErr != nil {
		a.logger.Warn("persistence failed, proceeding without it", "agentID", a.id, "error", persistErr.Error())
	}
	return AnswerResult{Answer: answer, Receipt: receipt, PersistErr: persistErr}
}

// SearchPast looks for a previously persisted record whose tags overlap the
// query's tags and fetches the best match from the content store. The second
// return value reports whether any match existed.
func (a *Agent) SearchPast(ctx context.Context, query string) (core.Record, bool, error) {
	matches := a.memory.MatchByTags(query)
	if len(matches) == 0 {
		return core.Record{}, false, nil
	}
	record, err := a.memory.Recall(ctx, matches[0].CID)
	if err != nil {
		return core.Record{}, true, err
	}
	return record, true, nil
}
