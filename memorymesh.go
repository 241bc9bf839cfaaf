// Package memorymesh provides a high-level façade over the persistence layer
// (content store, ledger index, wallet custody & logging) enabling rapid
// construction of agents with durable, discoverable memory. Most applications
// interact with this package by:
//  1. Creating a MemoryMesh via New() (optionally overriding default in-memory stores)
//  2. Obtaining the Memory service for persist/recall flows
//  3. Wrapping a model + identity into an Agent via NewAgent
//
// All defaults are safe for local development and testing; production
// deployments supply the IPFS-backed content store, the Solana-backed ledger
// index and a structured logger.
package memorymesh

import (
	"github.com/hupe1980/memorymesh/agent"
	"github.com/hupe1980/memorymesh/content"
	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/index"
	"github.com/hupe1980/memorymesh/logging"
	"github.com/hupe1980/memorymesh/memory"
	"github.com/hupe1980/memorymesh/model"
)

// Options configures the MemoryMesh instance.
type Options struct {
	// ContentStore defaults to an in-memory store.
	ContentStore core.ContentStore
	// LedgerIndex defaults to an in-memory ledger.
	LedgerIndex core.LedgerIndex
	// MaxTags extracted per persisted query.
	MaxTags int
	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// MemoryMesh is the high-level façade aggregating the persistence services.
type MemoryMesh struct {
	opts   Options
	memory *memory.Memory
}

// New creates a new MemoryMesh instance with optional overrides. Any unset
// service is replaced by its in-memory default.
func New(optFns ...func(o *Options)) *MemoryMesh {
	opts := Options{
		MaxTags: memory.DefaultMaxTags,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ContentStore == nil {
		opts.ContentStore = content.NewInMemoryStore()
	}
	if opts.LedgerIndex == nil {
		opts.LedgerIndex = index.NewInMemoryLedger()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	mem := memory.New(opts.ContentStore, opts.LedgerIndex, func(o *memory.Options) {
		o.MaxTags = opts.MaxTags
		o.Logger = opts.Logger
	})
	return &MemoryMesh{opts: opts, memory: mem}
}

// Memory returns the orchestrating memory service.
func (m *MemoryMesh) Memory() *memory.Memory {
	return m.memory
}

// NewAgent wraps a model and a signing identity into an agent persisting
// through this mesh.
func (m *MemoryMesh) NewAgent(mdl model.Model, signer core.Signer, optFns ...func(o *agent.Options)) *agent.Agent {
	fns := append([]func(o *agent.Options){func(o *agent.Options) {
		o.Logger = m.opts.Logger
	}}, optFns...)
	return agent.New(mdl, m.memory, signer, fns...)
}
