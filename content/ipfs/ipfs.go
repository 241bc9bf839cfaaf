// Package ipfs implements core.ContentStore against the IPFS network.
//
// Writes go through a Kubo node's HTTP API, which pins the content on the
// writer's node. Reads go through a public HTTP gateway and need no node at
// all. Both paths use bounded timeouts and perform no retries.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	shell "github.com/ipfs/go-ipfs-api"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

const (
	// DefaultNodeAddr is the local Kubo API address used for writes.
	DefaultNodeAddr = "localhost:5001"
	// DefaultGatewayURL is the public gateway used for reads.
	DefaultGatewayURL = "https://ipfs.io"
	// DefaultTimeout bounds every network call.
	DefaultTimeout = 10 * time.Second
)

// adder is the slice of the Kubo API the store needs. *shell.Shell satisfies it.
type adder interface {
	Add(r io.Reader, options ...shell.AddOpts) (string, error)
}

// Options configure the IPFS content store.
type Options struct {
	// NodeAddr is the Kubo API multiaddr or host:port for writes.
	NodeAddr string
	// GatewayURL is the HTTP gateway base URL for reads.
	GatewayURL string
	// Timeout bounds node and gateway calls.
	Timeout time.Duration
	// CacheSize is the maximum number of bytes of fetched records kept in
	// the read cache. Zero disables caching. Content addresses are
	// immutable, so cached entries never go stale.
	CacheSize int64
	// HTTPClient overrides the gateway client (timeout still applied per
	// request context when set).
	HTTPClient *http.Client
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Store is the production core.ContentStore backed by IPFS.
type Store struct {
	node    adder
	gateway string
	client  *http.Client
	cache   *ristretto.Cache
	logger  logging.Logger
}

// NewStore creates a store with the given options.
func NewStore(optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		NodeAddr:   DefaultNodeAddr,
		GatewayURL: DefaultGatewayURL,
		Timeout:    DefaultTimeout,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	node := shell.NewShell(opts.NodeAddr)
	node.SetTimeout(opts.Timeout)

	var cache *ristretto.Cache
	if opts.CacheSize > 0 {
		var err error
		cache, err = ristretto.NewCache(&ristretto.Config{
			NumCounters: 10_000,
			MaxCost:     opts.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create read cache: %w", err)
		}
	}
	return &Store{
		node:    node,
		gateway: strings.TrimRight(opts.GatewayURL, "/"),
		client:  client,
		cache:   cache,
		logger:  opts.Logger,
	}, nil
}

// Write serializes the record and adds it to the node, pinned. Returns
// core.ErrStoreUnavailable (wrapped) when the node cannot be reached; no
// retry is performed.
func (s *Store) Write(_ context.Context, record core.Record) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	cid, err := s.node.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	s.logger.Info("uploaded record to ipfs", "cid", cid, "bytes", len(data))
	return cid, nil
}

// Read fetches the record through the gateway. A 404/410 response maps to
// core.ErrNotFound; transport and decode failures map to core.FetchError.
func (s *Store) Read(ctx context.Context, cid string) (core.Record, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(cid); ok {
			if record, ok := cached.(core.Record); ok {
				return record, nil
			}
		}
	}

	url := s.gateway + "/ipfs/" + cid
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.Record{}, &core.FetchError{CID: cid, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return core.Record{}, &core.FetchError{CID: cid, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone:
		return core.Record{}, fmt.Errorf("content %s: %w", cid, core.ErrNotFound)
	default:
		return core.Record{}, &core.FetchError{CID: cid, Err: fmt.Errorf("gateway returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Record{}, &core.FetchError{CID: cid, Err: err}
	}
	var record core.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return core.Record{}, &core.FetchError{CID: cid, Err: fmt.Errorf("decode record: %w", err)}
	}
	if s.cache != nil {
		s.cache.Set(cid, record, int64(len(body)))
	}
	s.logger.Debug("fetched record from gateway", "cid", cid, "bytes", len(body))
	return record, nil
}
