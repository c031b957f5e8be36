package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/logger"
)

// Provider caches the ledger head and block timestamps so that event parsing
// and snapshot reads do not hit the RPC node for every call.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Provider=MockBlockProvider
type Provider interface {
	// LatestBlock returns the ledger head, potentially from cache
	LatestBlock(ctx context.Context) (uint64, error)

	// BlockTime returns the timestamp of a block, potentially from cache
	BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Fetcher reads block information from the ledger node
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=Fetcher=MockBlockFetcher
type Fetcher interface {
	FetchLatestBlock(ctx context.Context) (uint64, error)
	FetchBlockTime(ctx context.Context, blockNumber uint64) (time.Time, error)
}

// Config holds configuration for the Provider
type Config struct {
	// HeadTTL is how long the head is served from cache
	HeadTTL time.Duration `mapstructure:"head_ttl"`

	// StaleWindow bounds how old a cached value may be when the node is unreachable
	StaleWindow time.Duration `mapstructure:"stale_window"`

	// BlockTimeTTL is how long block timestamps are cached. Zero caches forever.
	BlockTimeTTL time.Duration `mapstructure:"block_time_ttl"`
}

type entry[T any] struct {
	value    T
	cachedAt time.Time
}

type provider struct {
	fetcher Fetcher
	config  Config
	clock   adapter.Clock

	mu     sync.RWMutex
	head   *entry[uint64]
	blocks map[uint64]*entry[time.Time]
}

// NewProvider creates a caching Provider
func NewProvider(fetcher Fetcher, config Config, clock adapter.Clock) Provider {
	return &provider{
		fetcher: fetcher,
		config:  config,
		clock:   clock,
		blocks:  make(map[uint64]*entry[time.Time]),
	}
}

func (p *provider) LatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && now.Sub(cached.cachedAt) < p.config.HeadTTL {
		return cached.value, nil
	}

	head, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.cachedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Serving stale ledger head",
				zap.Uint64("block_number", cached.value),
				zap.Error(err))
			return cached.value, nil
		}
		return 0, fmt.Errorf("failed to fetch ledger head: %w", err)
	}

	p.mu.Lock()
	// never move the cached head backwards
	if p.head == nil || head >= p.head.value {
		p.head = &entry[uint64]{value: head, cachedAt: now}
	} else {
		head = p.head.value
	}
	p.mu.Unlock()

	return head, nil
}

func (p *provider) BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error) {
	p.mu.RLock()
	cached := p.blocks[blockNumber]
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && (p.config.BlockTimeTTL == 0 || now.Sub(cached.cachedAt) < p.config.BlockTimeTTL) {
		return cached.value, nil
	}

	ts, err := p.fetcher.FetchBlockTime(ctx, blockNumber)
	if err != nil {
		if cached != nil && now.Sub(cached.cachedAt) < p.config.StaleWindow {
			return cached.value, nil
		}
		return time.Time{}, fmt.Errorf("failed to fetch time of block %d: %w", blockNumber, err)
	}

	p.mu.Lock()
	p.blocks[blockNumber] = &entry[time.Time]{value: ts, cachedAt: now}
	p.mu.Unlock()

	logger.DebugCtx(ctx, "Cached block time", zap.Uint64("block_number", blockNumber), zap.Time("timestamp", ts))
	return ts, nil
}
