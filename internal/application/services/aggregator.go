package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// ErrTaskNotFound is returned when a generation is neither active nor cached
var ErrTaskNotFound = errors.New("aggregation not found")

// ErrAggregatorClosed is returned by Submit after Close
var ErrAggregatorClosed = errors.New("aggregator closed")

// SnapshotCache stores finished aggregation snapshots
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// cellQuery is one unit of work: a wallet on a chain whose client was built
type cellQuery struct {
	key     entities.AddressKey
	address string
	chain   string
	client  repositories.BalanceClient
}

// BalanceAggregator fans balance queries out over wallets x chains
type BalanceAggregator struct {
	factory repositories.BalanceClientFactory
	cache   SnapshotCache
	config  config.AggregatorConfig
	logger  *zap.Logger

	instanceID string

	mu         sync.RWMutex
	closed     bool
	generation uint64
	current    *AggregationTask
	recent     *lru.Cache[uint64, *AggregationTask]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBalanceAggregator creates a new balance aggregator.
// The last RecentTasks replaced tasks stay in memory; older ones are served
// from cache, which may be nil.
func NewBalanceAggregator(
	factory repositories.BalanceClientFactory,
	cache SnapshotCache,
	cfg config.AggregatorConfig,
	logger *zap.Logger,
) *BalanceAggregator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if cfg.RecentTasks <= 0 {
		cfg.RecentTasks = 1
	}

	// only fails for a non-positive size
	recent, _ := lru.New[uint64, *AggregationTask](cfg.RecentTasks)

	ctx, cancel := context.WithCancel(context.Background())

	return &BalanceAggregator{
		factory:    factory,
		cache:      cache,
		config:     cfg,
		logger:     logger,
		instanceID: uuid.NewString(),
		recent:     recent,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit snapshots chains and wallets and starts querying every cell in the background.
// It returns as soon as work is scheduled. Any previously active task is superseded.
// Duplicate chain names and wallet keys collapse to their last occurrence.
// Only a missing chain name is rejected; a bad rpc_url marks that column unavailable.
func (a *BalanceAggregator) Submit(chains []entities.ChainEndpoint, wallets []entities.WalletIdentity) (*AggregationTask, error) {
	chains = entities.DedupeChains(chains)
	wallets = entities.DedupeWallets(wallets)

	for _, c := range chains {
		if err := c.ValidateName(); err != nil {
			return nil, err
		}
	}

	// generation order and the current pointer must agree under concurrent submits
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrAggregatorClosed
	}
	a.generation++
	task := newAggregationTask(a.generation, chains, wallets)

	queries := make([]cellQuery, 0, task.total)
	unavailable := 0
	for _, chain := range chains {
		client, err := a.factory.Client(chain)
		if err != nil {
			unavailable++
			a.logger.Warn("Chain endpoint unavailable",
				zap.Uint64("generation", task.generation),
				zap.String("chain", chain.Name),
				zap.Error(err),
			)
			for _, w := range wallets {
				a.write(task, w.Key(), chain.Name, entities.EndpointUnavailableCell(err.Error()))
			}
			continue
		}

		for _, w := range wallets {
			queries = append(queries, cellQuery{
				key:     w.Key(),
				address: w.Address,
				chain:   chain.Name,
				client:  client,
			})
		}
	}

	previous := a.current
	a.current = task
	superseded := false
	if previous != nil {
		superseded = previous.supersede()
		a.recent.Add(previous.generation, previous)
	}
	// registered under the lock so Close never waits before they are counted
	a.wg.Add(1)
	if superseded {
		a.wg.Add(1)
	}
	a.mu.Unlock()

	aggregationsSubmitted.Inc()

	if superseded {
		a.logger.Info("Superseded balance aggregation",
			zap.Uint64("generation", previous.generation),
			zap.Uint64("superseded_by", task.generation),
		)
		go func() {
			defer a.wg.Done()
			a.cacheSnapshot(previous)
		}()
	}

	a.logger.Info("Submitted balance aggregation",
		zap.Uint64("generation", task.generation),
		zap.Int("chains", len(chains)),
		zap.Int("wallets", len(wallets)),
		zap.Int("total_cells", task.total),
		zap.Int("unavailable_chains", unavailable),
		zap.Int("queries", len(queries)),
	)

	go a.run(task, queries)

	return task, nil
}

// run dispatches the task's queries with at most MaxConcurrency in flight
func (a *BalanceAggregator) run(task *AggregationTask, queries []cellQuery) {
	defer a.wg.Done()

	task.start()

	g, ctx := errgroup.WithContext(a.ctx)
	g.SetLimit(a.config.MaxConcurrency)

	dispatched := 0
	for _, q := range queries {
		q := q // capture
		if task.isSuperseded() || ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			// queued queries of a superseded task are skipped; in-flight ones finish
			if task.isSuperseded() {
				return nil
			}
			a.write(task, q.key, q.chain, a.query(ctx, q))
			return nil
		})
	}

	_ = g.Wait()

	// shutdown stopped dispatch; resolve what never ran so the task still finishes
	if !task.isSuperseded() {
		for _, q := range queries[dispatched:] {
			a.write(task, q.key, q.chain, entities.QueryFailedCell(ErrAggregatorClosed.Error()))
		}
	}

	snapshot := task.Snapshot()
	if !snapshot.IsDone() {
		return
	}

	a.logger.Info("Completed balance aggregation",
		zap.Uint64("generation", snapshot.Generation),
		zap.Int("total_cells", snapshot.TotalCells),
		zap.Duration("elapsed", snapshot.CompletedAt.Sub(snapshot.SubmittedAt)),
	)
	a.cacheSnapshot(task)
}

func (a *BalanceAggregator) query(ctx context.Context, q cellQuery) entities.BalanceCell {
	rpcInFlight.Inc()
	defer rpcInFlight.Dec()

	start := time.Now()
	cell := q.client.QueryBalance(ctx, q.address)
	rpcDuration.Observe(time.Since(start).Seconds())

	return cell
}

// write stores a cell unless the task has been superseded
func (a *BalanceAggregator) write(task *AggregationTask, key entities.AddressKey, chain string, cell entities.BalanceCell) {
	if !task.record(key, chain, cell) {
		staleWritesDiscarded.Inc()
		a.logger.Debug("Discarded stale balance result",
			zap.Uint64("generation", task.generation),
			zap.String("wallet", string(key)),
			zap.String("chain", chain),
		)
		return
	}

	cellsResolved.WithLabelValues(string(cell.Status)).Inc()
	if !cell.IsOK() {
		a.logger.Debug("Balance cell resolved with failure",
			zap.Uint64("generation", task.generation),
			zap.String("wallet", string(key)),
			zap.String("chain", chain),
			zap.String("status", string(cell.Status)),
			zap.String("reason", cell.Reason),
		)
	}
}

// Poll returns the task's current state without blocking.
// A nil task yields an empty, finished snapshot.
func (a *BalanceAggregator) Poll(task *AggregationTask) entities.AggregationSnapshot {
	if task == nil {
		return entities.AggregationSnapshot{
			Status: entities.TaskDone,
			Matrix: entities.BalanceMatrix{},
		}
	}
	return task.Snapshot()
}

// Current returns the active task, or nil before the first submission
func (a *BalanceAggregator) Current() *AggregationTask {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Lookup finds a snapshot by generation: the active task, recently replaced
// tasks, then the cache
func (a *BalanceAggregator) Lookup(ctx context.Context, generation uint64) (*entities.AggregationSnapshot, error) {
	if task := a.Current(); task != nil && task.generation == generation {
		snapshot := task.Snapshot()
		return &snapshot, nil
	}

	if task, ok := a.recent.Get(generation); ok {
		snapshot := task.Snapshot()
		return &snapshot, nil
	}

	if a.cache == nil {
		return nil, ErrTaskNotFound
	}

	var cached entities.AggregationSnapshot
	if err := a.cache.Get(ctx, a.cacheKey(generation), &cached); err != nil {
		a.logger.Debug("Aggregation snapshot not cached",
			zap.Uint64("generation", generation),
			zap.Error(err),
		)
		return nil, ErrTaskNotFound
	}

	return &cached, nil
}

func (a *BalanceAggregator) cacheSnapshot(task *AggregationTask) {
	if a.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.cache.SetWithTTL(ctx, a.cacheKey(task.generation), task.Snapshot(), a.config.ResultTTL); err != nil {
		a.logger.Warn("Failed to cache aggregation snapshot",
			zap.Uint64("generation", task.generation),
			zap.Error(err),
		)
	}
}

// cacheKey scopes keys to this process; generation numbers restart with each run
func (a *BalanceAggregator) cacheKey(generation uint64) string {
	return fmt.Sprintf("balances:%s:%d", a.instanceID, generation)
}

// Close stops dispatching queued queries and waits for background work.
// Queries that never started resolve as failed. Later submissions are rejected.
func (a *BalanceAggregator) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.cancel()
	a.wg.Wait()
}

// ActiveGeneration reports the current generation while it is still resolving
func (a *BalanceAggregator) ActiveGeneration() (uint64, bool) {
	task := a.Current()
	if task == nil {
		return 0, false
	}

	select {
	case <-task.Done():
		return task.generation, false
	default:
		return task.generation, true
	}
}
