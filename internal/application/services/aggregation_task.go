package services

import (
	"sync"
	"time"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// AggregationTask tracks one submission's progress.
// Only queries belonging to this task write into it; once superseded it
// rejects every further write.
type AggregationTask struct {
	generation  uint64
	chains      []string
	wallets     []entities.AddressKey
	submittedAt time.Time

	mu          sync.RWMutex
	status      entities.TaskStatus
	matrix      entities.BalanceMatrix
	total       int
	completed   int
	superseded  bool
	completedAt *time.Time
	done        chan struct{}
}

func newAggregationTask(generation uint64, chains []entities.ChainEndpoint, wallets []entities.WalletIdentity) *AggregationTask {
	t := &AggregationTask{
		generation:  generation,
		chains:      make([]string, len(chains)),
		wallets:     make([]entities.AddressKey, len(wallets)),
		submittedAt: time.Now().UTC(),
		status:      entities.TaskPending,
		matrix:      make(entities.BalanceMatrix, len(wallets)),
		total:       len(chains) * len(wallets),
		done:        make(chan struct{}),
	}
	for i, c := range chains {
		t.chains[i] = c.Name
	}
	for i, w := range wallets {
		t.wallets[i] = w.Key()
	}

	if t.total == 0 {
		t.finishLocked()
	}

	return t
}

// Generation returns the task's submission number
func (t *AggregationTask) Generation() uint64 {
	return t.generation
}

// Done is closed once every cell has resolved
func (t *AggregationTask) Done() <-chan struct{} {
	return t.done
}

// record stores one cell. It reports false when the write was discarded
// because the task was superseded or the cell had already resolved.
func (t *AggregationTask) record(key entities.AddressKey, chain string, cell entities.BalanceCell) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.superseded || t.status == entities.TaskDone {
		return false
	}
	if _, exists := t.matrix.Get(key, chain); exists {
		return false
	}

	t.matrix.Set(key, chain, cell)
	t.completed++
	t.status = entities.TaskRunning

	if t.completed == t.total {
		t.finishLocked()
	}
	return true
}

// start moves a pending task to running once its queries are being dispatched
func (t *AggregationTask) start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == entities.TaskPending {
		t.status = entities.TaskRunning
	}
}

// supersede stops the task from accepting writes. It reports false for a task
// that had already finished, which keeps its completed result.
func (t *AggregationTask) supersede() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == entities.TaskDone {
		return false
	}
	t.superseded = true
	return true
}

func (t *AggregationTask) isSuperseded() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.superseded
}

func (t *AggregationTask) finishLocked() {
	now := time.Now().UTC()
	t.status = entities.TaskDone
	t.completedAt = &now
	close(t.done)
}

// Snapshot copies the task's current state. It never blocks on queries.
func (t *AggregationTask) Snapshot() entities.AggregationSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := entities.AggregationSnapshot{
		Generation:     t.generation,
		Status:         t.status,
		Superseded:     t.superseded,
		Chains:         append([]string(nil), t.chains...),
		Wallets:        append([]entities.AddressKey(nil), t.wallets...),
		Matrix:         t.matrix.Clone(),
		CompletedCells: t.completed,
		TotalCells:     t.total,
		SubmittedAt:    t.submittedAt,
	}
	if t.completedAt != nil {
		completedAt := *t.completedAt
		snapshot.CompletedAt = &completedAt
	}

	return snapshot
}
