package services

import (
	"testing"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/testutil"
)

func TestAggregationTask_Lifecycle(t *testing.T) {
	chains := testutil.CreateTestChains(2)
	wallets := testutil.CreateTestWallets(1)
	key := wallets[0].Key()

	task := newAggregationTask(7, chains, wallets)

	snapshot := task.Snapshot()
	if snapshot.Status != entities.TaskPending {
		t.Errorf("expected pending, got %s", snapshot.Status)
	}
	if snapshot.Generation != 7 || snapshot.TotalCells != 2 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}

	task.start()
	if task.Snapshot().Status != entities.TaskRunning {
		t.Error("expected running after start")
	}

	if !task.record(key, "chain-1", entities.OkCell("1")) {
		t.Fatal("expected first write to be accepted")
	}
	if task.record(key, "chain-1", entities.OkCell("2")) {
		t.Error("expected duplicate write to be rejected")
	}

	select {
	case <-task.Done():
		t.Fatal("task finished early")
	default:
	}

	if !task.record(key, "chain-2", entities.QueryFailedCell("timeout")) {
		t.Fatal("expected second write to be accepted")
	}

	<-task.Done()

	snapshot = task.Snapshot()
	if snapshot.Status != entities.TaskDone || snapshot.CompletedAt == nil {
		t.Errorf("expected done with completion time, got %+v", snapshot)
	}
	if cell, _ := snapshot.Matrix.Get(key, "chain-1"); cell.Balance != "1" {
		t.Errorf("expected first write to stick, got %+v", cell)
	}
	if task.record(key, "chain-3", entities.OkCell("0")) {
		t.Error("expected writes after completion to be rejected")
	}
}

func TestAggregationTask_RecordMovesPendingToRunning(t *testing.T) {
	wallets := testutil.CreateTestWallets(1)
	task := newAggregationTask(1, testutil.CreateTestChains(2), wallets)

	task.record(wallets[0].Key(), "chain-1", entities.EndpointUnavailableCell("bad url"))

	if task.Snapshot().Status != entities.TaskRunning {
		t.Error("expected first recorded cell to move the task to running")
	}
}

func TestAggregationTask_Supersede(t *testing.T) {
	wallets := testutil.CreateTestWallets(1)
	task := newAggregationTask(1, testutil.CreateTestChains(1), wallets)

	if !task.supersede() {
		t.Fatal("expected unfinished task to be superseded")
	}
	if task.record(wallets[0].Key(), "chain-1", entities.OkCell("1")) {
		t.Error("expected superseded task to reject writes")
	}

	snapshot := task.Snapshot()
	if !snapshot.Superseded || snapshot.CompletedCells != 0 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
}

func TestAggregationTask_SupersedeFinishedTask(t *testing.T) {
	task := newAggregationTask(1, nil, nil)

	if task.supersede() {
		t.Error("expected finished task to keep its result")
	}
	if task.Snapshot().Superseded {
		t.Error("finished task must not be flagged superseded")
	}
}

func TestAggregationTask_EmptyIsDone(t *testing.T) {
	task := newAggregationTask(1, testutil.CreateTestChains(3), nil)

	select {
	case <-task.Done():
	default:
		t.Fatal("expected empty task to be done")
	}

	snapshot := task.Snapshot()
	if snapshot.Status != entities.TaskDone || snapshot.Progress() != 1 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}
	if len(snapshot.Chains) != 3 {
		t.Errorf("expected chains to be kept, got %v", snapshot.Chains)
	}
}

func TestAggregationTask_SnapshotIsCopy(t *testing.T) {
	wallets := testutil.CreateTestWallets(1)
	task := newAggregationTask(1, testutil.CreateTestChains(2), wallets)
	task.record(wallets[0].Key(), "chain-1", entities.OkCell("1"))

	snapshot := task.Snapshot()
	snapshot.Matrix.Set(wallets[0].Key(), "chain-2", entities.OkCell("99"))
	snapshot.Chains[0] = "mutated"

	fresh := task.Snapshot()
	if _, ok := fresh.Matrix.Get(wallets[0].Key(), "chain-2"); ok {
		t.Error("snapshot mutation leaked into task")
	}
	if fresh.Chains[0] != "chain-1" {
		t.Error("chain list mutation leaked into task")
	}
	if fresh.CompletedCells != 1 {
		t.Errorf("expected 1 completed cell, got %d", fresh.CompletedCells)
	}
}
