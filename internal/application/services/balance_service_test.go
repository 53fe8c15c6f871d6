package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/testutil"
)

type balanceServiceFixture struct {
	service    *BalanceService
	aggregator *BalanceAggregator
	factory    *testutil.MockBalanceClientFactory
	chainRepo  *testutil.MockChainRepository
	walletRepo *testutil.MockWalletRepository
}

func setupBalanceServiceTest(t *testing.T) balanceServiceFixture {
	t.Helper()

	factory := testutil.NewMockBalanceClientFactory()
	chainRepo := testutil.NewMockChainRepository()
	walletRepo := testutil.NewMockWalletRepository()
	logger := zap.NewNop()

	aggregator := NewBalanceAggregator(factory, testutil.NewMockSnapshotCache(), config.AggregatorConfig{
		MaxConcurrency: 4,
		ResultTTL:      time.Minute,
	}, logger)
	t.Cleanup(aggregator.Close)

	return balanceServiceFixture{
		service:    NewBalanceService(aggregator, chainRepo, walletRepo, logger),
		aggregator: aggregator,
		factory:    factory,
		chainRepo:  chainRepo,
		walletRepo: walletRepo,
	}
}

func TestBalanceService_StartQuery_LoadsSettings(t *testing.T) {
	f := setupBalanceServiceTest(t)
	f.chainRepo.AddChains(testutil.CreateTestChains(2)...)
	f.walletRepo.AddWallets(testutil.CreateTestWallets(3)...)

	resp, err := f.service.StartQuery(context.Background(), StartQueryRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Data.Generation != 1 {
		t.Errorf("expected generation 1, got %d", resp.Data.Generation)
	}
	if resp.Data.TotalCells != 6 {
		t.Errorf("expected 6 total cells, got %d", resp.Data.TotalCells)
	}
	if len(f.chainRepo.Calls) != 1 || len(f.walletRepo.Calls) != 1 {
		t.Error("expected settings to be loaded once each")
	}

	waitDone(t, f.aggregator.Current())
}

func TestBalanceService_StartQuery_ExplicitLists(t *testing.T) {
	f := setupBalanceServiceTest(t)
	f.chainRepo.AddChains(testutil.CreateTestChains(5)...)

	resp, err := f.service.StartQuery(context.Background(), StartQueryRequest{
		Chains:  []entities.ChainEndpoint{testutil.CreateTestChain("ethereum")},
		Wallets: []entities.WalletIdentity{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Data.TotalCells != 0 || resp.Data.Status != entities.TaskDone || resp.Data.Progress != 1 {
		t.Errorf("expected empty finished query, got %+v", resp.Data)
	}
	if len(f.chainRepo.Calls) != 0 || len(f.walletRepo.Calls) != 0 {
		t.Error("explicit lists must not touch the repositories")
	}
}

func TestBalanceService_StartQuery_Errors(t *testing.T) {
	t.Run("chain repository error", func(t *testing.T) {
		f := setupBalanceServiceTest(t)
		f.chainRepo.GetAllFunc = func(ctx context.Context) ([]entities.ChainEndpoint, error) {
			return nil, errors.New("database error")
		}

		if _, err := f.service.StartQuery(context.Background(), StartQueryRequest{}); err == nil {
			t.Error("expected error, got nil")
		}
		if f.aggregator.Current() != nil {
			t.Error("failed load must not submit")
		}
	})

	t.Run("invalid chain", func(t *testing.T) {
		f := setupBalanceServiceTest(t)

		_, err := f.service.StartQuery(context.Background(), StartQueryRequest{
			Chains: []entities.ChainEndpoint{{RPCURL: testutil.EthereumRPCURL}},
		})
		if !errors.Is(err, entities.ErrInvalidChain) {
			t.Errorf("expected ErrInvalidChain, got %v", err)
		}
	})
}

func TestBalanceService_GetQuery(t *testing.T) {
	f := setupBalanceServiceTest(t)
	ctx := context.Background()

	started, err := f.service.StartQuery(ctx, StartQueryRequest{
		Chains:  testutil.CreateTestChains(1),
		Wallets: testutil.CreateTestWallets(2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, f.aggregator.Current())

	resp, err := f.service.GetQuery(ctx, started.Data.Generation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Status != entities.TaskDone || resp.Data.CompletedCells != 2 || resp.Data.Progress != 1 {
		t.Errorf("unexpected query %+v", resp.Data)
	}

	if _, err := f.service.GetQuery(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestBalanceService_CurrentQuery(t *testing.T) {
	f := setupBalanceServiceTest(t)

	if _, err := f.service.CurrentQuery(); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound before first submission, got %v", err)
	}

	_, _ = f.service.StartQuery(context.Background(), StartQueryRequest{Chains: []entities.ChainEndpoint{}, Wallets: []entities.WalletIdentity{}})
	second, _ := f.service.StartQuery(context.Background(), StartQueryRequest{Chains: []entities.ChainEndpoint{}, Wallets: []entities.WalletIdentity{}})

	resp, err := f.service.CurrentQuery()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Data.Generation != second.Data.Generation {
		t.Errorf("expected current generation %d, got %d", second.Data.Generation, resp.Data.Generation)
	}
}
