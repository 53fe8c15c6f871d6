package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// BalanceService starts and reads balance aggregations for API callers
type BalanceService struct {
	aggregator *BalanceAggregator
	chainRepo  repositories.ChainRepository
	walletRepo repositories.WalletRepository
	logger     *zap.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	aggregator *BalanceAggregator,
	chainRepo repositories.ChainRepository,
	walletRepo repositories.WalletRepository,
	logger *zap.Logger,
) *BalanceService {
	return &BalanceService{
		aggregator: aggregator,
		chainRepo:  chainRepo,
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// StartQueryRequest selects what to aggregate. A nil list is loaded from the
// configured settings at call time; an empty list means no rows or columns.
type StartQueryRequest struct {
	Chains  []entities.ChainEndpoint  `json:"chains,omitempty"`
	Wallets []entities.WalletIdentity `json:"wallets,omitempty"`
}

// QueryDTO is the API representation of an aggregation
type QueryDTO struct {
	entities.AggregationSnapshot
	Progress float64                                   `json:"progress"`
	Grid     map[entities.AddressKey]map[string]string `json:"display,omitempty"`
}

// QueryResponse wraps an aggregation for API response
type QueryResponse struct {
	Data QueryDTO `json:"data"`
}

// StartQuery submits a new aggregation, superseding any running one
func (s *BalanceService) StartQuery(ctx context.Context, req StartQueryRequest) (*QueryResponse, error) {
	chains := req.Chains
	if chains == nil {
		loaded, err := s.chainRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load chains: %w", err)
		}
		chains = loaded
	}

	wallets := req.Wallets
	if wallets == nil {
		loaded, err := s.walletRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load wallets: %w", err)
		}
		wallets = loaded
	}

	task, err := s.aggregator.Submit(chains, wallets)
	if err != nil {
		return nil, err
	}

	return newQueryResponse(s.aggregator.Poll(task)), nil
}

// GetQuery returns the state of an aggregation by generation
func (s *BalanceService) GetQuery(ctx context.Context, generation uint64) (*QueryResponse, error) {
	snapshot, err := s.aggregator.Lookup(ctx, generation)
	if err != nil {
		return nil, err
	}
	return newQueryResponse(*snapshot), nil
}

// CurrentQuery returns the active aggregation, or ErrTaskNotFound before the first submission
func (s *BalanceService) CurrentQuery() (*QueryResponse, error) {
	task := s.aggregator.Current()
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return newQueryResponse(s.aggregator.Poll(task)), nil
}

func newQueryResponse(snapshot entities.AggregationSnapshot) *QueryResponse {
	return &QueryResponse{
		Data: QueryDTO{
			AggregationSnapshot: snapshot,
			Progress:            snapshot.Progress(),
		},
	}
}
