package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
	"github.com/bimakw/wallet-balances/internal/infrastructure/ethereum"
)

// SettingsService manages the configured chain and wallet lists
type SettingsService struct {
	chainRepo  repositories.ChainRepository
	walletRepo repositories.WalletRepository
	logger     *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	chainRepo repositories.ChainRepository,
	walletRepo repositories.WalletRepository,
	logger *zap.Logger,
) *SettingsService {
	return &SettingsService{
		chainRepo:  chainRepo,
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// ChainDTO is the API representation of a chain endpoint
type ChainDTO struct {
	Name   string `json:"name"`
	RPCURL string `json:"rpc_url"`
}

// WalletDTO is the API representation of a wallet
type WalletDTO struct {
	ID           int64  `json:"id"`
	Label        string `json:"label"`
	Address      string `json:"address"`
	Key          string `json:"key"`
	ValidAddress bool   `json:"valid_address"`
}

// ChainListResponse wraps chains for API response
type ChainListResponse struct {
	Data []ChainDTO `json:"data"`
}

// WalletListResponse wraps wallets for API response
type WalletListResponse struct {
	Data []WalletDTO `json:"data"`
}

// ListChains returns all configured chains
func (s *SettingsService) ListChains(ctx context.Context) (*ChainListResponse, error) {
	chains, err := s.chainRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}

	data := make([]ChainDTO, len(chains))
	for i, c := range chains {
		data[i] = ChainDTO{Name: c.Name, RPCURL: c.RPCURL}
	}

	return &ChainListResponse{Data: data}, nil
}

// SaveChain creates a chain or replaces the URL of an existing one
func (s *SettingsService) SaveChain(ctx context.Context, name, rpcURL string) (*ChainDTO, error) {
	chain := &entities.ChainEndpoint{
		Name:   strings.TrimSpace(name),
		RPCURL: strings.TrimSpace(rpcURL),
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}

	if err := s.chainRepo.Upsert(ctx, chain); err != nil {
		return nil, fmt.Errorf("failed to save chain: %w", err)
	}

	s.logger.Info("Saved chain", zap.String("chain", chain.Name))

	return &ChainDTO{Name: chain.Name, RPCURL: chain.RPCURL}, nil
}

// DeleteChain removes a chain, reporting whether it existed
func (s *SettingsService) DeleteChain(ctx context.Context, name string) (bool, error) {
	deleted, err := s.chainRepo.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete chain: %w", err)
	}
	return deleted, nil
}

// ListWallets returns all configured wallets, flagging malformed addresses without rejecting them
func (s *SettingsService) ListWallets(ctx context.Context) (*WalletListResponse, error) {
	wallets, err := s.walletRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	data := make([]WalletDTO, len(wallets))
	for i, w := range wallets {
		data[i] = toWalletDTO(w)
	}

	return &WalletListResponse{Data: data}, nil
}

// AddWallet stores a wallet; the address is kept even when malformed
func (s *SettingsService) AddWallet(ctx context.Context, label, address string) (*WalletDTO, error) {
	wallet := &entities.WalletIdentity{
		Label:   strings.TrimSpace(label),
		Address: strings.TrimSpace(address),
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to add wallet: %w", err)
	}

	dto := toWalletDTO(*wallet)
	return &dto, nil
}

// DeleteWallet removes a wallet, reporting whether it existed
func (s *SettingsService) DeleteWallet(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.walletRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete wallet: %w", err)
	}
	return deleted, nil
}

func toWalletDTO(w entities.WalletIdentity) WalletDTO {
	return WalletDTO{
		ID:           w.ID,
		Label:        w.Label,
		Address:      w.Address,
		Key:          string(w.Key()),
		ValidAddress: ethereum.IsValidAddress(w.Address),
	}
}
