package repositories

import (
	"context"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// WalletRepository defines interface for configured wallets
type WalletRepository interface {
	// GetAll returns every wallet in insertion order
	GetAll(ctx context.Context) ([]entities.WalletIdentity, error)

	// Create stores a wallet and fills in its ID
	Create(ctx context.Context, wallet *entities.WalletIdentity) error

	// Delete removes a wallet, reporting whether it existed
	Delete(ctx context.Context, id int64) (bool, error)
}
