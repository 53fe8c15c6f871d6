package repositories

import (
	"context"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// ChainRepository defines interface for configured chain endpoints
type ChainRepository interface {
	// GetAll returns every configured chain ordered by name
	GetAll(ctx context.Context) ([]entities.ChainEndpoint, error)

	// GetByName returns nil when the chain does not exist
	GetByName(ctx context.Context, name string) (*entities.ChainEndpoint, error)

	// Upsert creates a chain or replaces the RPC URL of an existing one
	Upsert(ctx context.Context, chain *entities.ChainEndpoint) error

	// Delete removes a chain, reporting whether it existed
	Delete(ctx context.Context, name string) (bool, error)
}
