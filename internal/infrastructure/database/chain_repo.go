package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// Ensure ChainRepo implements ChainRepository
var _ repositories.ChainRepository = (*ChainRepo)(nil)

// ChainRepo implements ChainRepository using PostgreSQL
type ChainRepo struct {
	db *sqlx.DB
}

// NewChainRepo creates a new chain repository
func NewChainRepo(db *sqlx.DB) *ChainRepo {
	return &ChainRepo{db: db}
}

// GetAll retrieves all chains
func (r *ChainRepo) GetAll(ctx context.Context) ([]entities.ChainEndpoint, error) {
	chains := make([]entities.ChainEndpoint, 0)
	query := `SELECT name, rpc_url, created_at, updated_at FROM chains ORDER BY name`

	if err := r.db.SelectContext(ctx, &chains, query); err != nil {
		return nil, fmt.Errorf("failed to get chains: %w", err)
	}

	return chains, nil
}

// GetByName retrieves a chain by name
func (r *ChainRepo) GetByName(ctx context.Context, name string) (*entities.ChainEndpoint, error) {
	var chain entities.ChainEndpoint
	query := `SELECT name, rpc_url, created_at, updated_at FROM chains WHERE name = $1`

	if err := r.db.GetContext(ctx, &chain, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}

	return &chain, nil
}

// Upsert creates or updates a chain
func (r *ChainRepo) Upsert(ctx context.Context, chain *entities.ChainEndpoint) error {
	query := `
		INSERT INTO chains (name, rpc_url)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			rpc_url = EXCLUDED.rpc_url,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRowxContext(ctx, query, chain.Name, chain.RPCURL).
		Scan(&chain.CreatedAt, &chain.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert chain: %w", err)
	}

	return nil
}

// Delete removes a chain by name
func (r *ChainRepo) Delete(ctx context.Context, name string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chains WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete chain: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
