package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// Ensure WalletRepo implements WalletRepository
var _ repositories.WalletRepository = (*WalletRepo)(nil)

// WalletRepo implements WalletRepository using PostgreSQL
type WalletRepo struct {
	db *sqlx.DB
}

// NewWalletRepo creates a new wallet repository
func NewWalletRepo(db *sqlx.DB) *WalletRepo {
	return &WalletRepo{db: db}
}

// GetAll retrieves all wallets in insertion order
func (r *WalletRepo) GetAll(ctx context.Context) ([]entities.WalletIdentity, error) {
	wallets := make([]entities.WalletIdentity, 0)
	query := `SELECT id, label, address, created_at FROM wallets ORDER BY id`

	if err := r.db.SelectContext(ctx, &wallets, query); err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}

	return wallets, nil
}

// Create inserts a wallet and fills in its ID
func (r *WalletRepo) Create(ctx context.Context, wallet *entities.WalletIdentity) error {
	query := `
		INSERT INTO wallets (label, address)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(ctx, query, wallet.Label, wallet.Address).
		Scan(&wallet.ID, &wallet.CreatedAt); err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// Delete removes a wallet by ID
func (r *WalletRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete wallet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
