package repositories

import (
	"context"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// BalanceClient queries native-currency balances on one chain
type BalanceClient interface {
	// QueryBalance never returns an error; failures are encoded in the cell
	QueryBalance(ctx context.Context, address string) entities.BalanceCell
}

// BalanceClientFactory builds a BalanceClient for a chain endpoint.
// Implementations must not perform network I/O; a returned error marks the
// whole chain column as endpoint_unavailable.
type BalanceClientFactory interface {
	Client(chain entities.ChainEndpoint) (BalanceClient, error)
}
