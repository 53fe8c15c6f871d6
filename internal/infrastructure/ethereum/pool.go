package ethereum

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// Ensure ClientPool implements BalanceClientFactory
var _ repositories.BalanceClientFactory = (*ClientPool)(nil)

// ClientPool keeps recently used balance clients so repeated submissions
// against the same endpoint reuse one HTTP connection pool
type ClientPool struct {
	mu      sync.Mutex
	clients *lru.Cache[string, *Client]
	config  config.RPCConfig
	logger  *zap.Logger
}

// NewClientPool creates a pool holding at most size clients
func NewClientPool(size int, cfg config.RPCConfig, logger *zap.Logger) (*ClientPool, error) {
	clients, err := lru.NewWithEvict[string, *Client](size, func(_ string, c *Client) {
		logger.Debug("Closing pooled balance client",
			zap.String("chain", c.Chain().Name),
		)
		c.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client pool: %w", err)
	}

	return &ClientPool{
		clients: clients,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Client returns a pooled client for chain, building one if needed.
// Clients are keyed by name and URL, so editing a chain's URL yields a fresh client.
func (p *ClientPool) Client(chain entities.ChainEndpoint) (repositories.BalanceClient, error) {
	key := chain.Name + "|" + chain.RPCURL

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients.Get(key); ok {
		return c, nil
	}

	c, err := NewClient(chain, p.config, p.logger)
	if err != nil {
		return nil, err
	}
	p.clients.Add(key, c)

	return c, nil
}

// Len returns the number of pooled clients
func (p *ClientPool) Len() int {
	return p.clients.Len()
}

// Close closes and drops every pooled client
func (p *ClientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients.Purge()
}
