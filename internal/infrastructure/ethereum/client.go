package ethereum

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
)

// ErrEndpointUnavailable indicates a chain endpoint could not be configured
var ErrEndpointUnavailable = errors.New("endpoint unavailable")

// Ensure Client implements BalanceClient
var _ repositories.BalanceClient = (*Client)(nil)

// Client queries native balances on one chain over JSON-RPC (eth_getBalance).
// It is read-only after construction and safe for concurrent use.
type Client struct {
	chain  entities.ChainEndpoint
	rpc    *rpc.Client
	client *ethclient.Client
	config config.RPCConfig
	logger *zap.Logger
}

// NewClient creates a balance client for a chain endpoint.
// Only http and https endpoints are supported; building the client performs no network I/O.
func NewClient(chain entities.ChainEndpoint, cfg config.RPCConfig, logger *zap.Logger) (*Client, error) {
	endpoint, err := ParseEndpointURL(chain.RPCURL)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         (&net.Dialer{Timeout: cfg.DialTimeout}).DialContext,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	rpcClient, err := rpc.DialOptions(context.Background(), endpoint.String(), rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize transport for %q: %v", ErrEndpointUnavailable, chain.Name, err)
	}

	logger.Debug("Created balance client",
		zap.String("chain", chain.Name),
		zap.String("rpc_host", endpoint.Host),
	)

	return &Client{
		chain:  chain,
		rpc:    rpcClient,
		client: ethclient.NewClient(rpcClient),
		config: cfg,
		logger: logger,
	}, nil
}

// ParseEndpointURL checks that raw is an absolute http(s) URL with a host
func ParseEndpointURL(raw string) (*url.URL, error) {
	endpoint, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rpc url: %v", ErrEndpointUnavailable, err)
	}

	switch strings.ToLower(endpoint.Scheme) {
	case "http", "https":
	case "":
		return nil, fmt.Errorf("%w: rpc url %q has no scheme", ErrEndpointUnavailable, raw)
	default:
		return nil, fmt.Errorf("%w: unsupported rpc url scheme %q", ErrEndpointUnavailable, endpoint.Scheme)
	}

	if endpoint.Host == "" {
		return nil, fmt.Errorf("%w: rpc url %q has no host", ErrEndpointUnavailable, raw)
	}

	return endpoint, nil
}

// Close releases the underlying RPC client
func (c *Client) Close() {
	c.rpc.Close()
}

// Chain returns the endpoint this client was built for
func (c *Client) Chain() entities.ChainEndpoint {
	return c.chain
}

// QueryBalance returns the latest native balance of address.
// Malformed addresses short-circuit without a network call. Exactly one request is made otherwise.
func (c *Client) QueryBalance(ctx context.Context, address string) entities.BalanceCell {
	if !IsValidAddress(address) {
		return entities.InvalidAddressCell()
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	balance, err := c.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		c.logger.Debug("Balance query failed",
			zap.String("chain", c.chain.Name),
			zap.String("address", address),
			zap.Error(err),
		)
		return entities.QueryFailedCell(err.Error())
	}

	return entities.OkCell(FormatBalance(balance, NativeDecimals))
}
