package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/domain/repositories"
	"github.com/bimakw/wallet-balances/internal/infrastructure/cache"
	"github.com/bimakw/wallet-balances/internal/infrastructure/ethereum"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockChainRepository is a mock implementation of ChainRepository
type MockChainRepository struct {
	mu     sync.RWMutex
	chains map[string]*entities.ChainEndpoint

	// Function hooks for custom behavior
	GetAllFunc    func(ctx context.Context) ([]entities.ChainEndpoint, error)
	GetByNameFunc func(ctx context.Context, name string) (*entities.ChainEndpoint, error)
	UpsertFunc    func(ctx context.Context, chain *entities.ChainEndpoint) error
	DeleteFunc    func(ctx context.Context, name string) (bool, error)

	// Call tracking
	Calls []MockCall
}

var _ repositories.ChainRepository = (*MockChainRepository)(nil)

func NewMockChainRepository() *MockChainRepository {
	return &MockChainRepository{
		chains: make(map[string]*entities.ChainEndpoint),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockChainRepository) GetAll(ctx context.Context) ([]entities.ChainEndpoint, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAll"})
	m.mu.Unlock()

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.ChainEndpoint, 0, len(m.chains))
	for _, c := range m.chains {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockChainRepository) GetByName(ctx context.Context, name string) (*entities.ChainEndpoint, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByName", Args: []interface{}{name}})
	m.mu.Unlock()

	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.chains[name]; ok {
		chain := *c
		return &chain, nil
	}
	return nil, nil
}

func (m *MockChainRepository) Upsert(ctx context.Context, chain *entities.ChainEndpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{chain}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, chain)
	}

	stored := *chain
	m.chains[chain.Name] = &stored
	return nil
}

func (m *MockChainRepository) Delete(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Delete", Args: []interface{}{name}})

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name)
	}

	if _, ok := m.chains[name]; !ok {
		return false, nil
	}
	delete(m.chains, name)
	return true, nil
}

// AddChains adds chains to the mock store
func (m *MockChainRepository) AddChains(chains ...entities.ChainEndpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chains {
		stored := c
		m.chains[c.Name] = &stored
	}
}

// Reset clears all stored data and calls
func (m *MockChainRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains = make(map[string]*entities.ChainEndpoint)
	m.Calls = make([]MockCall, 0)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets []entities.WalletIdentity
	nextID  int64

	GetAllFunc func(ctx context.Context) ([]entities.WalletIdentity, error)
	CreateFunc func(ctx context.Context, wallet *entities.WalletIdentity) error
	DeleteFunc func(ctx context.Context, id int64) (bool, error)

	Calls []MockCall
}

var _ repositories.WalletRepository = (*MockWalletRepository)(nil)

func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make([]entities.WalletIdentity, 0),
		nextID:  1,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockWalletRepository) GetAll(ctx context.Context) ([]entities.WalletIdentity, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAll"})
	m.mu.Unlock()

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.WalletIdentity, len(m.wallets))
	copy(result, m.wallets)
	return result, nil
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.WalletIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Create", Args: []interface{}{wallet}})

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, wallet)
	}

	wallet.ID = m.nextID
	wallet.CreatedAt = time.Now()
	m.nextID++
	m.wallets = append(m.wallets, *wallet)
	return nil
}

func (m *MockWalletRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Delete", Args: []interface{}{id}})

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}

	for i, w := range m.wallets {
		if w.ID == id {
			m.wallets = append(m.wallets[:i], m.wallets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// AddWallets adds wallets to the mock store, assigning IDs to those without one
func (m *MockWalletRepository) AddWallets(wallets ...entities.WalletIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range wallets {
		if w.ID == 0 {
			w.ID = m.nextID
		}
		if w.ID >= m.nextID {
			m.nextID = w.ID + 1
		}
		m.wallets = append(m.wallets, w)
	}
}

// Reset clears all stored data and calls
func (m *MockWalletRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = make([]entities.WalletIdentity, 0)
	m.nextID = 1
	m.Calls = make([]MockCall, 0)
}

// MockBalanceClient is a mock implementation of BalanceClient.
// Like the real client it rejects malformed addresses without a network call.
type MockBalanceClient struct {
	mu       sync.RWMutex
	chain    string
	balances map[string]string

	// QueryBalanceFunc replaces the simulated network call for valid addresses
	QueryBalanceFunc func(ctx context.Context, address string) entities.BalanceCell

	networkCalls atomic.Int64
	Calls        []MockCall
}

var _ repositories.BalanceClient = (*MockBalanceClient)(nil)

func NewMockBalanceClient(chain string) *MockBalanceClient {
	return &MockBalanceClient{
		chain:    chain,
		balances: make(map[string]string),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockBalanceClient) QueryBalance(ctx context.Context, address string) entities.BalanceCell {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "QueryBalance", Args: []interface{}{address}})
	m.mu.Unlock()

	if !ethereum.IsValidAddress(address) {
		return entities.InvalidAddressCell()
	}

	m.networkCalls.Add(1)

	if m.QueryBalanceFunc != nil {
		return m.QueryBalanceFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if balance, ok := m.balances[address]; ok {
		return entities.OkCell(balance)
	}
	return entities.OkCell("0")
}

// SetBalance sets the formatted balance returned for an address
func (m *MockBalanceClient) SetBalance(address, balance string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[address] = balance
}

// NetworkCalls returns how many queries reached the simulated node
func (m *MockBalanceClient) NetworkCalls() int {
	return int(m.networkCalls.Load())
}

// MockBalanceClientFactory is a mock implementation of BalanceClientFactory
type MockBalanceClientFactory struct {
	mu       sync.RWMutex
	clients  map[string]*MockBalanceClient
	failures map[string]error

	ClientFunc func(chain entities.ChainEndpoint) (repositories.BalanceClient, error)

	Calls []MockCall
}

var _ repositories.BalanceClientFactory = (*MockBalanceClientFactory)(nil)

func NewMockBalanceClientFactory() *MockBalanceClientFactory {
	return &MockBalanceClientFactory{
		clients:  make(map[string]*MockBalanceClient),
		failures: make(map[string]error),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockBalanceClientFactory) Client(chain entities.ChainEndpoint) (repositories.BalanceClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Client", Args: []interface{}{chain}})

	if m.ClientFunc != nil {
		return m.ClientFunc(chain)
	}

	if err, ok := m.failures[chain.Name]; ok {
		return nil, err
	}

	// reject URLs the real pool would reject
	if _, err := ethereum.ParseEndpointURL(chain.RPCURL); err != nil {
		return nil, err
	}

	client, ok := m.clients[chain.Name]
	if !ok {
		client = NewMockBalanceClient(chain.Name)
		m.clients[chain.Name] = client
	}
	return client, nil
}

// ClientFor returns the mock client for a chain, creating it on first use
func (m *MockBalanceClientFactory) ClientFor(chain string) *MockBalanceClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[chain]
	if !ok {
		client = NewMockBalanceClient(chain)
		m.clients[chain] = client
	}
	return client
}

// FailChain makes client construction fail for a chain
func (m *MockBalanceClientFactory) FailChain(chain string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[chain] = err
}

// TotalNetworkCalls sums network calls over every client built so far
func (m *MockBalanceClientFactory) TotalNetworkCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, c := range m.clients {
		total += c.NetworkCalls()
	}
	return total
}

// MockSnapshotCache is an in-memory cache storing values as JSON, like RedisCache
type MockSnapshotCache struct {
	mu    sync.RWMutex
	items map[string][]byte

	SetWithTTLFunc func(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Calls []MockCall
}

func NewMockSnapshotCache() *MockSnapshotCache {
	return &MockSnapshotCache{
		items: make(map[string][]byte),
		Calls: make([]MockCall, 0),
	}
}

func (m *MockSnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Get", Args: []interface{}{key}})
	m.mu.Unlock()

	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MockSnapshotCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "SetWithTTL", Args: []interface{}{key, ttl}})
	m.mu.Unlock()

	if m.SetWithTTLFunc != nil {
		return m.SetWithTTLFunc(ctx, key, value, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

// Keys returns the stored keys
func (m *MockSnapshotCache) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
