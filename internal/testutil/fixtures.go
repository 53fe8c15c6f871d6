package testutil

import (
	"fmt"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// Common test addresses
const (
	AliceAddress   = "0x1111111111111111111111111111111111111111"
	BobAddress     = "0x2222222222222222222222222222222222222222"
	CharlieAddr    = "0x3333333333333333333333333333333333333333"
	MalformedAddr  = "not-an-address"
	ShortHexAddr   = "0x1234"
	EthereumRPCURL = "https://eth.example.org"
	PolygonRPCURL  = "https://polygon.example.org"
	ArbitrumRPCURL = "https://arb.example.org"
)

// CreateTestChain creates a chain endpoint with an https URL derived from its name
func CreateTestChain(name string, opts ...ChainOption) entities.ChainEndpoint {
	c := entities.ChainEndpoint{
		Name:   name,
		RPCURL: fmt.Sprintf("https://%s.example.org", name),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

type ChainOption func(*entities.ChainEndpoint)

func WithRPCURL(url string) ChainOption {
	return func(c *entities.ChainEndpoint) {
		c.RPCURL = url
	}
}

// CreateTestChains creates chains named chain-1..chain-n
func CreateTestChains(n int) []entities.ChainEndpoint {
	chains := make([]entities.ChainEndpoint, n)
	for i := range chains {
		chains[i] = CreateTestChain(fmt.Sprintf("chain-%d", i+1))
	}
	return chains
}

// CreateTestWallet creates a wallet with default values
func CreateTestWallet(opts ...WalletOption) entities.WalletIdentity {
	w := entities.WalletIdentity{
		Label:   "alice",
		Address: AliceAddress,
	}

	for _, opt := range opts {
		opt(&w)
	}

	return w
}

type WalletOption func(*entities.WalletIdentity)

func WithWalletID(id int64) WalletOption {
	return func(w *entities.WalletIdentity) {
		w.ID = id
	}
}

func WithLabel(label string) WalletOption {
	return func(w *entities.WalletIdentity) {
		w.Label = label
	}
}

func WithAddress(addr string) WalletOption {
	return func(w *entities.WalletIdentity) {
		w.Address = addr
	}
}

// CreateTestWallets creates n wallets with distinct valid addresses
func CreateTestWallets(n int) []entities.WalletIdentity {
	wallets := make([]entities.WalletIdentity, n)
	for i := range wallets {
		wallets[i] = CreateTestWallet(
			WithLabel(fmt.Sprintf("wallet-%d", i+1)),
			WithAddress(fmt.Sprintf("0x%040x", i+1)),
		)
	}
	return wallets
}
