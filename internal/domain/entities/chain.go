package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidChain is returned when a chain endpoint is missing its name or RPC URL
var ErrInvalidChain = errors.New("invalid chain endpoint")

// ChainEndpoint describes one chain's RPC target
type ChainEndpoint struct {
	Name      string    `db:"name" json:"name" yaml:"name"`
	RPCURL    string    `db:"rpc_url" json:"rpc_url" yaml:"rpc_url"`
	CreatedAt time.Time `db:"created_at" json:"-" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-" yaml:"-"`
}

// ValidateName checks that the chain can label a matrix column
func (c ChainEndpoint) ValidateName() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidChain)
	}
	return nil
}

// Validate checks a chain before it is stored.
// URL well-formedness is checked later, per endpoint, when the client is built.
func (c ChainEndpoint) Validate() error {
	if err := c.ValidateName(); err != nil {
		return err
	}
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("%w: rpc_url is required for chain %q", ErrInvalidChain, c.Name)
	}
	return nil
}

// DedupeChains collapses chains sharing a name to the last occurrence.
// The surviving entries keep the relative order of their last occurrence.
func DedupeChains(chains []ChainEndpoint) []ChainEndpoint {
	last := make(map[string]int, len(chains))
	for i, c := range chains {
		last[c.Name] = i
	}

	result := make([]ChainEndpoint, 0, len(last))
	for i, c := range chains {
		if last[c.Name] == i {
			result = append(result, c)
		}
	}
	return result
}
