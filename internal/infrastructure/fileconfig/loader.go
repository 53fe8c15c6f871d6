package fileconfig

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bimakw/wallet-balances/internal/domain/entities"
)

// Settings is the chains/wallets file read by the checker CLI:
//
//	chains:
//	  - name: ethereum
//	    rpc_url: https://eth.example.org
//	wallets:
//	  - label: cold
//	    address: "0x..."
type Settings struct {
	Chains  []entities.ChainEndpoint  `yaml:"chains"`
	Wallets []entities.WalletIdentity `yaml:"wallets"`
}

// LoadedSettings pairs the parsed file with its hash for logging
type LoadedSettings struct {
	Settings
	SHA256 string
}

// Loader reads and validates a settings file
type Loader struct {
	File string
}

// NewLoader creates a loader for the settings file at path file
func NewLoader(file string) *Loader {
	return &Loader{File: file}
}

// Load reads the file. Wallet addresses are kept as written; each balance
// query decides whether they are valid.
func (l *Loader) Load(ctx context.Context) (*LoadedSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(l.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.File, err)
	}

	sum := sha256.Sum256(raw)
	return &LoadedSettings{
		Settings: *settings,
		SHA256:   hex.EncodeToString(sum[:]),
	}, nil
}

// Parse decodes and validates settings YAML
func Parse(raw []byte) (*Settings, error) {
	var settings Settings

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := validate(settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

func validate(settings Settings) error {
	for i, c := range settings.Chains {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("chains[%d]: %w", i, err)
		}
	}
	for i, w := range settings.Wallets {
		if strings.TrimSpace(w.Label) == "" && strings.TrimSpace(w.Address) == "" {
			return fmt.Errorf("wallets[%d]: label or address is required", i)
		}
	}
	return nil
}
