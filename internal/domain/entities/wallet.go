package entities

import (
	"strings"
	"time"
)

// AddressKeySeparator joins a wallet label and address into an AddressKey
const AddressKeySeparator = ":"

// AddressKey identifies one row of a balance matrix
type AddressKey string

// WalletIdentity pairs a user label with a candidate address.
// The address is not validated on creation; each balance query decides.
type WalletIdentity struct {
	ID        int64     `db:"id" json:"id,omitempty" yaml:"-"`
	Label     string    `db:"label" json:"label" yaml:"label"`
	Address   string    `db:"address" json:"address" yaml:"address"`
	CreatedAt time.Time `db:"created_at" json:"-" yaml:"-"`
}

// labelEscaper escapes the separator inside labels so the first bare
// separator always ends the label
var labelEscaper = strings.NewReplacer(`\`, `\\`, AddressKeySeparator, `\`+AddressKeySeparator)

// Key returns label:address, so two wallets sharing either half still get distinct rows.
// Backslashes and separators in the label are backslash-escaped.
func (w WalletIdentity) Key() AddressKey {
	return AddressKey(labelEscaper.Replace(w.Label) + AddressKeySeparator + w.Address)
}

// DedupeWallets collapses wallets sharing a key to the last occurrence
func DedupeWallets(wallets []WalletIdentity) []WalletIdentity {
	last := make(map[AddressKey]int, len(wallets))
	for i, w := range wallets {
		last[w.Key()] = i
	}

	result := make([]WalletIdentity, 0, len(last))
	for i, w := range wallets {
		if last[w.Key()] == i {
			result = append(result, w)
		}
	}
	return result
}
