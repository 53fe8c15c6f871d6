package ethereum

import "testing"

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"lowercase", "0x1111111111111111111111111111111111111111", true},
		{"checksummed", "0xdAC17F958D2ee523a2206206994597C13D831ec7", true},
		{"uppercase prefix", "0X1111111111111111111111111111111111111111", true},
		{"missing prefix", "1111111111111111111111111111111111111111", false},
		{"too short", "0x11111111111111111111111111111111111111", false},
		{"too long", "0x111111111111111111111111111111111111111111", false},
		{"non hex", "0x111111111111111111111111111111111111111g", false},
		{"empty", "", false},
		{"label instead of address", "my wallet", false},
		{"surrounding whitespace", " 0x1111111111111111111111111111111111111111", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidAddress(tt.input); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
