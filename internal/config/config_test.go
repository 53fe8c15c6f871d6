package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RPC.RequestTimeout != 10*time.Second {
		t.Errorf("expected request timeout 10s, got %s", cfg.RPC.RequestTimeout)
	}
	if cfg.Aggregator.MaxConcurrency != 16 {
		t.Errorf("expected max concurrency 16, got %d", cfg.Aggregator.MaxConcurrency)
	}
	if cfg.Aggregator.ClientPoolSize != 64 {
		t.Errorf("expected client pool size 64, got %d", cfg.Aggregator.ClientPoolSize)
	}
	if cfg.API.Port != 8081 {
		t.Errorf("expected API port 8081, got %d", cfg.API.Port)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("AGGREGATOR_MAX_CONCURRENCY", "4")
	t.Setenv("RPC_REQUEST_TIMEOUT", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Aggregator.MaxConcurrency != 4 {
		t.Errorf("expected max concurrency 4, got %d", cfg.Aggregator.MaxConcurrency)
	}
	if cfg.RPC.RequestTimeout != 250*time.Millisecond {
		t.Errorf("expected request timeout 250ms, got %s", cfg.RPC.RequestTimeout)
	}
}

func TestLoad_RejectsNonPositiveConcurrency(t *testing.T) {
	t.Setenv("AGGREGATOR_MAX_CONCURRENCY", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero concurrency, got nil")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		Name:     "n",
		SSLMode:  "disable",
	}

	expected := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.DSN(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
