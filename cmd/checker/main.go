package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/application/services"
	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/domain/entities"
	"github.com/bimakw/wallet-balances/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-balances/internal/infrastructure/fileconfig"
	"github.com/bimakw/wallet-balances/internal/logger"
)

func main() {
	file := flag.String("file", "balances.yaml", "chains and wallets settings file")
	interval := flag.Duration("interval", 200*time.Millisecond, "progress refresh interval")
	collapse := flag.Bool("collapse", false, "show every failure as a single marker")
	asJSON := flag.Bool("json", false, "print the final snapshot as JSON")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the balance table
	cfg.Log.Output = "stderr"
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := fileconfig.NewLoader(*file).Load(ctx)
	if err != nil {
		log.Fatal("Failed to load settings", zap.Error(err))
	}

	log.Info("Loaded settings",
		zap.String("file", *file),
		zap.String("sha256", settings.SHA256),
		zap.Int("chains", len(settings.Chains)),
		zap.Int("wallets", len(settings.Wallets)),
	)

	clientPool, err := ethereum.NewClientPool(cfg.Aggregator.ClientPoolSize, cfg.RPC, log)
	if err != nil {
		log.Fatal("Failed to create client pool", zap.Error(err))
	}
	defer clientPool.Close()

	aggregator := services.NewBalanceAggregator(clientPool, nil, cfg.Aggregator, log)
	defer aggregator.Close()

	task, err := aggregator.Submit(settings.Chains, settings.Wallets)
	if err != nil {
		log.Fatal("Failed to submit balance query", zap.Error(err))
	}

	snapshot := wait(ctx, aggregator, task, *interval)
	fmt.Fprintln(os.Stderr)

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(snapshot); err != nil {
			log.Fatal("Failed to encode snapshot", zap.Error(err))
		}
	} else if err := writeTable(os.Stdout, snapshot, *collapse); err != nil {
		log.Fatal("Failed to write balances", zap.Error(err))
	}

	if !snapshot.IsDone() {
		log.Warn("Interrupted before every balance resolved",
			zap.Int("completed_cells", snapshot.CompletedCells),
			zap.Int("total_cells", snapshot.TotalCells),
		)
		os.Exit(1)
	}
}

// wait polls the task until it is done or ctx is cancelled, reporting
// progress on stderr
func wait(ctx context.Context, aggregator *services.BalanceAggregator, task *services.AggregationTask, interval time.Duration) entities.AggregationSnapshot {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot := aggregator.Poll(task)
		fmt.Fprintf(os.Stderr, "\r%d/%d balances (%3.0f%%)",
			snapshot.CompletedCells, snapshot.TotalCells, snapshot.Progress()*100)
		if snapshot.IsDone() {
			return snapshot
		}

		select {
		case <-ctx.Done():
			return aggregator.Poll(task)
		case <-task.Done():
		case <-ticker.C:
		}
	}
}

// writeTable prints one row per wallet and one column per chain
func writeTable(out io.Writer, snapshot entities.AggregationSnapshot, collapse bool) error {
	grid := snapshot.Display(collapse)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "WALLET")
	for _, chain := range snapshot.Chains {
		fmt.Fprintf(w, "\t%s", chain)
	}
	fmt.Fprintln(w)

	for _, key := range snapshot.Wallets {
		fmt.Fprint(w, key)
		for _, chain := range snapshot.Chains {
			fmt.Fprintf(w, "\t%s", grid[key][chain])
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}
