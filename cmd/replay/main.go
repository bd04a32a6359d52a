package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sheikh-saqib/transaction-replay-engine/internal/config"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/csvio"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/engine"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/transaction-replay-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/storage/memory"
	"github.com/sheikh-saqib/transaction-replay-engine/internal/storage/postgres"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: replay <input.csv>")
		os.Exit(1)
	}

	cfg := config.Load()

	// Diagnostics go to stderr so stdout stays clean for the report.
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, os.Args[1]); err != nil {
		logger.Error("replay failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, input string) error {
	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	transactions, err := csvio.ReadTransactions(file)
	if err != nil {
		return fmt.Errorf("reading transactions: %w", err)
	}

	var (
		store interfaces.LedgerStore
		txlog interfaces.TransactionLog
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()

		pg := postgres.NewStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("preparing schema: %w", err)
		}
		store, txlog = pg, pg
	} else {
		store = memory.NewLedgerStore()
		txlog = memory.NewTransactionLog()
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	}

	eng := engine.NewEngine(store, txlog, publisher, logger)

	stats, err := eng.Process(ctx, transactions)
	if err != nil {
		return fmt.Errorf("processing transactions: %w", err)
	}
	logger.Info("replay complete",
		zap.Int("processed", stats.Processed),
		zap.Int("skipped", stats.Skipped),
	)

	accounts, err := store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading final balances: %w", err)
	}

	return csvio.WriteReport(os.Stdout, accounts)
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.WarnLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
