package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/supplychain-graph/server/internal/audit"
	"github.com/supplychain-graph/server/internal/catalog"
	"github.com/supplychain-graph/server/internal/config"
	"github.com/supplychain-graph/server/internal/graph"
	"github.com/supplychain-graph/server/internal/logging"
	"github.com/supplychain-graph/server/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"graph_database", cfg.Graph.Database,
		"audit_enabled", cfg.AuditEnabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Connect to the graph store
	store, err := graph.New(ctx, cfg.Graph)
	if err != nil {
		slog.Error("failed to connect to graph store", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)
	slog.Info("connected to graph store", "database", cfg.Graph.Database)

	// Optional import-history ledger
	var recorder *audit.Recorder
	if cfg.AuditEnabled() {
		poolConfig, err := pgxpool.ParseConfig(cfg.Audit.URL)
		if err != nil {
			slog.Error("failed to parse audit database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Audit.MaxConns)
		poolConfig.MinConns = int32(cfg.Audit.MinConns)
		poolConfig.MaxConnLifetime = cfg.Audit.MaxConnLifetime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		recorder = audit.NewRecorder(pool)
		if err := recorder.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare audit schema", "error", err)
			os.Exit(1)
		}
		slog.Info("audit ledger ready")
	} else {
		slog.Info("audit ledger disabled (no DATABASE_URL)")
	}

	slog.Info("entities registered", "count", catalog.Count())

	server := web.NewServer(store, recorder, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
