package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dropmint/config"
	"dropmint/native/drop"
	"dropmint/observability/logging"
	"dropmint/observability/otel"
	"dropmint/rpc"
	"dropmint/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	memory := flag.Bool("memory", false, "DEV ONLY: keep all state in memory instead of the data directory")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("DROPMINT_ENV"))
	logger := logging.Setup("dropmintd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Env != "" && env == "" {
		env = cfg.Env
	}

	db, err := openDatabase(cfg, *memory)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	engine, ledger, owners, err := buildEngine(cfg, db)
	if err != nil {
		logger.Error("failed to build drop engine", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		otelShutdown, err := otel.Init(shutdownCtx, otel.Config{
			ServiceName: "dropmintd",
			Environment: env,
			Endpoint:    endpoint,
			Insecure:    cfg.OTLPInsecure,
			Headers:     otel.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		})
		if err != nil {
			logger.Error("failed to initialise telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				logger.Warn("telemetry shutdown failed", slog.Any("error", err))
			}
		}()
	}

	if addr := strings.TrimSpace(cfg.MetricsAddress); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("serving metrics", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics listener failed", slog.Any("error", err))
			}
		}()
	}

	server := rpc.NewServer(engine, ledger, owners, db)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	select {
	case err := <-errCh:
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	case <-shutdownCtx.Done():
	}

	if err := storage.SaveDropState(db, engine.Snapshot()); err != nil {
		logger.Error("failed to persist drop state on shutdown", slog.Any("error", err))
	}
	logger.Info("shutdown complete")
}

func openDatabase(cfg *config.Config, memory bool) (storage.Database, error) {
	if memory || strings.TrimSpace(cfg.DataDir) == "" {
		return storage.NewMemDB(), nil
	}
	return storage.NewLevelDB(cfg.DataDir)
}

func buildEngine(cfg *config.Config, db storage.Database) (*drop.Engine, *storage.MintLedger, *storage.OwnershipIndex, error) {
	token, err := cfg.DropTokenAddress()
	if err != nil {
		return nil, nil, nil, err
	}
	contract, err := cfg.VerifyingContractAddress()
	if err != nil {
		return nil, nil, nil, err
	}

	ledger, err := storage.NewMintLedger(db, cfg.MaxSupply)
	if err != nil {
		return nil, nil, nil, err
	}
	owners, err := storage.NewOwnershipIndex(db)
	if err != nil {
		return nil, nil, nil, err
	}

	engine := drop.NewEngine(token, drop.SigningDomain{
		Name:              cfg.DomainName,
		Version:           cfg.DomainVersion,
		ChainID:           cfg.ChainID,
		VerifyingContract: contract,
	}, drop.NewRegistry())
	engine.SetLedger(ledger)
	engine.SetOwnership(owners)

	snap, err := storage.LoadDropState(db)
	if err != nil {
		return nil, nil, nil, err
	}
	if snap != nil {
		if err := engine.Restore(snap); err != nil {
			return nil, nil, nil, err
		}
	}
	return engine, ledger, owners, nil
}
