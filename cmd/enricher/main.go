package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"

	"github.com/rickgao/compound-data/internal/chain"
	"github.com/rickgao/compound-data/internal/config"
	"github.com/rickgao/compound-data/internal/database"
	"github.com/rickgao/compound-data/internal/logging"
	"github.com/rickgao/compound-data/internal/market"
	"github.com/rickgao/compound-data/internal/poller"
	"github.com/rickgao/compound-data/internal/version"
	"github.com/rickgao/compound-data/internal/writer"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/enricher.local.yaml", "path to config file")
	envFile := flag.String("env", ".env", "dotenv file loaded before the config, if present")
	once := flag.Bool("once", false, "run a single refresh pass and exit")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		return 1
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	// Set up structured logging
	logger, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting enricher",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to databases
	logger.Info("connecting to databases",
		"primary", database.Redacted(cfg.Database.Primary),
		"alternate", database.Redacted(cfg.Database.Alternate),
	)

	pools, err := database.NewPools(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return 1
	}
	defer pools.Close()

	gateway := pools.Gateway(logger)
	readTarget, err := database.ParseTarget(cfg.Database.ReadTarget)
	if err != nil {
		logger.Error("invalid read target", "error", err)
		return 1
	}

	logger.Info("databases connected")

	// Connect to the Ethereum node
	eth, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		logger.Error("failed to dial ethereum node", "error", err)
		return 1
	}
	defer eth.Close()

	chainClient := chain.NewClient(
		eth,
		common.HexToAddress(cfg.Chain.Comptroller),
		common.HexToAddress(cfg.Chain.Oracle),
		chain.WithLogger(logger),
		chain.WithCallTimeout(cfg.Chain.CallTimeout),
	)

	enricher := market.NewEnricher(chainClient, market.DefaultTable(), logger)

	var handler poller.SnapshotHandler
	if cfg.Refresh.Persist {
		handler = writer.NewSnapshotWriter(gateway, logger)
	}
	refresher := poller.New(poller.Config{Interval: cfg.Refresh.Interval}, enricher, handler, logger)

	if *once || cfg.Refresh.Interval == 0 {
		if err := refresher.RunOnce(ctx); err != nil {
			logger.Error("refresh failed", "error", err)
			return 1
		}
		return 0
	}

	// Start health server
	var healthServer *http.Server
	if cfg.Health.Port > 0 {
		healthServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: newRouter(pools, enricher, writer.NewSnapshotReader(gateway, readTarget), logger),
		}

		go func() {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	if err := refresher.Start(ctx); err != nil {
		logger.Error("failed to start refresher", "error", err)
		return 1
	}

	logger.Info("enricher running",
		"markets", len(enricher.Markets()),
		"interval", cfg.Refresh.Interval,
		"persist", cfg.Refresh.Persist,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := refresher.Stop(shutdownCtx); err != nil {
		logger.Warn("refresher stop timed out", "error", err)
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("enricher stopped")
	return 0
}
