package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/block"
	"github.com/feral-file/ff-token-scanner/internal/config"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/enumerator"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/metadata"
	"github.com/feral-file/ff-token-scanner/internal/providers/ethereum"
	"github.com/feral-file/ff-token-scanner/internal/providers/tezos"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
	"github.com/feral-file/ff-token-scanner/internal/scanner"
	"github.com/feral-file/ff-token-scanner/internal/uri"
)

var (
	configFile    = flag.String("config", "", "Path to configuration file")
	envPath       = flag.String("env", "config/", "Path to environment files")
	chainID       = flag.String("chain", "", "CAIP-2 chain of the contract (e.g. eip155:1, tezos:mainnet)")
	contract      = flag.String("contract", "", "Address of the enumerable contract")
	indexedHeight = flag.Int64("indexed-height", -1, "Height reached by the indexer, compared with the chain head when set")
	resolve       = flag.Bool("resolve", false, "Fetch the metadata of every token and classify its media")
	concurrency   = flag.Int("concurrency", 0, "Tokens resolved at the same time (overrides resolve.concurrency)")
)

func main() {
	flag.Parse()

	chain := domain.Chain(*chainID)
	if !domain.IsValidChain(chain) {
		fmt.Fprintf(os.Stderr, "invalid -chain %q\n", *chainID)
		os.Exit(2)
	}
	if !domain.IsValidContractAddress(chain, *contract) {
		fmt.Fprintf(os.Stderr, "invalid -contract %q for %s\n", *contract, chain)
		os.Exit(2)
	}

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadScannerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "token-scanner",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Token Scanner", zap.String("chain", string(chain)), zap.String("contract", *contract))

	// Cancel the run on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initialize adapters
	var limiter *rate.Limiter
	if cfg.HTTP.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), cfg.HTTP.Burst)
	}
	httpClient := adapter.NewHTTPClient(cfg.HTTP.Timeout, limiter)
	jsonAdapter := adapter.NewJSON()
	ioAdapter := adapter.NewIO()
	clock := adapter.NewClock()

	// Initialize endpoint pool
	pool := rpc.NewPool(rpc.Config{
		Endpoints: cfg.EndpointSets(),
		Dialers: map[domain.Blockchain]rpc.Dialer{
			domain.BlockchainEthereum: ethereum.NewDialer(adapter.NewEthClientDialer()),
			domain.BlockchainTezos:    tezos.NewDialer(httpClient, jsonAdapter),
		},
	})

	resolveConcurrency := cfg.Resolve.Concurrency
	if *concurrency > 0 {
		resolveConcurrency = *concurrency
	}

	tokenScanner := scanner.New(
		pool,
		enumerator.New(pool, clock, enumerator.Config{
			BatchSize:  cfg.Enumerator.BatchSize,
			BatchDelay: cfg.Enumerator.BatchDelay,
		}),
		block.NewTracker(pool, block.Config{LagThreshold: cfg.Indexing.LagThreshold}),
		metadata.NewFetcher(httpClient, jsonAdapter),
		uri.NewSniffer(httpClient, ioAdapter),
		jsonAdapter,
		scanner.Config{Concurrency: resolveConcurrency},
	)

	req := scanner.Request{
		Chain:    chain,
		Contract: *contract,
		Resolve:  *resolve,
	}
	if *indexedHeight >= 0 {
		height := uint64(*indexedHeight)
		req.IndexedHeight = &height
	}

	report, err := tokenScanner.Scan(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrEnumerationCancelled) || errors.Is(err, context.Canceled) {
			logger.WarnCtx(ctx, "Scan cancelled", zap.Error(err))
		} else {
			logger.ErrorCtx(ctx, err)
		}
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		logger.ErrorCtx(ctx, err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	logger.InfoCtx(ctx, "Token Scanner finished", zap.Int("tokens", report.Total))
}
