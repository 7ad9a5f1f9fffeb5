package block

import (
	"context"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
)

// Tracker compares an indexer's height with the live chain head
//
//go:generate mockgen -source=tracker.go -destination=../mocks/tracker.go -package=mocks -mock_names=Tracker=MockTracker
type Tracker interface {
	// GetIndexingProgress reads the current head of chain through the endpoint
	// pool and reports how far indexedHeight is from it
	GetIndexingProgress(ctx context.Context, chain domain.Chain, indexedHeight uint64) (*domain.IndexingStatus, error)
}

// Config holds configuration for the Tracker
type Config struct {
	// LagThreshold is how many blocks behind the head an indexer may be
	// before it is reported as behind
	LagThreshold uint64
}

type tracker struct {
	pool   rpc.Pool
	config Config
}

// NewTracker creates a new chain head tracker
func NewTracker(pool rpc.Pool, config Config) Tracker {
	return &tracker{
		pool:   pool,
		config: config,
	}
}

func (t *tracker) GetIndexingProgress(ctx context.Context, chain domain.Chain, indexedHeight uint64) (*domain.IndexingStatus, error) {
	currentHeight, err := t.currentHeight(ctx, chain)
	if err != nil {
		return nil, err
	}

	// An indexer ahead of the head (e.g. a lagging endpoint) reports over 100%
	status := &domain.IndexingStatus{
		Chain:           chain,
		CurrentHeight:   currentHeight,
		IndexedHeight:   indexedHeight,
		ProgressPercent: float64(indexedHeight) / float64(currentHeight) * 100,
		IsBehind:        currentHeight > indexedHeight && currentHeight-indexedHeight > t.config.LagThreshold,
	}

	logger.DebugCtx(ctx, "Indexing progress",
		zap.String("chain", string(chain)),
		zap.Uint64("current_height", currentHeight),
		zap.Uint64("indexed_height", indexedHeight),
		zap.Float64("progress_percent", status.ProgressPercent),
		zap.Bool("is_behind", status.IsBehind))

	return status, nil
}

func (t *tracker) currentHeight(ctx context.Context, chain domain.Chain) (uint64, error) {
	conn, err := t.pool.Connect(ctx, chain)
	if err != nil {
		return 0, &domain.ChainUnavailableError{Chain: chain, Cause: err}
	}
	defer conn.Close()

	height, err := conn.LatestHeight(ctx)
	if err != nil {
		return 0, &domain.ChainUnavailableError{Chain: chain, Cause: err}
	}

	if height == 0 {
		return 0, &domain.ChainUnavailableError{Chain: chain}
	}

	return height, nil
}
