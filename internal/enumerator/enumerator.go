package enumerator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
)

// Event is one step of an enumeration run.
// The last event of a successful run has Done set and carries every token in index order.
type Event struct {
	Progress domain.EnumerationProgress
	Done     bool
	Tokens   []domain.DiscoveredToken
}

// Enumerator discovers the token IDs of an enumerable contract
//
//go:generate mockgen -source=enumerator.go -destination=../mocks/enumerator.go -package=mocks -mock_names=Enumerator=MockEnumerator
type Enumerator interface {
	// Enumerate returns a lazy sequence of progress events. Nothing is read from
	// the chain until the sequence is ranged over. A non-nil error ends the sequence.
	Enumerate(ctx context.Context, ref domain.ContractRef, contract rpc.EnumerableContract) iter.Seq2[Event, error]

	// EnumerateTokens connects to chain through the endpoint pool, enumerates
	// the contract and reports every progress event to onProgress (may be nil)
	EnumerateTokens(ctx context.Context, chain domain.Chain, address string, onProgress func(domain.EnumerationProgress)) ([]domain.DiscoveredToken, error)
}

// Config holds configuration for the Enumerator
type Config struct {
	// BatchSize is how many index lookups run concurrently
	BatchSize int

	// BatchDelay is the pause between two batches, zero disables it
	BatchDelay time.Duration
}

type enumerator struct {
	pool   rpc.Pool
	clock  adapter.Clock
	config Config
}

// New creates a new token enumerator
func New(pool rpc.Pool, clock adapter.Clock, config Config) Enumerator {
	if config.BatchSize <= 0 {
		config.BatchSize = domain.DEFAULT_ENUMERATION_BATCH_SIZE
	}
	if config.BatchDelay < 0 {
		config.BatchDelay = 0
	}

	return &enumerator{
		pool:   pool,
		clock:  clock,
		config: config,
	}
}

func (e *enumerator) EnumerateTokens(ctx context.Context, chain domain.Chain, address string, onProgress func(domain.EnumerationProgress)) ([]domain.DiscoveredToken, error) {
	if !domain.IsValidChain(chain) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}

	conn, err := e.pool.Connect(ctx, chain)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	contract, err := conn.Enumerable(address)
	if err != nil {
		return nil, &domain.EnumerationUnsupportedError{Chain: chain, ContractAddress: address, Cause: err}
	}

	ref := domain.ContractRef{Chain: chain, Address: address}
	for event, err := range e.Enumerate(ctx, ref, contract) {
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(event.Progress)
		}
		if event.Done {
			return event.Tokens, nil
		}
	}

	// unreachable: a sequence that is not abandoned ends with Done or an error
	return nil, fmt.Errorf("enumeration of %s ended without result", address)
}

func (e *enumerator) Enumerate(ctx context.Context, ref domain.ContractRef, contract rpc.EnumerableContract) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		ctx := logger.WithFields(ctx,
			zap.String("run_id", uuid.NewString()),
			zap.String("chain", string(ref.Chain)),
			zap.String("contract", ref.Address))

		if err := ctx.Err(); err != nil {
			yield(Event{}, cancelled(err))
			return
		}

		total, err := contract.TotalSupply(ctx)
		if err != nil {
			if ctx.Err() != nil {
				yield(Event{}, cancelled(ctx.Err()))
				return
			}
			yield(Event{}, &domain.EnumerationUnsupportedError{Chain: ref.Chain, ContractAddress: ref.Address, Cause: err})
			return
		}

		logger.InfoCtx(ctx, "Enumerating contract", zap.Uint64("total", total))

		if total == 0 {
			yield(Event{
				Progress: domain.EnumerationProgress{Fetched: 0, Total: 0},
				Done:     true,
				Tokens:   []domain.DiscoveredToken{},
			}, nil)
			return
		}

		if !yield(Event{Progress: domain.EnumerationProgress{Fetched: 0, Total: total}}, nil) {
			return
		}

		batchSize := uint64(e.config.BatchSize)
		workers := pond.NewResultPool[domain.DiscoveredToken](e.config.BatchSize, pond.WithContext(ctx))
		defer workers.StopAndWait()

		tokens := make([]domain.DiscoveredToken, 0, min(total, batchSize*100))
		for start := uint64(0); start < total; start += batchSize {
			if err := ctx.Err(); err != nil {
				yield(Event{}, cancelled(err))
				return
			}

			end := min(start+batchSize, total)
			batch, err := e.fetchBatch(ctx, workers, contract, start, end)
			if err != nil {
				if ctx.Err() != nil {
					yield(Event{}, cancelled(ctx.Err()))
					return
				}
				logger.WarnCtx(ctx, "Batch lookup failed",
					zap.Uint64("range_start", start),
					zap.Uint64("range_end", end),
					zap.Error(err))
				yield(Event{}, &domain.BatchFetchFailureError{RangeStart: start, RangeEnd: end, Cause: err})
				return
			}
			tokens = append(tokens, batch...)

			progress := domain.EnumerationProgress{Fetched: end, Total: total}
			if end == total {
				logger.InfoCtx(ctx, "Enumeration completed", zap.Int("tokens", len(tokens)))
				yield(Event{Progress: progress, Done: true, Tokens: tokens}, nil)
				return
			}

			if !yield(Event{Progress: progress}, nil) {
				return
			}

			if err := e.pause(ctx); err != nil {
				yield(Event{}, cancelled(err))
				return
			}
		}
	}
}

// fetchBatch looks up the indexes [start, end) concurrently and returns them in index order
func (e *enumerator) fetchBatch(ctx context.Context, workers pond.ResultPool[domain.DiscoveredToken], contract rpc.EnumerableContract, start, end uint64) ([]domain.DiscoveredToken, error) {
	logger.DebugCtx(ctx, "Fetching batch", zap.Uint64("range_start", start), zap.Uint64("range_end", end))

	group := workers.NewGroup()
	for index := start; index < end; index++ {
		group.SubmitErr(func() (domain.DiscoveredToken, error) {
			tokenID, err := contract.TokenByIndex(ctx, index)
			if err != nil {
				return domain.DiscoveredToken{}, fmt.Errorf("failed to get token at index %d: %w", index, err)
			}
			return domain.DiscoveredToken{Index: index, TokenID: tokenID}, nil
		})
	}

	return group.Wait()
}

// pause waits out the batch delay unless ctx is cancelled first
func (e *enumerator) pause(ctx context.Context) error {
	if e.config.BatchDelay == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clock.After(e.config.BatchDelay):
		return nil
	}
}

func cancelled(cause error) error {
	if errors.Is(cause, domain.ErrEnumerationCancelled) {
		return cause
	}
	return fmt.Errorf("%w: %w", domain.ErrEnumerationCancelled, cause)
}
