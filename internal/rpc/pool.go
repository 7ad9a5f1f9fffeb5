package rpc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
)

// EnumerableContract is the narrow capability needed to walk a contract's token set.
// Alternate discovery strategies are new implementations of this interface.
//
//go:generate mockgen -source=pool.go -destination=../mocks/rpc.go -package=mocks -mock_names=EnumerableContract=MockEnumerableContract,Connection=MockConnection,Dialer=MockDialer,Pool=MockPool
type EnumerableContract interface {
	// TotalSupply returns the number of enumerable tokens
	TotalSupply(ctx context.Context) (uint64, error)

	// TokenByIndex returns the decimal token ID at the given enumeration index
	TokenByIndex(ctx context.Context, index uint64) (string, error)
}

// Connection is a live handle bound to one endpoint of one chain.
// Connections are not shared between calls; the caller closes them.
type Connection interface {
	// Chain returns the chain the connection is bound to
	Chain() domain.Chain

	// Endpoint returns the endpoint URL the connection is bound to
	Endpoint() string

	// LatestHeight returns the current chain head height
	LatestHeight(ctx context.Context) (uint64, error)

	// Enumerable binds the enumerable reads of a contract
	Enumerable(contractAddress string) (EnumerableContract, error)

	// TokenURI returns the metadata URI of a token
	TokenURI(ctx context.Context, contractAddress, tokenID string) (string, error)

	// Close releases the connection
	Close()
}

// Dialer opens connections for one blockchain family
type Dialer interface {
	Dial(ctx context.Context, chain domain.Chain, endpoint string) (Connection, error)
}

// Pool hands out live connections per chain
type Pool interface {
	// Connect returns a connection to the first endpoint of the chain that
	// answers a liveness probe
	Connect(ctx context.Context, chain domain.Chain) (Connection, error)
}

// Attempt records one failed endpoint probe
type Attempt struct {
	URL string
	Err error
}

// Selector chooses the next endpoint to try from the endpoint set and the
// attempts made so far in the current Connect call. It returns false when
// there is nothing left to try.
type Selector func(set domain.EndpointSet, attempts []Attempt) (string, bool)

// SequentialSelector picks endpoints in configured order, skipping the ones already attempted
func SequentialSelector(set domain.EndpointSet, attempts []Attempt) (string, bool) {
	tried := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		tried[a.URL] = struct{}{}
	}
	for _, u := range set.URLs {
		if _, ok := tried[u]; !ok {
			return u, true
		}
	}
	return "", false
}

// Config holds configuration for the endpoint pool
type Config struct {
	// Endpoints are the ordered endpoint sets per chain
	Endpoints []domain.EndpointSet

	// Dialers open connections per blockchain family
	Dialers map[domain.Blockchain]Dialer

	// Selector chooses endpoints; SequentialSelector when nil
	Selector Selector
}

type pool struct {
	endpoints map[domain.Chain]domain.EndpointSet
	dialers   map[domain.Blockchain]Dialer
	selector  Selector
}

// NewPool creates a new endpoint pool. Endpoint sets are copied so later
// changes by the caller do not affect lookups.
func NewPool(cfg Config) Pool {
	endpoints := make(map[domain.Chain]domain.EndpointSet, len(cfg.Endpoints))
	for _, set := range cfg.Endpoints {
		endpoints[set.Chain] = set.Clone()
	}

	selector := cfg.Selector
	if selector == nil {
		selector = SequentialSelector
	}

	return &pool{
		endpoints: endpoints,
		dialers:   cfg.Dialers,
		selector:  selector,
	}
}

func (p *pool) Connect(ctx context.Context, chain domain.Chain) (Connection, error) {
	set, ok := p.endpoints[chain]
	if !ok || len(set.URLs) == 0 {
		return nil, fmt.Errorf("%w: no endpoints configured for %s", domain.ErrUnsupportedChain, chain)
	}

	dialer, ok := p.dialers[chain.Blockchain()]
	if !ok {
		return nil, fmt.Errorf("%w: no dialer for %s", domain.ErrUnsupportedChain, chain)
	}

	var attempts []Attempt
	for len(attempts) < len(set.URLs) {
		endpoint, ok := p.selector(set, attempts)
		if !ok {
			break
		}

		conn, err := p.probe(ctx, dialer, chain, endpoint)
		if err == nil {
			return conn, nil
		}

		logger.WarnCtx(ctx, "Endpoint failed liveness probe",
			zap.String("chain", string(chain)),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		attempts = append(attempts, Attempt{URL: endpoint, Err: err})

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
	}

	exhausted := &domain.AllEndpointsExhaustedError{Chain: chain}
	for _, a := range attempts {
		exhausted.AttemptedURLs = append(exhausted.AttemptedURLs, a.URL)
		exhausted.LastErr = a.Err
	}
	return nil, exhausted
}

// probe dials the endpoint and checks it answers a height read
func (p *pool) probe(ctx context.Context, dialer Dialer, chain domain.Chain, endpoint string) (Connection, error) {
	conn, err := dialer.Dial(ctx, chain, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	height, err := conn.LatestHeight(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read chain height: %w", err)
	}

	logger.DebugCtx(ctx, "Connected to endpoint",
		zap.String("chain", string(chain)),
		zap.String("endpoint", endpoint),
		zap.Uint64("height", height))

	return conn, nil
}
