package tezos

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
)

// connection implements rpc.Connection over a TzKT API endpoint
type connection struct {
	chain    domain.Chain
	endpoint string
	tzkt     TzKTClient
}

// NewConnection wraps a TzKT client bound to endpoint
func NewConnection(chain domain.Chain, endpoint string, tzkt TzKTClient) rpc.Connection {
	return &connection{chain: chain, endpoint: endpoint, tzkt: tzkt}
}

func (c *connection) Chain() domain.Chain {
	return c.chain
}

func (c *connection) Endpoint() string {
	return c.endpoint
}

// LatestHeight returns the head level
func (c *connection) LatestHeight(ctx context.Context) (uint64, error) {
	head, err := c.tzkt.GetHead(ctx)
	if err != nil {
		return 0, err
	}
	return head.Level, nil
}

// Enumerable binds the TzKT token listing of an FA2 contract
func (c *connection) Enumerable(contractAddress string) (rpc.EnumerableContract, error) {
	if !domain.IsValidContractAddress(c.chain, contractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", contractAddress)
	}
	return &tzktEnumerable{tzkt: c.tzkt, contract: contractAddress}, nil
}

// TokenURI reads the TZIP-21 metadata URI from the token_metadata big map
func (c *connection) TokenURI(ctx context.Context, contractAddress, tokenID string) (string, error) {
	if !domain.IsValidContractAddress(c.chain, contractAddress) {
		return "", fmt.Errorf("invalid contract address: %s", contractAddress)
	}
	if !domain.IsValidTokenID(tokenID) {
		return "", fmt.Errorf("invalid token number: %s", tokenID)
	}
	return c.tzkt.GetTokenMetadataURI(ctx, contractAddress, tokenID)
}

// Close is a no-op, TzKT connections are plain HTTP
func (c *connection) Close() {}

// tzktEnumerable walks the tokens of a contract in TzKT internal ID order,
// which is the order tokens were first seen on chain
type tzktEnumerable struct {
	tzkt     TzKTClient
	contract string
}

func (e *tzktEnumerable) TotalSupply(ctx context.Context) (uint64, error) {
	return e.tzkt.CountTokens(ctx, e.contract)
}

func (e *tzktEnumerable) TokenByIndex(ctx context.Context, index uint64) (string, error) {
	return e.tzkt.GetTokenIDAt(ctx, e.contract, index)
}

// dialer opens TzKT connections
type dialer struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
}

// NewDialer creates a dialer for Tezos chains. Dialing does no network I/O,
// the pool's liveness probe is the first request.
func NewDialer(httpClient adapter.HTTPClient, json adapter.JSON) rpc.Dialer {
	return &dialer{httpClient: httpClient, json: json}
}

func (d *dialer) Dial(ctx context.Context, chain domain.Chain, endpoint string) (rpc.Connection, error) {
	if chain.Blockchain() != domain.BlockchainTezos {
		return nil, fmt.Errorf("%w: %s is not a tezos chain", domain.ErrUnsupportedChain, chain)
	}

	logger.DebugCtx(ctx, "Dialing TzKT endpoint", zap.String("chain", string(chain)), zap.String("endpoint", endpoint))

	return NewConnection(chain, endpoint, NewTzKTClient(endpoint, d.httpClient, d.json)), nil
}
