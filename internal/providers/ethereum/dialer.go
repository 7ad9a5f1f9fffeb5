package ethereum

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
)

// dialer implements rpc.Dialer for EVM JSON-RPC endpoints
type dialer struct {
	ethDialer adapter.EthClientDialer
}

// NewDialer creates a dialer for EVM chains
func NewDialer(ethDialer adapter.EthClientDialer) rpc.Dialer {
	return &dialer{ethDialer: ethDialer}
}

// Dial opens a fresh JSON-RPC client; liveness is checked by the pool
func (d *dialer) Dial(ctx context.Context, chain domain.Chain, endpoint string) (rpc.Connection, error) {
	if chain.Blockchain() != domain.BlockchainEthereum {
		return nil, fmt.Errorf("%w: %s is not an EVM chain", domain.ErrUnsupportedChain, chain)
	}

	client, err := d.ethDialer.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	return NewConnection(chain, endpoint, client), nil
}
