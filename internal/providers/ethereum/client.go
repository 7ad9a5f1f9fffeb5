package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
)

// erc721ABI covers the ERC721 Enumerable and Metadata reads used by the scanner
const erc721ABI = `[
	{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"index","type":"uint256"}],"name":"tokenByIndex","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var parsedERC721ABI = mustParseABI(erc721ABI)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// connection implements rpc.Connection over a JSON-RPC endpoint
type connection struct {
	chain    domain.Chain
	endpoint string
	client   adapter.EthClient
}

// NewConnection wraps an Ethereum client bound to endpoint
func NewConnection(chain domain.Chain, endpoint string, client adapter.EthClient) rpc.Connection {
	return &connection{chain: chain, endpoint: endpoint, client: client}
}

func (c *connection) Chain() domain.Chain {
	return c.chain
}

func (c *connection) Endpoint() string {
	return c.endpoint
}

// LatestHeight returns the latest block number
func (c *connection) LatestHeight(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	if header == nil || header.Number == nil {
		return 0, fmt.Errorf("empty latest block header")
	}
	return header.Number.Uint64(), nil
}

// Enumerable binds the ERC721 Enumerable reads of the contract
func (c *connection) Enumerable(contractAddress string) (rpc.EnumerableContract, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", contractAddress)
	}
	return &erc721Enumerable{
		client:  c.client,
		address: common.HexToAddress(contractAddress),
	}, nil
}

// TokenURI fetches the tokenURI from an ERC721 contract
func (c *connection) TokenURI(ctx context.Context, contractAddress, tokenID string) (string, error) {
	if !common.IsHexAddress(contractAddress) {
		return "", fmt.Errorf("invalid contract address: %s", contractAddress)
	}

	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return "", fmt.Errorf("invalid token number: %s", tokenID)
	}

	var uri string
	if err := call(ctx, c.client, common.HexToAddress(contractAddress), &uri, "tokenURI", id); err != nil {
		return "", err
	}

	// ERC1155-style placeholder used by some ERC721 contracts
	return strings.ReplaceAll(uri, "{id}", fmt.Sprintf("%064x", id)), nil
}

func (c *connection) Close() {
	c.client.Close()
}

// erc721Enumerable implements rpc.EnumerableContract for ERC721Enumerable contracts
type erc721Enumerable struct {
	client  adapter.EthClient
	address common.Address
}

// TotalSupply calls totalSupply()
func (e *erc721Enumerable) TotalSupply(ctx context.Context) (uint64, error) {
	var supply *big.Int
	if err := call(ctx, e.client, e.address, &supply, "totalSupply"); err != nil {
		return 0, err
	}
	if supply == nil || !supply.IsUint64() {
		return 0, fmt.Errorf("total supply out of range: %v", supply)
	}
	return supply.Uint64(), nil
}

// TokenByIndex calls tokenByIndex(uint256)
func (e *erc721Enumerable) TokenByIndex(ctx context.Context, index uint64) (string, error) {
	var tokenID *big.Int
	if err := call(ctx, e.client, e.address, &tokenID, "tokenByIndex", new(big.Int).SetUint64(index)); err != nil {
		return "", err
	}
	if tokenID == nil {
		return "", fmt.Errorf("empty token ID at index %d", index)
	}
	return tokenID.String(), nil
}

// call packs method, performs an eth_call against the latest block and unpacks into out
func call(ctx context.Context, client adapter.EthClient, contract common.Address, out interface{}, method string, args ...interface{}) error {
	data, err := parsedERC721ABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack data: %w", err)
	}

	logger.DebugCtx(ctx, "eth_call", zap.String("contract", contract.Hex()), zap.String("method", method))

	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to call contract: %w", err)
	}

	if err := parsedERC721ABI.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack result: %w", err)
	}

	return nil
}
