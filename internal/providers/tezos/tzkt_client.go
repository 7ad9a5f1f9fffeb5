package tezos

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
)

// TzKTHead represents the chain head from the TzKT API
type TzKTHead struct {
	Level uint64 `json:"level"`
}

// TzKTBigMapKey represents a key of the token_metadata big map
type TzKTBigMapKey struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
	Value  struct {
		TokenID   string            `json:"token_id"`
		TokenInfo map[string]string `json:"token_info"`
	} `json:"value"`
}

// TzKTClient defines an interface for TzKT API client operations
type TzKTClient interface {
	// GetHead returns the current head, with a single request
	GetHead(ctx context.Context) (*TzKTHead, error)

	// CountTokens returns the number of tokens of a contract
	CountTokens(ctx context.Context, contractAddress string) (uint64, error)

	// GetTokenIDAt returns the token ID at position offset when sorted by TzKT internal ID
	GetTokenIDAt(ctx context.Context, contractAddress string, offset uint64) (string, error)

	// GetTokenMetadataURI returns the hex-decoded "" entry of the token_info map
	GetTokenMetadataURI(ctx context.Context, contractAddress, tokenID string) (string, error)
}

// tzktClient is the concrete implementation of TzKTClient
type tzktClient struct {
	baseURL    string
	httpClient adapter.HTTPClient
	json       adapter.JSON
}

// NewTzKTClient creates a new TzKT API client
func NewTzKTClient(baseURL string, httpClient adapter.HTTPClient, json adapter.JSON) TzKTClient {
	return &tzktClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		json:       json,
	}
}

// GetHead skips the retrying client so a dead endpoint fails fast during failover
func (c *tzktClient) GetHead(ctx context.Context) (*TzKTHead, error) {
	u := fmt.Sprintf("%s/v1/head", c.baseURL)

	resp, err := c.httpClient.GetResponseNoRetry(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("failed to get head: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &adapter.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read head: %w", err)
	}

	var head TzKTHead
	if err := c.json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("failed to decode head: %w", err)
	}

	return &head, nil
}

func (c *tzktClient) CountTokens(ctx context.Context, contractAddress string) (uint64, error) {
	u := fmt.Sprintf("%s/v1/tokens/count?contract=%s", c.baseURL, url.QueryEscape(contractAddress))

	var count uint64
	if err := c.httpClient.Get(ctx, u, &count); err != nil {
		return 0, fmt.Errorf("failed to count tokens of %s: %w", contractAddress, err)
	}

	return count, nil
}

func (c *tzktClient) GetTokenIDAt(ctx context.Context, contractAddress string, offset uint64) (string, error) {
	params := url.Values{}
	params.Set("contract", contractAddress)
	params.Set("sort.asc", "id")
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("limit", "1")
	params.Set("select", "tokenId")
	u := fmt.Sprintf("%s/v1/tokens?%s", c.baseURL, params.Encode())

	var tokenIDs []string
	if err := c.httpClient.Get(ctx, u, &tokenIDs); err != nil {
		return "", fmt.Errorf("failed to get token at offset %d: %w", offset, err)
	}
	if len(tokenIDs) == 0 {
		return "", fmt.Errorf("no token at offset %d of %s", offset, contractAddress)
	}

	return tokenIDs[0], nil
}

func (c *tzktClient) GetTokenMetadataURI(ctx context.Context, contractAddress, tokenID string) (string, error) {
	u := fmt.Sprintf("%s/v1/contracts/%s/bigmaps/token_metadata/keys/%s",
		c.baseURL, url.PathEscape(contractAddress), url.PathEscape(tokenID))

	body, err := c.httpClient.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to get token_metadata of token %s: %w", tokenID, err)
	}

	// TzKT answers 204 with an empty body when the key does not exist
	if len(body) == 0 {
		return "", fmt.Errorf("token %s has no token_metadata entry", tokenID)
	}

	var key TzKTBigMapKey
	if err := c.json.Unmarshal(body, &key); err != nil {
		return "", fmt.Errorf("failed to decode token_metadata of token %s: %w", tokenID, err)
	}

	raw, ok := key.Value.TokenInfo[""]
	if !ok {
		return "", fmt.Errorf("token %s has no metadata URI", tokenID)
	}

	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid metadata URI bytes for token %s: %w", tokenID, err)
	}

	return string(decoded), nil
}
