package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/gowebpki/jcs"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/uri"
)

// Fetcher defines the interface for fetching token metadata documents
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/metadata_fetcher.go -package=mocks -mock_names=Fetcher=MockMetadataFetcher
type Fetcher interface {
	// FetchJSON fetches and parses the JSON document behind a metadata URI.
	// It returns nil when the document cannot be fetched or is not JSON.
	FetchJSON(ctx context.Context, metadataURI string) map[string]interface{}
}

type fetcher struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
}

// NewFetcher creates a new metadata fetcher
func NewFetcher(httpClient adapter.HTTPClient, json adapter.JSON) Fetcher {
	return &fetcher{
		httpClient: httpClient,
		json:       json,
	}
}

func (f *fetcher) FetchJSON(ctx context.Context, metadataURI string) map[string]interface{} {
	if strings.HasPrefix(metadataURI, "data:") {
		doc, err := f.parseDataURI(metadataURI)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to parse data URI metadata", zap.Error(err))
			return nil
		}
		return doc
	}

	resolvedURL := uri.Normalize(metadataURI)

	body, err := f.httpClient.GetBytes(ctx, resolvedURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		logger.WarnCtx(ctx, "Failed to fetch metadata", zap.String("url", resolvedURL), zap.Error(err))
		return nil
	}

	var doc map[string]interface{}
	if err := f.json.Unmarshal(body, &doc); err != nil {
		logger.WarnCtx(ctx, "Metadata is not a JSON object", zap.String("url", resolvedURL), zap.Error(err))
		return nil
	}

	return doc
}

// parseDataURI parses data:application/json[;base64],<payload>
func (f *fetcher) parseDataURI(dataURI string) (map[string]interface{}, error) {
	mediaType, payload, ok := strings.Cut(strings.TrimPrefix(dataURI, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI format")
	}

	var data []byte
	if strings.HasSuffix(mediaType, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape data URI: %w", err)
		}
		data = []byte(unescaped)
	}

	var doc map[string]interface{}
	if err := f.json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return doc, nil
}

// Fingerprint returns the SHA-256 of the RFC 8785 canonical form of doc.
// Key order and number formatting do not change the result.
func Fingerprint(json adapter.JSON, doc map[string]interface{}) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize metadata: %w", err)
	}

	hash := sha256.Sum256(canonical)
	return hash[:], nil
}
