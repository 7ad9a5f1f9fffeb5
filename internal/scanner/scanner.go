package scanner

import (
	"context"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/block"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/enumerator"
	"github.com/feral-file/ff-token-scanner/internal/logger"
	"github.com/feral-file/ff-token-scanner/internal/metadata"
	"github.com/feral-file/ff-token-scanner/internal/rpc"
	"github.com/feral-file/ff-token-scanner/internal/uri"
)

// Media fields looked up in metadata documents, ERC721 names first, then TZIP-21
var (
	imageFields     = []string{"image", "image_url", "displayUri", "thumbnailUri"}
	animationFields = []string{"animation_url", "artifactUri"}
)

// Request describes one scan of a contract
type Request struct {
	Chain    domain.Chain
	Contract string

	// IndexedHeight, when set, is compared with the chain head
	IndexedHeight *uint64

	// Resolve fetches the metadata of every token and classifies its media
	Resolve bool
}

// TokenReport is the outcome of one discovered token
type TokenReport struct {
	Index        uint64                        `json:"index"`
	TokenID      string                        `json:"token_id"`
	MetadataURI  *domain.ResolvedURI           `json:"metadata_uri,omitempty"`
	MetadataHash string                        `json:"metadata_hash,omitempty"`
	Image        *domain.ContentClassification `json:"image,omitempty"`
	Animation    *domain.ContentClassification `json:"animation,omitempty"`
	Error        string                        `json:"error,omitempty"`
}

// Report is the outcome of a scan
type Report struct {
	Chain    domain.Chain           `json:"chain"`
	Contract string                 `json:"contract"`
	Indexing *domain.IndexingStatus `json:"indexing,omitempty"`
	Total    int                    `json:"total"`
	Tokens   []TokenReport          `json:"tokens"`
}

// Scanner runs the enumeration and optional downstream resolution of a contract
type Scanner interface {
	Scan(ctx context.Context, req Request) (*Report, error)
}

// Config holds configuration for the Scanner
type Config struct {
	// Concurrency bounds the tokens resolved at the same time
	Concurrency int
}

type scanner struct {
	pool       rpc.Pool
	enumerator enumerator.Enumerator
	tracker    block.Tracker
	fetcher    metadata.Fetcher
	sniffer    uri.Sniffer
	json       adapter.JSON
	config     Config
}

// New creates a new scanner
func New(
	pool rpc.Pool,
	enumerator enumerator.Enumerator,
	tracker block.Tracker,
	fetcher metadata.Fetcher,
	sniffer uri.Sniffer,
	json adapter.JSON,
	config Config,
) Scanner {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &scanner{
		pool:       pool,
		enumerator: enumerator,
		tracker:    tracker,
		fetcher:    fetcher,
		sniffer:    sniffer,
		json:       json,
		config:     config,
	}
}

func (s *scanner) Scan(ctx context.Context, req Request) (*Report, error) {
	req.Contract = domain.NormalizeAddress(req.Contract)
	ctx = logger.WithFields(ctx,
		zap.String("chain", string(req.Chain)),
		zap.String("contract", req.Contract))

	report := &Report{
		Chain:    req.Chain,
		Contract: req.Contract,
	}

	if req.IndexedHeight != nil {
		status, err := s.tracker.GetIndexingProgress(ctx, req.Chain, *req.IndexedHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to get indexing progress: %w", err)
		}
		report.Indexing = status
	}

	tokens, err := s.enumerator.EnumerateTokens(ctx, req.Chain, req.Contract, func(p domain.EnumerationProgress) {
		logger.InfoCtx(ctx, "Enumeration progress", zap.Uint64("fetched", p.Fetched), zap.Uint64("total", p.Total))
	})
	if err != nil {
		return nil, err
	}

	report.Total = len(tokens)
	report.Tokens = make([]TokenReport, len(tokens))
	for i, token := range tokens {
		report.Tokens[i] = TokenReport{Index: token.Index, TokenID: token.TokenID}
	}

	if !req.Resolve || len(tokens) == 0 {
		return report, nil
	}

	if err := s.resolveAll(ctx, req, report.Tokens); err != nil {
		return nil, err
	}

	return report, nil
}

// resolveAll resolves every token over one connection. Per-token failures are
// recorded on the token; only cancellation aborts the run.
func (s *scanner) resolveAll(ctx context.Context, req Request, tokens []TokenReport) error {
	conn, err := s.pool.Connect(ctx, req.Chain)
	if err != nil {
		return fmt.Errorf("failed to connect for resolution: %w", err)
	}
	defer conn.Close()

	logger.InfoCtx(ctx, "Resolving tokens",
		zap.Int("tokens", len(tokens)),
		zap.Int("concurrency", s.config.Concurrency),
		zap.String("endpoint", conn.Endpoint()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i := range tokens {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.resolve(gctx, conn, req.Contract, &tokens[i])
			return nil
		})
	}

	return g.Wait()
}

func (s *scanner) resolve(ctx context.Context, conn rpc.Connection, contract string, token *TokenReport) {
	ctx = logger.WithFields(ctx, zap.String("token_id", token.TokenID))

	tokenURI, err := conn.TokenURI(ctx, contract, token.TokenID)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to get token URI", zap.Error(err))
		token.Error = err.Error()
		return
	}

	resolved := uri.Resolve(tokenURI)
	token.MetadataURI = &resolved

	doc := s.fetcher.FetchJSON(ctx, tokenURI)
	if doc == nil {
		token.Error = "metadata unavailable"
		return
	}

	if hash, err := metadata.Fingerprint(s.json, doc); err != nil {
		logger.WarnCtx(ctx, "Failed to fingerprint metadata", zap.Error(err))
	} else {
		token.MetadataHash = hex.EncodeToString(hash)
	}

	if image := firstString(doc, imageFields); image != "" {
		classification := s.sniffer.Classify(ctx, image)
		token.Image = &classification
	}

	if animation := firstString(doc, animationFields); animation != "" {
		classification := s.sniffer.Classify(ctx, animation)
		token.Animation = &classification
	}
}

func firstString(doc map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
