package uri

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/domain"
	"github.com/feral-file/ff-token-scanner/internal/logger"
)

// imageExtensions seeds the image guess before any network call
var imageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp", ".avif", ".ico", ".tif", ".tiff",
}

// Sniffer defines the interface for classifying the content behind a URL
//
//go:generate mockgen -source=sniffer.go -destination=../mocks/sniffer.go -package=mocks -mock_names=Sniffer=MockSniffer
type Sniffer interface {
	// Classify returns the best-effort content classification of url.
	// It never fails: network problems are reported in the Error field.
	Classify(ctx context.Context, url string) domain.ContentClassification
}

type sniffer struct {
	httpClient adapter.HTTPClient
	io         adapter.IO
}

// NewSniffer creates a new content sniffer
func NewSniffer(httpClient adapter.HTTPClient, io adapter.IO) Sniffer {
	return &sniffer{
		httpClient: httpClient,
		io:         io,
	}
}

func (s *sniffer) Classify(ctx context.Context, rawURL string) domain.ContentClassification {
	resolvedURL := Normalize(rawURL)
	imageGuess := hasImageExtension(resolvedURL)

	// 1. HEAD request, the header alone is enough when present
	resp, err := s.httpClient.HeadNoRetry(ctx, resolvedURL)
	if err == nil {
		contentType := resp.Header.Get("Content-Type")
		ok := isOK(resp.StatusCode)
		s.close(resp)
		if ok && contentType != "" {
			return classify(resolvedURL, contentType)
		}
		logger.DebugCtx(ctx, "HEAD gave no usable content type, trying GET with Range",
			zap.String("url", resolvedURL), zap.Int("status", resp.StatusCode))
	} else {
		logger.DebugCtx(ctx, "HEAD request failed, trying GET with Range",
			zap.String("url", resolvedURL), zap.Error(err))
	}

	// 2. GET with Range header to minimize data transfer
	headers := map[string]string{
		"Range": fmt.Sprintf("bytes=0-%d", domain.SNIFF_RANGE_BYTES-1),
	}
	resp, err = s.httpClient.GetResponseNoRetry(ctx, resolvedURL, headers)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to sniff content type", zap.String("url", resolvedURL), zap.Error(err))
		return degraded(resolvedURL, imageGuess, err.Error())
	}
	contentType := resp.Header.Get("Content-Type")
	status := resp.StatusCode
	s.close(resp)

	// A content type on an error body is still a valid answer
	if contentType != "" {
		return classify(resolvedURL, contentType)
	}

	if !isOK(status) {
		return degraded(resolvedURL, imageGuess, fmt.Sprintf("HTTP %d", status))
	}

	return domain.ContentClassification{
		ResolvedURL: resolvedURL,
		IsImage:     imageGuess,
	}
}

// close discards and closes the response body without reading it
func (s *sniffer) close(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_ = s.io.Discard(resp.Body)
	_ = resp.Body.Close()
}

// classify derives every flag from the content type, ignoring the extension guess
func classify(resolvedURL, contentType string) domain.ContentClassification {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return domain.ContentClassification{
		ResolvedURL: resolvedURL,
		ContentType: &contentType,
		IsImage:     strings.HasPrefix(ct, "image/"),
		IsVideo:     strings.HasPrefix(ct, "video/"),
		IsAudio:     strings.HasPrefix(ct, "audio/"),
		IsPDF:       mimetype.EqualsAny(ct, "application/pdf"),
		IsText:      strings.HasPrefix(ct, "text/"),
		IsHTML:      strings.HasPrefix(ct, "text/html"),
		IsJSON:      mimetype.EqualsAny(ct, "application/json"),
	}
}

// degraded keeps the extension guess and reports the failure
func degraded(resolvedURL string, imageGuess bool, errMsg string) domain.ContentClassification {
	return domain.ContentClassification{
		ResolvedURL: resolvedURL,
		IsImage:     imageGuess,
		Error:       &errMsg,
	}
}

func hasImageExtension(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}
