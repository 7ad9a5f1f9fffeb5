package uri_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/mocks"
	"github.com/feral-file/ff-token-scanner/internal/uri"
)

var rangeHeader = map[string]string{"Range": "bytes=0-1023"}

func response(status int, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader("payload")),
	}
}

func TestSniffer_Classify_FromHead(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		flags       map[string]bool
	}{
		{
			name:        "json",
			contentType: "application/json",
			flags:       map[string]bool{"json": true},
		},
		{
			name:        "json with charset",
			contentType: "application/json; charset=utf-8",
			flags:       map[string]bool{"json": true},
		},
		{
			name:        "json-ld is not json",
			contentType: "application/ld+json",
			flags:       map[string]bool{},
		},
		{
			name:        "pdf",
			contentType: "application/pdf",
			flags:       map[string]bool{"pdf": true},
		},
		{
			name:        "html is also text",
			contentType: "text/html; charset=UTF-8",
			flags:       map[string]bool{"text": true, "html": true},
		},
		{
			name:        "video",
			contentType: "video/mp4",
			flags:       map[string]bool{"video": true},
		},
		{
			name:        "audio",
			contentType: "audio/mpeg",
			flags:       map[string]bool{"audio": true},
		},
		{
			name:        "image in upper case",
			contentType: "IMAGE/PNG",
			flags:       map[string]bool{"image": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().HeadNoRetry(gomock.Any(), "https://example.com/token/1").Return(response(http.StatusOK, tt.contentType), nil)

			got := uri.NewSniffer(httpClient, adapter.NewIO()).Classify(context.Background(), "https://example.com/token/1")

			require.NotNil(t, got.ContentType)
			assert.Equal(t, tt.contentType, *got.ContentType)
			assert.Nil(t, got.Error)
			assert.Equal(t, tt.flags["image"], got.IsImage, "image")
			assert.Equal(t, tt.flags["video"], got.IsVideo, "video")
			assert.Equal(t, tt.flags["audio"], got.IsAudio, "audio")
			assert.Equal(t, tt.flags["pdf"], got.IsPDF, "pdf")
			assert.Equal(t, tt.flags["text"], got.IsText, "text")
			assert.Equal(t, tt.flags["html"], got.IsHTML, "html")
			assert.Equal(t, tt.flags["json"], got.IsJSON, "json")
		})
	}
}

func TestSniffer_Classify_HeaderOverridesExtension(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().HeadNoRetry(gomock.Any(), gomock.Any()).Return(response(http.StatusOK, "text/html"), nil)

	got := uri.NewSniffer(httpClient, adapter.NewIO()).Classify(context.Background(), "https://example.com/art.png")
	assert.False(t, got.IsImage)
	assert.True(t, got.IsHTML)
}

func TestSniffer_Classify_NormalizesInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().HeadNoRetry(gomock.Any(), "https://ipfs.io/ipfs/QmHash").Return(response(http.StatusOK, "image/gif"), nil)

	got := uri.NewSniffer(httpClient, adapter.NewIO()).Classify(context.Background(), "ipfs://QmHash")
	assert.Equal(t, "https://ipfs.io/ipfs/QmHash", got.ResolvedURL)
	assert.True(t, got.IsImage)
}

func TestSniffer_Classify_FallsBackToRangedGet(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		head      *http.Response
		headErr   error
		get       *http.Response
		getErr    error
		wantImage bool
		wantJSON  bool
		wantCT    string
		wantError string
	}{
		{
			name:      "head and get fail on image extension",
			url:       "https://example.com/img.PNG",
			headErr:   errors.New("connection refused"),
			getErr:    errors.New("connection refused"),
			wantImage: true,
			wantError: "connection refused",
		},
		{
			name:      "head and get fail without extension",
			url:       "https://example.com/token",
			headErr:   errors.New("timeout"),
			getErr:    errors.New("timeout"),
			wantError: "timeout",
		},
		{
			name:     "head not allowed, get has content type",
			url:      "https://example.com/meta",
			head:     response(http.StatusMethodNotAllowed, ""),
			get:      response(http.StatusPartialContent, "application/json"),
			wantJSON: true,
			wantCT:   "application/json",
		},
		{
			name:      "content type on a failed head is ignored",
			url:       "https://example.com/art",
			head:      response(http.StatusMethodNotAllowed, "text/html"),
			get:       response(http.StatusPartialContent, "image/png"),
			wantImage: true,
			wantCT:    "image/png",
		},
		{
			name:     "head without content type",
			url:      "https://example.com/meta",
			head:     response(http.StatusOK, ""),
			get:      response(http.StatusOK, "application/json"),
			wantJSON: true,
			wantCT:   "application/json",
		},
		{
			name:   "content type on a not found response still classifies",
			url:    "https://example.com/missing.png",
			head:   response(http.StatusNotFound, "text/html"),
			get:    response(http.StatusNotFound, "text/html"),
			wantCT: "text/html",
		},
		{
			name:      "not found without content type keeps the guess",
			url:       "https://example.com/missing.jpg",
			head:      response(http.StatusNotFound, ""),
			get:       response(http.StatusNotFound, ""),
			wantImage: true,
			wantError: "HTTP 404",
		},
		{
			name:      "ok without content type keeps the guess",
			url:       "https://example.com/raw.webp?v=2",
			head:      response(http.StatusOK, ""),
			get:       response(http.StatusOK, ""),
			wantImage: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().HeadNoRetry(gomock.Any(), tt.url).Return(tt.head, tt.headErr)
			httpClient.EXPECT().GetResponseNoRetry(gomock.Any(), tt.url, rangeHeader).Return(tt.get, tt.getErr)

			got := uri.NewSniffer(httpClient, adapter.NewIO()).Classify(context.Background(), tt.url)

			assert.Equal(t, tt.url, got.ResolvedURL)
			assert.Equal(t, tt.wantImage, got.IsImage)
			assert.Equal(t, tt.wantJSON, got.IsJSON)
			assert.False(t, got.IsVideo)
			assert.False(t, got.IsAudio)
			assert.False(t, got.IsPDF)

			if tt.wantCT == "" {
				assert.Nil(t, got.ContentType)
			} else {
				require.NotNil(t, got.ContentType)
				assert.Equal(t, tt.wantCT, *got.ContentType)
			}

			if tt.wantError == "" {
				assert.Nil(t, got.Error)
			} else {
				require.NotNil(t, got.Error)
				assert.Contains(t, *got.Error, tt.wantError)
			}
		})
	}
}

func TestSniffer_Classify_ClosesBodies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	ioMock := mocks.NewMockIO(ctrl)

	httpClient.EXPECT().HeadNoRetry(gomock.Any(), gomock.Any()).Return(response(http.StatusOK, ""), nil)
	httpClient.EXPECT().GetResponseNoRetry(gomock.Any(), gomock.Any(), gomock.Any()).Return(response(http.StatusOK, "image/png"), nil)
	ioMock.EXPECT().Discard(gomock.Any()).Return(nil).Times(2)

	got := uri.NewSniffer(httpClient, ioMock).Classify(context.Background(), "https://example.com/a")
	assert.True(t, got.IsImage)
}
