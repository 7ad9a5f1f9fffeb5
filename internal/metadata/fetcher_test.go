package metadata

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-scanner/internal/adapter"
	"github.com/feral-file/ff-token-scanner/internal/mocks"
)

func TestFetcher_FetchJSON(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantURL string
		body    []byte
		err     error
		want    map[string]interface{}
	}{
		{
			name:    "ipfs uri is fetched through the gateway",
			uri:     "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/1",
			wantURL: "https://ipfs.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/1",
			body:    []byte(`{"name":"Fidenza #1","image":"ipfs://QmImage"}`),
			want:    map[string]interface{}{"name": "Fidenza #1", "image": "ipfs://QmImage"},
		},
		{
			name:    "https uri is fetched as is",
			uri:     "https://token.artblocks.io/78000000",
			wantURL: "https://token.artblocks.io/78000000",
			body:    []byte(`{"name":"Chromie Squiggle"}`),
			want:    map[string]interface{}{"name": "Chromie Squiggle"},
		},
		{
			name:    "http error yields nil",
			uri:     "https://example.com/missing.json",
			wantURL: "https://example.com/missing.json",
			err:     &adapter.StatusError{StatusCode: 404},
		},
		{
			name:    "non json body yields nil",
			uri:     "ar://abc",
			wantURL: "https://arweave.net/abc",
			body:    []byte(`<html>not json</html>`),
		},
		{
			name:    "json array yields nil",
			uri:     "https://example.com/list.json",
			wantURL: "https://example.com/list.json",
			body:    []byte(`[1,2,3]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			httpClient := mocks.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				GetBytes(gomock.Any(), tt.wantURL, map[string]string{"Accept": "application/json"}).
				Return(tt.body, tt.err)

			got := NewFetcher(httpClient, adapter.NewJSON()).FetchJSON(context.Background(), tt.uri)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetcher_FetchJSON_DataURI(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no network calls expected
	f := NewFetcher(mocks.NewMockHTTPClient(ctrl), adapter.NewJSON())

	got := f.FetchJSON(context.Background(), "data:application/json;base64,eyJuYW1lIjoib24tY2hhaW4ifQ==")
	assert.Equal(t, map[string]interface{}{"name": "on-chain"}, got)

	got = f.FetchJSON(context.Background(), "data:application/json,%7B%22name%22%3A%22plain%22%7D")
	assert.Equal(t, map[string]interface{}{"name": "plain"}, got)

	assert.Nil(t, f.FetchJSON(context.Background(), "data:application/json;base64,!!!"))
	assert.Nil(t, f.FetchJSON(context.Background(), "data:application/json"))
}

func TestFingerprint(t *testing.T) {
	json := adapter.NewJSON()

	a, err := Fingerprint(json, map[string]interface{}{"name": "a", "attributes": []interface{}{1.0, "x"}})
	require.NoError(t, err)
	b, err := Fingerprint(json, map[string]interface{}{"attributes": []interface{}{1.0, "x"}, "name": "a"})
	require.NoError(t, err)
	c, err := Fingerprint(json, map[string]interface{}{"name": "b"})
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, hex.EncodeToString(a), hex.EncodeToString(b))
	assert.NotEqual(t, hex.EncodeToString(a), hex.EncodeToString(c))
}

func TestFingerprint_MarshalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	json := mocks.NewMockJSON(ctrl)
	json.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := Fingerprint(json, map[string]interface{}{})
	assert.ErrorContains(t, err, "failed to marshal metadata")
}
