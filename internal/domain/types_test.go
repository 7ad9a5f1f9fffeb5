package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidChain(t *testing.T) {
	tests := []struct {
		name     string
		chain    Chain
		expected bool
	}{
		{
			name:     "valid ethereum mainnet",
			chain:    ChainEthereumMainnet,
			expected: true,
		},
		{
			name:     "valid ethereum sepolia",
			chain:    ChainEthereumSepolia,
			expected: true,
		},
		{
			name:     "valid polygon chain",
			chain:    Chain("eip155:137"),
			expected: true,
		},
		{
			name:     "valid tezos mainnet",
			chain:    ChainTezosMainnet,
			expected: true,
		},
		{
			name:     "valid tezos ghostnet",
			chain:    ChainTezosGhostnet,
			expected: true,
		},
		{
			name:     "invalid empty chain",
			chain:    Chain(""),
			expected: false,
		},
		{
			name:     "invalid unknown namespace",
			chain:    Chain("cosmos:cosmoshub-4"),
			expected: false,
		},
		{
			name:     "invalid missing reference",
			chain:    Chain("eip155"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidChain(tt.chain))
		})
	}
}

func TestChain_Blockchain(t *testing.T) {
	assert.Equal(t, BlockchainEthereum, ChainEthereumMainnet.Blockchain())
	assert.Equal(t, BlockchainEthereum, Chain("eip155:8453").Blockchain())
	assert.Equal(t, BlockchainTezos, ChainTezosGhostnet.Blockchain())
	assert.Equal(t, Blockchain(""), Chain("solana:mainnet").Blockchain())
	assert.Equal(t, Blockchain(""), Chain("").Blockchain())
}

func TestEndpointSet_Clone(t *testing.T) {
	set := EndpointSet{Chain: ChainEthereumMainnet, URLs: []string{"https://a", "https://b"}}
	clone := set.Clone()
	clone.URLs[0] = "https://changed"

	assert.Equal(t, "https://a", set.URLs[0])
	assert.Equal(t, set.Chain, clone.Chain)
}

func TestIsValidContractAddress(t *testing.T) {
	tests := []struct {
		name     string
		chain    Chain
		address  string
		expected bool
	}{
		{"ethereum checksummed", ChainEthereumMainnet, "0xa7d8d9ef8D8Ce8992Df33D8b8CF4Aebabd5bD270", true},
		{"ethereum lowercase", ChainEthereumMainnet, "0xa7d8d9ef8d8ce8992df33d8b8cf4aebabd5bd270", true},
		{"ethereum too short", ChainEthereumMainnet, "0x1234", false},
		{"tezos KT1", ChainTezosMainnet, "KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton", true},
		{"tezos implicit account", ChainTezosMainnet, "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb", false},
		{"unknown chain", Chain("solana:mainnet"), "KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidContractAddress(tt.chain, tt.address))
		})
	}
}

func TestIsValidTokenID(t *testing.T) {
	assert.True(t, IsValidTokenID("0"))
	assert.True(t, IsValidTokenID("115792089237316195423570985008687907853269984665640564039457584007913129639935"))
	assert.False(t, IsValidTokenID(""))
	assert.False(t, IsValidTokenID("-1"))
	assert.False(t, IsValidTokenID("0x1"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0xa7d8d9ef8D8Ce8992Df33D8b8CF4Aebabd5bD270", NormalizeAddress("0xa7d8d9ef8d8ce8992df33d8b8cf4aebabd5bd270"))
	assert.Equal(t, "KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton", NormalizeAddress("KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton"))
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	exhausted := &AllEndpointsExhaustedError{Chain: ChainEthereumMainnet, AttemptedURLs: []string{"https://a", "https://b"}, LastErr: cause}
	assert.ErrorIs(t, exhausted, cause)
	assert.Contains(t, exhausted.Error(), "https://a, https://b")

	unavailable := &ChainUnavailableError{Chain: ChainTezosMainnet, Cause: exhausted}
	var target *AllEndpointsExhaustedError
	assert.ErrorAs(t, unavailable, &target)
	assert.Equal(t, "chain tezos:mainnet unavailable", (&ChainUnavailableError{Chain: ChainTezosMainnet}).Error())

	batch := &BatchFetchFailureError{RangeStart: 50, RangeEnd: 100, Cause: cause}
	assert.ErrorIs(t, batch, cause)
	assert.Equal(t, "failed to fetch tokens in range [50, 100): boom", batch.Error())

	unsupported := &EnumerationUnsupportedError{Chain: ChainEthereumMainnet, ContractAddress: "0xabc", Cause: cause}
	assert.ErrorIs(t, unsupported, cause)
	assert.Contains(t, unsupported.Error(), "0xabc")
}
