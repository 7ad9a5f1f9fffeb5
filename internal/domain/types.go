package domain

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Blockchain represents the blockchain family
type Blockchain string

const (
	// BlockchainEthereum covers account-model EVM chains
	BlockchainEthereum Blockchain = "ethereum"
	// BlockchainTezos covers ledger-style Tezos networks
	BlockchainTezos Blockchain = "tezos"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainTezosMainnet    Chain = "tezos:mainnet"
	ChainTezosGhostnet   Chain = "tezos:ghostnet"
)

var caip2Pattern = regexp.MustCompile(`^[-a-z0-9]{3,8}:[-_a-zA-Z0-9]{1,32}$`)

// IsValidChain checks if a chain is a well-formed CAIP-2 identifier of a supported blockchain
func IsValidChain(chain Chain) bool {
	if !caip2Pattern.MatchString(string(chain)) {
		return false
	}
	return chain.Blockchain() != ""
}

// Blockchain returns the blockchain family of the chain, or empty if the namespace is unknown
func (c Chain) Blockchain() Blockchain {
	namespace, _, _ := strings.Cut(string(c), ":")
	switch namespace {
	case "eip155":
		return BlockchainEthereum
	case "tezos":
		return BlockchainTezos
	default:
		return ""
	}
}

// EndpointSet is the ordered list of RPC endpoints of a chain.
// The order is the failover priority.
type EndpointSet struct {
	Chain Chain    `json:"chain"`
	URLs  []string `json:"urls"`
}

// Clone returns a copy of the endpoint set that does not share the URL slice
func (s EndpointSet) Clone() EndpointSet {
	urls := make([]string, len(s.URLs))
	copy(urls, s.URLs)
	return EndpointSet{Chain: s.Chain, URLs: urls}
}

// ContractRef identifies a contract on a chain
type ContractRef struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
}

// EnumerationProgress reports how many of the total tokens have been fetched
type EnumerationProgress struct {
	Fetched uint64 `json:"fetched"`
	Total   uint64 `json:"total"`
}

// DiscoveredToken is a token found at an on-chain enumeration index
type DiscoveredToken struct {
	Index   uint64 `json:"index"`
	TokenID string `json:"token_id"` // decimal string
}

// ResolvedURI pairs an original URI with its HTTP(S) form
type ResolvedURI struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
}

// ContentClassification is the best-effort content type of a URL
type ContentClassification struct {
	ResolvedURL string  `json:"resolved_url"`
	ContentType *string `json:"content_type"`
	IsImage     bool    `json:"is_image"`
	IsVideo     bool    `json:"is_video"`
	IsAudio     bool    `json:"is_audio"`
	IsPDF       bool    `json:"is_pdf"`
	IsText      bool    `json:"is_text"`
	IsHTML      bool    `json:"is_html"`
	IsJSON      bool    `json:"is_json"`
	Error       *string `json:"error,omitempty"`
}

// IndexingStatus compares an indexer's height with the live chain head
type IndexingStatus struct {
	Chain           Chain   `json:"chain"`
	CurrentHeight   uint64  `json:"current_height"`
	IndexedHeight   uint64  `json:"indexed_height"`
	ProgressPercent float64 `json:"progress_percent"`
	IsBehind        bool    `json:"is_behind"`
}

// NormalizeAddress normalizes an address to the format used by the blockchain
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") {
		return common.HexToAddress(address).String()
	}
	return address
}

// IsValidContractAddress checks the address format against the chain's blockchain
func IsValidContractAddress(chain Chain, address string) bool {
	switch chain.Blockchain() {
	case BlockchainEthereum:
		return common.IsHexAddress(address)
	case BlockchainTezos:
		return strings.HasPrefix(address, "KT1") && len(address) == 36
	default:
		return false
	}
}

var tokenIDPattern = regexp.MustCompile(`^[0-9]+$`)

// IsValidTokenID checks if a token ID is a decimal string
func IsValidTokenID(tokenID string) bool {
	return tokenIDPattern.MatchString(tokenID)
}
