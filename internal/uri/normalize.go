package uri

import (
	"strings"

	"github.com/feral-file/ff-token-scanner/internal/domain"
)

// Gateway prefixes used to rewrite content-addressed schemes
const (
	IPFSGatewayPrefix    = domain.DEFAULT_IPFS_GATEWAY + "/ipfs/"
	IPNSGatewayPrefix    = domain.DEFAULT_IPFS_GATEWAY + "/ipns/"
	ArweaveGatewayPrefix = domain.DEFAULT_ARWEAVE_GATEWAY + "/"
)

// Normalize rewrites ipfs://, ipns:// and ar:// URIs to their HTTP gateway form.
// Any other URI is returned unchanged. Normalize never touches the network.
func Normalize(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return IPFSGatewayPrefix + rest
	}

	if rest, ok := strings.CutPrefix(uri, "ipns://"); ok {
		return IPNSGatewayPrefix + rest
	}

	if rest, ok := strings.CutPrefix(uri, "ar://"); ok {
		return ArweaveGatewayPrefix + rest
	}

	return uri
}

// Resolve pairs uri with its normalized form
func Resolve(uri string) domain.ResolvedURI {
	return domain.ResolvedURI{
		Original:   uri,
		Normalized: Normalize(uri),
	}
}
