package domain

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY    = "https://ipfs.io"
	DEFAULT_ARWEAVE_GATEWAY = "https://arweave.net"

	// Enumeration constants
	DEFAULT_ENUMERATION_BATCH_SIZE = 50
	DEFAULT_ENUMERATION_BATCH_WAIT = 200 // milliseconds

	// Indexing constants
	DEFAULT_INDEXING_LAG_THRESHOLD = 100

	// Content sniffing constants
	SNIFF_RANGE_BYTES = 1024
)
