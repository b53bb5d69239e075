package ethsync

// DefaultMaxBlockRange keeps eth_getLogs under the usual provider limits.
const DefaultMaxBlockRange = 2000

type Config struct {
	// MaxBlockRange bounds a single eth_getLogs query, 0 = DefaultMaxBlockRange
	MaxBlockRange uint64
}
