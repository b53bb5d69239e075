package chainsync

import (
	"fmt"
	"time"
)

const (
	DefaultPollInterval     = 10 * time.Second
	DefaultErrorBackoffBase = 1 * time.Second
	DefaultErrorBackoffMax  = 1 * time.Minute
)

// Config of a single confirmation monitor.
type Config struct {
	Identity      string // key of the cursor lineage in the state store
	Confirmations uint64 // blocks that must follow an event, 0 = tip is final
	StartHeight   uint64 // cursor used when nothing is stored yet

	PollInterval     time.Duration // idle wait between polls
	ErrorBackoffBase time.Duration // first wait after a failed iteration, doubled per failure
	ErrorBackoffMax  time.Duration // cap of the error wait

	// MaxBatchSize bounds the heights fetched per iteration, 0 = unbounded.
	MaxBatchSize uint64
}

func (cfg *Config) applyDefaults() {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ErrorBackoffBase <= 0 {
		cfg.ErrorBackoffBase = DefaultErrorBackoffBase
	}
	if cfg.ErrorBackoffMax < cfg.ErrorBackoffBase {
		cfg.ErrorBackoffMax = DefaultErrorBackoffMax
		if cfg.ErrorBackoffMax < cfg.ErrorBackoffBase {
			cfg.ErrorBackoffMax = cfg.ErrorBackoffBase
		}
	}
}

func (cfg *Config) validate() error {
	if cfg.Identity == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidConfig)
	}
	return nil
}
