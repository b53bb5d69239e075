// Event source of wNCG burns on ethereum.
package ethsync

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

type BurnEventSource struct {
	reader BurnReader
	cfg    Config
}

func NewBurnEventSource(reader BurnReader, cfg *Config) *BurnEventSource {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.MaxBlockRange == 0 {
		c.MaxBlockRange = DefaultMaxBlockRange
	}
	return &BurnEventSource{reader: reader, cfg: c}
}

func (s *BurnEventSource) GetTipIndex(ctx context.Context) (uint64, error) {
	return s.reader.LatestBlockNumber(ctx)
}

// GetEvents queries [from, to] in windows of MaxBlockRange blocks.
func (s *BurnEventSource) GetEvents(ctx context.Context, from, to uint64) ([]*agreement.BurnEvent, error) {
	if from > to {
		return nil, ErrInvalidRangeOf(from, to)
	}

	var events []*agreement.BurnEvent
	for start := from; start <= to; {
		end := to
		if end-start >= s.cfg.MaxBlockRange {
			end = start + s.cfg.MaxBlockRange - 1
		}

		evs, err := s.reader.GetBurnEvents(ctx, start, end)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)

		if end == to {
			break
		}
		start = end + 1
	}

	if len(events) > 0 {
		logger.WithFields(logger.Fields{
			"from":  from,
			"to":    to,
			"burns": len(events),
		}).Info("found burn events")
	}

	return events, nil
}
