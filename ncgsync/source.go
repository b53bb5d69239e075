// Event source of NCG transfers to the bridge custody address on nine chronicles.
package ncgsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

var ErrInvalidRange = errors.New("invalid block index range")

// HeadlessReader is implemented by ncgman.Headless.
type HeadlessReader interface {
	GetTipIndex(ctx context.Context) (uint64, error)
	GetBlockHash(ctx context.Context, index uint64) (string, error)
	GetNCGTransferEvents(ctx context.Context, index uint64, blockHash string, recipient common.Address) ([]*agreement.TransferEvent, error)
}

type TransferEventSource struct {
	headless HeadlessReader
	address  common.Address
}

func NewTransferEventSource(headless HeadlessReader, bridgeAddress common.Address) *TransferEventSource {
	return &TransferEventSource{headless: headless, address: bridgeAddress}
}

func (s *TransferEventSource) GetTipIndex(ctx context.Context) (uint64, error) {
	return s.headless.GetTipIndex(ctx)
}

// GetEvents walks [from, to] block by block: resolve the hash, then its transfers.
func (s *TransferEventSource) GetEvents(ctx context.Context, from, to uint64) ([]*agreement.TransferEvent, error) {
	if from > to {
		return nil, fmt.Errorf("%w: from=%d, to=%d", ErrInvalidRange, from, to)
	}

	var events []*agreement.TransferEvent
	for index := from; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hash, err := s.headless.GetBlockHash(ctx, index)
		if err != nil {
			return nil, fmt.Errorf("block hash at %d: %w", index, err)
		}

		evs, err := s.headless.GetNCGTransferEvents(ctx, index, hash, s.address)
		if err != nil {
			return nil, fmt.Errorf("transfers at %d: %w", index, err)
		}
		events = append(events, evs...)

		if index == to {
			break
		}
	}

	if len(events) > 0 {
		logger.WithFields(logger.Fields{
			"from":      from,
			"to":        to,
			"transfers": len(events),
		}).Info("found NCG transfer events")
	}

	return events, nil
}
