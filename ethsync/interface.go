package ethsync

import (
	"context"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

// BurnReader is implemented by etherman.Etherman.
type BurnReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	GetBurnEvents(ctx context.Context, from, to uint64) ([]*agreement.BurnEvent, error)
}
