// Implement following interfaces to make the bridge work with your chain.
package chainsync

import (
	"context"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

// EventSource is the read side of one chain, do the dirty job.
type EventSource[E agreement.Event] interface {
	// GetTipIndex returns the current tip.
	// on ethereum it is the latest block number,
	// on nine chronicles it is the tip block index.
	GetTipIndex(ctx context.Context) (uint64, error)

	// GetEvents returns the bridge events within [from, to], both inclusive.
	// Notice, the events shall be ordered from old -> new.
	// Otherwise the monitor refuses the batch.
	GetEvents(ctx context.Context, from, to uint64) ([]E, error)
}

// Observer settles a confirmed event on the opposite chain.
// Returning an error keeps the monitor from advancing past the event.
type Observer[E agreement.Event] interface {
	Notify(ctx context.Context, ev E) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc[E agreement.Event] func(ctx context.Context, ev E) error

func (f ObserverFunc[E]) Notify(ctx context.Context, ev E) error {
	return f(ctx, ev)
}

// StateStore persists how far each monitor identity has progressed.
type StateStore interface {
	// Load returns the stored cursor or def if there is none.
	Load(ctx context.Context, identity string, def uint64) (uint64, error)
	Save(ctx context.Context, identity string, cursor uint64) error
}
