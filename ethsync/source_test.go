package ethsync

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

type window struct{ from, to uint64 }

type fakeReader struct {
	tip     uint64
	burns   map[uint64][]*agreement.BurnEvent
	windows []window
	failAt  uint64
}

func (r *fakeReader) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return r.tip, nil
}

func (r *fakeReader) GetBurnEvents(ctx context.Context, from, to uint64) ([]*agreement.BurnEvent, error) {
	r.windows = append(r.windows, window{from, to})
	if r.failAt != 0 && from <= r.failAt && r.failAt <= to {
		return nil, errors.New("query returned more than 10000 results")
	}
	var evs []*agreement.BurnEvent
	for h := from; h <= to; h++ {
		evs = append(evs, r.burns[h]...)
	}
	return evs, nil
}

func TestGetEventsChunked(t *testing.T) {
	reader := &fakeReader{tip: 99, burns: map[uint64][]*agreement.BurnEvent{
		1:  {RandBurnEvent(1, big.NewInt(1))},
		10: {RandBurnEvent(10, big.NewInt(2)), RandBurnEvent(10, big.NewInt(3))},
		25: {RandBurnEvent(25, big.NewInt(4))},
	}}
	source := NewBurnEventSource(reader, &Config{MaxBlockRange: 10})

	tip, err := source.GetTipIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(99), tip)

	events, err := source.GetEvents(context.Background(), 1, 25)
	require.NoError(t, err)
	assert.Equal(t, []window{{1, 10}, {11, 20}, {21, 25}}, reader.windows)

	var heights []uint64
	for _, ev := range events {
		heights = append(heights, ev.Height())
	}
	assert.Equal(t, []uint64{1, 10, 10, 25}, heights)
}

func TestGetEventsSingleWindow(t *testing.T) {
	reader := &fakeReader{}
	source := NewBurnEventSource(reader, nil)

	events, err := source.GetEvents(context.Background(), 7, 7)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, []window{{7, 7}}, reader.windows)

	_, err = source.GetEvents(context.Background(), 8, 7)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestGetEventsFailure(t *testing.T) {
	reader := &fakeReader{failAt: 15}
	source := NewBurnEventSource(reader, &Config{MaxBlockRange: 10})

	events, err := source.GetEvents(context.Background(), 1, 30)
	assert.Error(t, err)
	assert.Nil(t, events)
	assert.Equal(t, []window{{1, 10}, {11, 20}}, reader.windows)
}
