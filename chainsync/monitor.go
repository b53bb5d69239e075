// Monitor polls one chain, waits for confirmations,
// hands every irreversible event to the attached observers
// and persists how far it has come.
package chainsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Rican7/retry/backoff"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/metrics"
)

type Monitor[E agreement.Event] struct {
	cfg    Config
	source EventSource[E]
	store  StateStore

	mu        sync.Mutex
	observers []Observer[E]
	started   bool

	cursor   atomic.Uint64
	failures uint
}

// NewMonitor loads the cursor of cfg.Identity (cfg.StartHeight if none is stored).
func NewMonitor[E agreement.Event](
	ctx context.Context,
	cfg Config,
	source EventSource[E],
	store StateStore,
	observers ...Observer[E],
) (*Monitor[E], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	cursor, err := store.Load(ctx, cfg.Identity, cfg.StartHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor of %s: %w", cfg.Identity, err)
	}

	m := &Monitor[E]{
		cfg:       cfg,
		source:    source,
		store:     store,
		observers: append([]Observer[E]{}, observers...),
	}
	m.cursor.Store(cursor)
	metrics.Cursor.WithLabelValues(cfg.Identity).Set(float64(cursor))

	m.log().WithFields(logger.Fields{
		"cursor":        cursor,
		"confirmations": cfg.Confirmations,
		"observers":     len(m.observers),
	}).Info("monitor initialized")

	return m, nil
}

// Attach appends an observer. Only allowed before the first Step or Run.
func (m *Monitor[E]) Attach(o Observer[E]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrMonitorStarted
	}
	m.observers = append(m.observers, o)
	return nil
}

// Observers returns the number of attached observers.
func (m *Monitor[E]) Observers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.observers)
}

func (m *Monitor[E]) Identity() string {
	return m.cfg.Identity
}

// Cursor is the last height whose events were fully dispatched.
func (m *Monitor[E]) Cursor() uint64 {
	return m.cursor.Load()
}

func (m *Monitor[E]) log() *logger.Entry {
	return logger.WithField("monitor", m.cfg.Identity)
}

func (m *Monitor[E]) start() []Observer[E] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return m.observers
}

// safeFrontier returns the highest height buried under enough confirmations.
func (m *Monitor[E]) safeFrontier(tip uint64) (uint64, bool) {
	if tip < m.cfg.Confirmations {
		return 0, false
	}
	return tip - m.cfg.Confirmations, true
}

// Step runs one iteration: tip, frontier, fetch, dispatch, save.
// more reports whether the cursor advanced and the chain may already
// have further safe heights.
func (m *Monitor[E]) Step(ctx context.Context) (more bool, err error) {
	observers := m.start()
	identity := m.cfg.Identity
	cursor := m.cursor.Load()

	tip, err := m.source.GetTipIndex(ctx)
	if err != nil {
		return false, &SyncError{Phase: PhaseTip, Err: err}
	}
	metrics.ChainTip.WithLabelValues(identity).Set(float64(tip))

	safe, ok := m.safeFrontier(tip)
	if !ok || safe <= cursor {
		return false, nil
	}
	metrics.SafeFrontier.WithLabelValues(identity).Set(float64(safe))

	to := safe
	if m.cfg.MaxBatchSize > 0 && to-cursor > m.cfg.MaxBatchSize {
		to = cursor + m.cfg.MaxBatchSize
	}
	from := cursor + 1

	events, err := m.source.GetEvents(ctx, from, to)
	if err != nil {
		return false, &SyncError{Phase: PhaseFetch, From: from, To: to, Err: err}
	}
	if err := checkBatch(events, from, to); err != nil {
		return false, &SyncError{Phase: PhaseFetch, From: from, To: to, Err: err}
	}

	for _, ev := range events {
		for i, o := range observers {
			if err := o.Notify(ctx, ev); err != nil {
				return false, &SyncError{
					Phase: PhaseDispatch,
					From:  from,
					To:    to,
					Err:   fmt.Errorf("observer %d on %s: %w", i, ev.SourceTxID(), err),
				}
			}
		}
		metrics.EventsDispatched.WithLabelValues(identity).Inc()
	}

	// The batch has been delivered, let the save finish even on shutdown.
	if err := m.store.Save(context.WithoutCancel(ctx), identity, to); err != nil {
		return false, &SyncError{Phase: PhaseSave, From: from, To: to, Err: err}
	}
	m.cursor.Store(to)
	metrics.Cursor.WithLabelValues(identity).Set(float64(to))

	m.log().WithFields(logger.Fields{
		"from":   from,
		"to":     to,
		"tip":    tip,
		"events": len(events),
	}).Debug("batch dispatched")

	return to < safe, nil
}

func checkBatch[E agreement.Event](events []E, from, to uint64) error {
	var last uint64
	for i, ev := range events {
		h := ev.Height()
		if h < from || h > to {
			return fmt.Errorf("%w: %s at %d", ErrEventOutOfRange, ev.SourceTxID(), h)
		}
		if i > 0 && h < last {
			return fmt.Errorf("%w: %d after %d", ErrEventUnordered, h, last)
		}
		last = h
	}
	return nil
}

// Run loops Step until ctx is cancelled. It never returns on chain or
// observer failures, those are logged and retried after a backoff.
func (m *Monitor[E]) Run(ctx context.Context) error {
	m.start()
	m.log().WithField("cursor", m.Cursor()).Info("monitor started")

	for {
		more, err := m.Step(ctx)

		var wait time.Duration
		switch {
		case err != nil:
			if ctx.Err() != nil {
				break
			}
			m.failures++
			wait = m.backoff()
			m.report(err, wait)
		case more:
			m.failures = 0
			wait = 0
		default:
			m.failures = 0
			wait = m.cfg.PollInterval
		}

		if ctx.Err() != nil {
			m.log().WithField("cursor", m.Cursor()).Info("monitor stopped")
			return ctx.Err()
		}
		if wait == 0 {
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			m.log().WithField("cursor", m.Cursor()).Info("monitor stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff doubles from ErrorBackoffBase on every consecutive failure.
func (m *Monitor[E]) backoff() time.Duration {
	if m.failures == 0 {
		return 0
	}
	attempt := m.failures - 1
	// 2^32 * base overflows long before that
	if attempt > 32 {
		return m.cfg.ErrorBackoffMax
	}
	wait := backoff.BinaryExponential(m.cfg.ErrorBackoffBase)(attempt)
	if wait <= 0 || wait > m.cfg.ErrorBackoffMax {
		wait = m.cfg.ErrorBackoffMax
	}
	return wait
}

func (m *Monitor[E]) report(err error, wait time.Duration) {
	phase := "unknown"
	var se *SyncError
	if errors.As(err, &se) {
		phase = string(se.Phase)
	}
	metrics.MonitorErrors.WithLabelValues(m.cfg.Identity, phase).Inc()

	entry := m.log().WithFields(logger.Fields{
		"phase":    phase,
		"cursor":   m.Cursor(),
		"failures": m.failures,
		"retry_in": wait.String(),
	})
	switch phase {
	case string(PhaseTip), string(PhaseFetch):
		entry.WithError(err).Error("failed to read chain")
	default:
		entry.WithError(err).Error("failed to settle batch")
	}
}
