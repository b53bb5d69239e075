// Package observer turns confirmed events into settlements on the opposite chain.
package observer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/metrics"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/state"
)

// SettlementLedger is implemented by state.StateDB.
type SettlementLedger interface {
	GetSettlement(ctx context.Context, sourceChain, sourceRef string) (*state.Settlement, bool, error)
	InsertSettlement(ctx context.Context, s *state.Settlement) error
	CompleteSettlement(ctx context.Context, s *state.Settlement) error
	DeletePendingSettlement(ctx context.Context, sourceChain, sourceRef string) error
}

// settler holds what both observers share: the ledger and the notifier.
type settler struct {
	name     string
	chain    string
	ledger   SettlementLedger
	notifier notifier.Notifier
}

func (s *settler) log(ref string) *logger.Entry {
	return logger.WithFields(logger.Fields{
		"observer": s.name,
		"source":   ref,
	})
}

// lookup reports whether ref is already settled, or returns the pending
// settlement a previous attempt left behind.
func (s *settler) lookup(ctx context.Context, ref string) (*state.Settlement, bool, error) {
	prev, ok, err := s.ledger.GetSettlement(ctx, s.chain, ref)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	log := s.log(ref).WithField("target_tx", prev.TargetTx)
	if prev.Kind == state.SettlementPending {
		if prev.Nonce != nil {
			log = log.WithField("nonce", *prev.Nonce)
		}
		log.Info("resuming pending settlement")
		return prev, false, nil
	}

	log.WithField("kind", prev.Kind).Info("already settled, skipping")
	return nil, true, nil
}

// hold records st as pending before or right after the action is issued.
func (s *settler) hold(ctx context.Context, st *state.Settlement) error {
	st.SourceChain = s.chain
	st.Kind = state.SettlementPending
	return s.ledger.InsertSettlement(context.WithoutCancel(ctx), st)
}

// transfer stages an NCG transfer for ref. The nonce is held in a pending
// settlement before staging, and a retry stages with the held nonce again.
func (s *settler) transfer(ctx context.Context, t agreement.Transferer, pending *state.Settlement,
	ref string, recipient common.Address, amount *big.Int, memo string) (string, error) {
	if pending != nil && pending.Nonce != nil {
		return t.Transfer(ctx, recipient, amount, *pending.Nonce, memo)
	}

	nonce, err := t.ReserveNonce(ctx)
	if err != nil {
		return "", err
	}
	err = s.hold(ctx, &state.Settlement{
		SourceRef: ref,
		Recipient: recipient.Hex(),
		Amount:    amount,
		Nonce:     &nonce,
	})
	if err != nil {
		t.ReleaseNonce(nonce)
		return "", fmt.Errorf("failed to hold nonce %d: %w", nonce, err)
	}

	return t.Transfer(ctx, recipient, amount, nonce, memo)
}

// record stores the settlement once the action is issued on the target chain.
// The action cannot be taken back, so a failure here is reported and swallowed.
func (s *settler) record(ctx context.Context, st *state.Settlement) {
	st.SourceChain = s.chain
	metrics.Settlements.WithLabelValues(s.name, string(st.Kind)).Inc()

	ctx = context.WithoutCancel(ctx)
	err := s.ledger.CompleteSettlement(ctx, st)
	if errors.Is(err, state.ErrSettlementNotPending) {
		err = s.ledger.InsertSettlement(ctx, st)
	}
	if err == nil || errors.Is(err, state.ErrSettlementExists) {
		return
	}

	s.alert(ctx, st.SourceRef, st.TargetTx, err)
}

// alert reports an issued action the ledger does not know about.
func (s *settler) alert(ctx context.Context, ref, targetTx string, err error) {
	s.log(ref).WithField("target_tx", targetTx).WithError(err).Error("settlement issued but not recorded")

	s.notifier.Notify(ctx, &notifier.Message{
		Title: "Settlement issued but not recorded, a restart may repeat it",
		Color: notifier.ColorDanger,
		Fields: []notifier.Field{
			{Title: "source", Value: ref},
			{Title: "target tx", Value: targetTx},
			{Title: "error", Value: err.Error()},
		},
	})
}
