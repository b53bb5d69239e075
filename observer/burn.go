package observer

import (
	"context"
	"fmt"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/common"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/state"
)

// BurnObserver releases NCG for every confirmed wNCG burn.
type BurnObserver struct {
	settler
	transferer agreement.Transferer
}

func NewBurnObserver(transferer agreement.Transferer, ledger SettlementLedger, n notifier.Notifier) *BurnObserver {
	return &BurnObserver{
		settler: settler{
			name:     "burn",
			chain:    agreement.ChainEthereum,
			ledger:   ledger,
			notifier: n,
		},
		transferer: transferer,
	}
}

func (o *BurnObserver) Notify(ctx context.Context, ev *agreement.BurnEvent) error {
	ref := ev.SourceTxID()
	pending, done, err := o.lookup(ctx, ref)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	if common.IsNCGDust(ev.Amount) {
		o.log(ref).WithField("amount", ev.Amount.String()).Warn("burn too small to redeem")
		o.record(ctx, &state.Settlement{
			SourceRef: ref,
			Kind:      state.SettlementSkipped,
			Recipient: ev.Recipient.Hex(),
			Amount:    ev.Amount,
		})
		o.notifier.Notify(ctx, &notifier.Message{
			Title:  "wNCG burn too small to redeem as NCG",
			Color:  notifier.ColorWarning,
			Fields: o.fields(ev, ""),
		})
		return nil
	}

	txId, err := o.transfer(ctx, o.transferer, pending, ref, ev.Recipient, ev.Amount, ev.TxHash.Hex())
	if err != nil {
		return fmt.Errorf("failed to redeem %s: %w", ref, err)
	}

	o.log(ref).WithField("ncg_tx", txId).Info("NCG redeemed")
	o.record(ctx, &state.Settlement{
		SourceRef: ref,
		Kind:      state.SettlementRedeem,
		TargetTx:  txId,
		Recipient: ev.Recipient.Hex(),
		Amount:    ev.Amount,
	})
	o.notifier.Notify(ctx, &notifier.Message{
		Title:  "NCG redeemed",
		Color:  notifier.ColorGood,
		Fields: o.fields(ev, txId),
	})

	return nil
}

func (o *BurnObserver) fields(ev *agreement.BurnEvent, txId string) []notifier.Field {
	fields := []notifier.Field{
		{Title: "sender", Value: ev.Sender.Hex()},
		{Title: "recipient", Value: ev.Recipient.Hex()},
		{Title: "amount", Value: common.FormatNCGAmount(ev.Amount) + " NCG"},
		{Title: "ethereum tx", Value: ev.TxHash.Hex()},
	}
	if txId != "" {
		fields = append(fields, notifier.Field{Title: "nine chronicles tx", Value: txId})
	}
	return fields
}
