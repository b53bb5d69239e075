package observer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/common"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/state"
)

const RefundMemo = "I'm bridge and you should transfer with memo, valid ethereum address to receive."

// TransferObserver mints wNCG for every confirmed NCG transfer to the bridge,
// and refunds transfers that do not name a receiver.
type TransferObserver struct {
	settler
	transferer agreement.Transferer
	minter     agreement.Minter
}

func NewTransferObserver(transferer agreement.Transferer, minter agreement.Minter, ledger SettlementLedger, n notifier.Notifier) *TransferObserver {
	return &TransferObserver{
		settler: settler{
			name:     "transfer",
			chain:    agreement.ChainNineChronicles,
			ledger:   ledger,
			notifier: n,
		},
		transferer: transferer,
		minter:     minter,
	}
}

func (o *TransferObserver) Notify(ctx context.Context, ev *agreement.TransferEvent) error {
	ref := ev.SourceTxID()
	pending, done, err := o.lookup(ctx, ref)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	receiver, ok := ev.Destination()
	if !ok || ev.Amount == nil || ev.Amount.Sign() <= 0 {
		return o.refund(ctx, ev, pending)
	}
	return o.mint(ctx, ev, receiver, pending)
}

func (o *TransferObserver) mint(ctx context.Context, ev *agreement.TransferEvent, receiver ethcommon.Address, pending *state.Settlement) error {
	ref := ev.SourceTxID()

	var hash ethcommon.Hash
	if pending != nil && pending.TargetTx != "" {
		hash = ethcommon.HexToHash(pending.TargetTx)
	} else {
		var err error
		hash, err = o.minter.SendMint(ctx, receiver, ev.Amount)
		if err != nil {
			return fmt.Errorf("failed to mint for %s: %w", ref, err)
		}
		err = o.hold(ctx, &state.Settlement{
			SourceRef: ref,
			TargetTx:  hash.Hex(),
			Recipient: receiver.Hex(),
			Amount:    ev.Amount,
		})
		if err != nil {
			o.alert(ctx, ref, hash.Hex(), err)
		}
	}

	if err := o.minter.WaitMint(ctx, hash); err != nil {
		if errors.Is(err, agreement.ErrTxReverted) {
			// nothing was minted, the next attempt sends a new tx
			if err := o.ledger.DeletePendingSettlement(context.WithoutCancel(ctx), o.chain, ref); err != nil {
				o.log(ref).WithError(err).Error("failed to drop reverted mint")
			}
		}
		return fmt.Errorf("failed to mint for %s: tx=%s: %w", ref, hash.Hex(), err)
	}

	o.log(ref).WithField("eth_tx", hash.Hex()).Info("wNCG minted")
	o.record(ctx, &state.Settlement{
		SourceRef: ref,
		Kind:      state.SettlementMint,
		TargetTx:  hash.Hex(),
		Recipient: receiver.Hex(),
		Amount:    ev.Amount,
	})
	o.notifier.Notify(ctx, &notifier.Message{
		Title: "wNCG minted",
		Color: notifier.ColorGood,
		Fields: append(o.fields(ev),
			notifier.Field{Title: "recipient", Value: receiver.Hex()},
			notifier.Field{Title: "ethereum tx", Value: hash.Hex()},
		),
	})

	return nil
}

func (o *TransferObserver) refund(ctx context.Context, ev *agreement.TransferEvent, pending *state.Settlement) error {
	ref := ev.SourceTxID()
	log := o.log(ref).WithField("memo", ev.Memo)

	if ev.Amount == nil || ev.Amount.Sign() <= 0 || common.IsNCGDust(ev.Amount) {
		log.Warn("invalid transfer with nothing to refund")
		amount := ev.Amount
		if amount == nil || amount.Sign() < 0 {
			amount = new(big.Int)
		}
		o.record(ctx, &state.Settlement{
			SourceRef: ref,
			Kind:      state.SettlementSkipped,
			Recipient: ev.Sender.Hex(),
			Amount:    amount,
		})
		return nil
	}

	txId, err := o.transfer(ctx, o.transferer, pending, ref, ev.Sender, ev.Amount, RefundMemo)
	if err != nil {
		return fmt.Errorf("failed to refund %s: %w", ref, err)
	}

	log.WithField("ncg_tx", txId).Info("NCG refunded")
	o.record(ctx, &state.Settlement{
		SourceRef: ref,
		Kind:      state.SettlementRefund,
		TargetTx:  txId,
		Recipient: ev.Sender.Hex(),
		Amount:    ev.Amount,
	})
	o.notifier.Notify(ctx, &notifier.Message{
		Title: "NCG refunded, memo is not a valid ethereum address",
		Color: notifier.ColorWarning,
		Fields: append(o.fields(ev),
			notifier.Field{Title: "refund tx", Value: txId},
		),
	})

	return nil
}

func (o *TransferObserver) fields(ev *agreement.TransferEvent) []notifier.Field {
	return []notifier.Field{
		{Title: "sender", Value: ev.Sender.Hex()},
		{Title: "amount", Value: ev.RawAmount + " NCG"},
		{Title: "memo", Value: ev.Memo},
		{Title: "nine chronicles tx", Value: ev.TxId},
	}
}
