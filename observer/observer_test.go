package observer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/ncg-bridge/agreement"
	bridgecommon "github.com/TEENet-io/ncg-bridge/common"
	"github.com/TEENet-io/ncg-bridge/ethsync"
	"github.com/TEENet-io/ncg-bridge/ncgsync"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/state"
)

type transferCall struct {
	recipient common.Address
	amount    *big.Int
	nonce     int64
	memo      string
}

type fakeTransferer struct {
	calls    []transferCall
	err      error
	next     int64
	reserved []int64
	released []int64
}

func (f *fakeTransferer) ReserveNonce(ctx context.Context) (int64, error) {
	nonce := f.next
	f.next++
	f.reserved = append(f.reserved, nonce)
	return nonce, nil
}

func (f *fakeTransferer) ReleaseNonce(nonce int64) {
	f.released = append(f.released, nonce)
}

func (f *fakeTransferer) Transfer(ctx context.Context, recipient common.Address, amount *big.Int, nonce int64, memo string) (string, error) {
	f.calls = append(f.calls, transferCall{recipient, amount, nonce, memo})
	if f.err != nil {
		return "", f.err
	}
	return "ncg-tx-" + memo[:4], nil
}

type mintCall struct {
	recipient common.Address
	amount    *big.Int
}

type fakeMinter struct {
	calls   []mintCall
	err     error
	waits   []common.Hash
	waitErr error
}

func (f *fakeMinter) SendMint(ctx context.Context, recipient common.Address, amount *big.Int) (common.Hash, error) {
	f.calls = append(f.calls, mintCall{recipient, amount})
	if f.err != nil {
		return common.Hash{}, f.err
	}
	return common.HexToHash("0xfeed"), nil
}

func (f *fakeMinter) WaitMint(ctx context.Context, hash common.Hash) error {
	f.waits = append(f.waits, hash)
	return f.waitErr
}

type memLedger struct {
	mu          sync.Mutex
	entries     map[string]*state.Settlement
	getErr      error
	insertErr   error
	completeErr error
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]*state.Settlement{}}
}

func (l *memLedger) GetSettlement(ctx context.Context, sourceChain, sourceRef string) (*state.Settlement, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.getErr != nil {
		return nil, false, l.getErr
	}
	s, ok := l.entries[sourceChain+"/"+sourceRef]
	return s, ok, nil
}

func (l *memLedger) InsertSettlement(ctx context.Context, s *state.Settlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.insertErr != nil {
		return l.insertErr
	}
	key := s.SourceChain + "/" + s.SourceRef
	if _, ok := l.entries[key]; ok {
		return state.ErrSettlementExists
	}
	l.entries[key] = s
	return nil
}

func (l *memLedger) CompleteSettlement(ctx context.Context, s *state.Settlement) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completeErr != nil {
		return l.completeErr
	}
	key := s.SourceChain + "/" + s.SourceRef
	if prev, ok := l.entries[key]; !ok || prev.Kind != state.SettlementPending {
		return state.ErrSettlementNotPending
	}
	l.entries[key] = s
	return nil
}

func (l *memLedger) DeletePendingSettlement(ctx context.Context, sourceChain, sourceRef string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := sourceChain + "/" + sourceRef
	if prev, ok := l.entries[key]; ok && prev.Kind == state.SettlementPending {
		delete(l.entries, key)
	}
	return nil
}

func (l *memLedger) get(chain, ref string) *state.Settlement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[chain+"/"+ref]
}

type recNotifier struct {
	msgs []*notifier.Message
}

func (n *recNotifier) Notify(ctx context.Context, msg *notifier.Message) {
	n.msgs = append(n.msgs, msg)
}

func TestBurnObserverRedeems(t *testing.T) {
	ctx := context.Background()
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewBurnObserver(transferer, ledger, n)

	ev := ethsync.RandBurnEvent(120, big.NewInt(5e18))
	ev.Recipient = common.HexToAddress("0xABABABABABABABABABABABABABABABABABABABAB")

	require.NoError(t, o.Notify(ctx, ev))
	require.Len(t, transferer.calls, 1)
	assert.Equal(t, ev.Recipient, transferer.calls[0].recipient)
	assert.Equal(t, big.NewInt(5e18), transferer.calls[0].amount)
	assert.Equal(t, ev.TxHash.Hex(), transferer.calls[0].memo)

	s := ledger.get(agreement.ChainEthereum, ev.SourceTxID())
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementRedeem, s.Kind)
	assert.Equal(t, "ncg-tx-"+ev.TxHash.Hex()[:4], s.TargetTx)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, notifier.ColorGood, n.msgs[0].Color)

	// replaying the same burn does nothing
	require.NoError(t, o.Notify(ctx, ev))
	assert.Len(t, transferer.calls, 1)
	assert.Len(t, n.msgs, 1)
}

func TestBurnObserverTransferError(t *testing.T) {
	ctx := context.Background()
	transferer := &fakeTransferer{err: errors.New("headless unreachable")}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewBurnObserver(transferer, ledger, n)

	ev := ethsync.RandBurnEvent(1, big.NewInt(1e18))
	err := o.Notify(ctx, ev)
	assert.ErrorIs(t, err, transferer.err)
	assert.Empty(t, n.msgs)

	// the nonce stays held for the retry
	s := ledger.get(agreement.ChainEthereum, ev.SourceTxID())
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementPending, s.Kind)
	require.NotNil(t, s.Nonce)
	assert.Equal(t, int64(0), *s.Nonce)
	assert.Empty(t, transferer.released)
}

func TestBurnObserverRetryReusesNonce(t *testing.T) {
	ctx := context.Background()
	transferer := &fakeTransferer{next: 12, err: errors.New("connection reset by peer")}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewBurnObserver(transferer, ledger, n)

	ev := ethsync.RandBurnEvent(1, big.NewInt(1e18))
	require.Error(t, o.Notify(ctx, ev))

	transferer.err = nil
	require.NoError(t, o.Notify(ctx, ev))

	require.Len(t, transferer.calls, 2)
	assert.Equal(t, int64(12), transferer.calls[0].nonce)
	assert.Equal(t, int64(12), transferer.calls[1].nonce)
	assert.Equal(t, []int64{12}, transferer.reserved)

	s := ledger.get(agreement.ChainEthereum, ev.SourceTxID())
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementRedeem, s.Kind)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, notifier.ColorGood, n.msgs[0].Color)
}

func TestBurnObserverHoldFailure(t *testing.T) {
	transferer := &fakeTransferer{next: 3}
	ledger := newMemLedger()
	ledger.insertErr = errors.New("disk I/O error")
	o := NewBurnObserver(transferer, ledger, &recNotifier{})

	err := o.Notify(context.Background(), ethsync.RandBurnEvent(1, big.NewInt(1e18)))
	assert.ErrorIs(t, err, ledger.insertErr)
	assert.Empty(t, transferer.calls)
	assert.Equal(t, []int64{3}, transferer.released)
}

func TestBurnObserverLedgerError(t *testing.T) {
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	ledger.getErr = errors.New("database is locked")
	o := NewBurnObserver(transferer, ledger, &recNotifier{})

	err := o.Notify(context.Background(), ethsync.RandBurnEvent(1, big.NewInt(1)))
	assert.ErrorIs(t, err, ledger.getErr)
	assert.Empty(t, transferer.calls)
}

func TestBurnObserverDust(t *testing.T) {
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewBurnObserver(transferer, ledger, n)

	ev := ethsync.RandBurnEvent(1, big.NewInt(5))
	require.NoError(t, o.Notify(context.Background(), ev))

	s := ledger.get(agreement.ChainEthereum, ev.SourceTxID())
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementSkipped, s.Kind)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, notifier.ColorWarning, n.msgs[0].Color)
	assert.Empty(t, transferer.calls)
	assert.Empty(t, transferer.reserved)
}

func TestBurnObserverRecordFailure(t *testing.T) {
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	ledger.completeErr = errors.New("disk I/O error")
	n := &recNotifier{}
	o := NewBurnObserver(transferer, ledger, n)

	// the NCG is already sent, so the batch must not be retried
	require.NoError(t, o.Notify(context.Background(), ethsync.RandBurnEvent(1, big.NewInt(1e18))))
	assert.Len(t, transferer.calls, 1)
	require.Len(t, n.msgs, 2)
	assert.Equal(t, notifier.ColorDanger, n.msgs[0].Color)
	assert.Equal(t, notifier.ColorGood, n.msgs[1].Color)
}

func TestTransferObserverMints(t *testing.T) {
	bridge := bridgecommon.RandEthAddress()
	receiver := bridgecommon.RandEthAddress()
	minter := &fakeMinter{}
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewTransferObserver(transferer, minter, ledger, n)

	ev := ncgsync.RandTransferEvent(300, bridge, "10.25", " "+receiver.Hex()+"\n")
	require.NoError(t, o.Notify(context.Background(), ev))

	require.Len(t, minter.calls, 1)
	assert.Equal(t, receiver, minter.calls[0].recipient)
	want, _ := new(big.Int).SetString("10250000000000000000", 10)
	assert.Equal(t, want, minter.calls[0].amount)
	assert.Empty(t, transferer.calls)

	s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementMint, s.Kind)
	assert.Equal(t, common.HexToHash("0xfeed").Hex(), s.TargetTx)
	assert.Equal(t, receiver.Hex(), s.Recipient)

	require.NoError(t, o.Notify(context.Background(), ev))
	assert.Len(t, minter.calls, 1)
	assert.Len(t, minter.waits, 1)
}

func TestTransferObserverMintResumes(t *testing.T) {
	minter := &fakeMinter{waitErr: context.DeadlineExceeded}
	ledger := newMemLedger()
	n := &recNotifier{}
	o := NewTransferObserver(&fakeTransferer{}, minter, ledger, n)

	receiver := bridgecommon.RandEthAddress()
	ev := ncgsync.RandTransferEvent(1, bridgecommon.RandEthAddress(), "1", receiver.Hex())
	err := o.Notify(context.Background(), ev)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementPending, s.Kind)
	assert.Equal(t, common.HexToHash("0xfeed").Hex(), s.TargetTx)

	// the sent tx is waited on again, not sent twice
	minter.waitErr = nil
	require.NoError(t, o.Notify(context.Background(), ev))
	assert.Len(t, minter.calls, 1)
	assert.Equal(t, []common.Hash{common.HexToHash("0xfeed"), common.HexToHash("0xfeed")}, minter.waits)

	s = ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementMint, s.Kind)
	assert.Equal(t, receiver.Hex(), s.Recipient)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, notifier.ColorGood, n.msgs[0].Color)
}

func TestTransferObserverMintReverted(t *testing.T) {
	minter := &fakeMinter{waitErr: fmt.Errorf("%w: hash=0xfeed", agreement.ErrTxReverted)}
	ledger := newMemLedger()
	o := NewTransferObserver(&fakeTransferer{}, minter, ledger, &recNotifier{})

	ev := ncgsync.RandTransferEvent(1, bridgecommon.RandEthAddress(), "1", bridgecommon.RandEthAddress().Hex())
	err := o.Notify(context.Background(), ev)
	assert.ErrorIs(t, err, agreement.ErrTxReverted)
	assert.Nil(t, ledger.get(agreement.ChainNineChronicles, ev.TxId))

	minter.waitErr = nil
	require.NoError(t, o.Notify(context.Background(), ev))
	assert.Len(t, minter.calls, 2)

	s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementMint, s.Kind)
}

func TestTransferObserverMintHoldFailure(t *testing.T) {
	minter := &fakeMinter{}
	ledger := newMemLedger()
	ledger.insertErr = errors.New("disk I/O error")
	n := &recNotifier{}
	o := NewTransferObserver(&fakeTransferer{}, minter, ledger, n)

	// the mint is already on the wire, so it is still seen through
	ev := ncgsync.RandTransferEvent(1, bridgecommon.RandEthAddress(), "1", bridgecommon.RandEthAddress().Hex())
	require.NoError(t, o.Notify(context.Background(), ev))
	assert.Len(t, minter.waits, 1)

	require.Len(t, n.msgs, 3)
	assert.Equal(t, notifier.ColorDanger, n.msgs[0].Color)
	assert.Equal(t, notifier.ColorDanger, n.msgs[1].Color)
	assert.Equal(t, notifier.ColorGood, n.msgs[2].Color)
}

func TestTransferObserverMintError(t *testing.T) {
	minter := &fakeMinter{err: errors.New("insufficient funds for gas")}
	ledger := newMemLedger()
	o := NewTransferObserver(&fakeTransferer{}, minter, ledger, &recNotifier{})

	ev := ncgsync.RandTransferEvent(1, bridgecommon.RandEthAddress(), "1", bridgecommon.RandEthAddress().Hex())
	err := o.Notify(context.Background(), ev)
	assert.ErrorIs(t, err, minter.err)
	assert.Nil(t, ledger.get(agreement.ChainNineChronicles, ev.TxId))
}

func TestTransferObserverRefunds(t *testing.T) {
	tests := []struct {
		name string
		memo string
	}{
		{"empty memo", ""},
		{"not an address", "hello"},
		{"zero address", "0x0000000000000000000000000000000000000000"},
		{"short address", "0xABAB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minter := &fakeMinter{}
			transferer := &fakeTransferer{}
			ledger := newMemLedger()
			n := &recNotifier{}
			o := NewTransferObserver(transferer, minter, ledger, n)

			ev := ncgsync.RandTransferEvent(7, bridgecommon.RandEthAddress(), "3.50", tt.memo)
			require.NoError(t, o.Notify(context.Background(), ev))

			assert.Empty(t, minter.calls)
			require.Len(t, transferer.calls, 1)
			assert.Equal(t, ev.Sender, transferer.calls[0].recipient)
			assert.Equal(t, ev.Amount, transferer.calls[0].amount)
			assert.Equal(t, RefundMemo, transferer.calls[0].memo)

			s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
			require.NotNil(t, s)
			assert.Equal(t, state.SettlementRefund, s.Kind)
			require.Len(t, n.msgs, 1)
			assert.Equal(t, notifier.ColorWarning, n.msgs[0].Color)
		})
	}
}

func TestTransferObserverNothingToRefund(t *testing.T) {
	transferer := &fakeTransferer{}
	ledger := newMemLedger()
	o := NewTransferObserver(transferer, &fakeMinter{}, ledger, &recNotifier{})

	ev := ncgsync.RandTransferEvent(7, bridgecommon.RandEthAddress(), "0", bridgecommon.RandEthAddress().Hex())
	require.NoError(t, o.Notify(context.Background(), ev))
	assert.Empty(t, transferer.calls)

	s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementSkipped, s.Kind)
}

func TestTransferObserverRefundError(t *testing.T) {
	transferer := &fakeTransferer{err: errors.New("nonce too low")}
	ledger := newMemLedger()
	o := NewTransferObserver(transferer, &fakeMinter{}, ledger, &recNotifier{})

	ev := ncgsync.RandTransferEvent(7, bridgecommon.RandEthAddress(), "1", "nope")
	assert.ErrorIs(t, o.Notify(context.Background(), ev), transferer.err)

	s := ledger.get(agreement.ChainNineChronicles, ev.TxId)
	require.NotNil(t, s)
	assert.Equal(t, state.SettlementPending, s.Kind)

	transferer.err = nil
	require.NoError(t, o.Notify(context.Background(), ev))
	require.Len(t, transferer.calls, 2)
	assert.Equal(t, transferer.calls[0].nonce, transferer.calls[1].nonce)
	assert.Equal(t, state.SettlementRefund, ledger.get(agreement.ChainNineChronicles, ev.TxId).Kind)
}

func TestObserversWithStateDB(t *testing.T) {
	st, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	transferer := &fakeTransferer{}
	minter := &fakeMinter{}
	burns := NewBurnObserver(transferer, st, notifier.LogNotifier{})
	transfers := NewTransferObserver(transferer, minter, st, notifier.LogNotifier{})

	burn := ethsync.RandBurnEvent(10, big.NewInt(2e18))
	transfer := ncgsync.RandTransferEvent(20, bridgecommon.RandEthAddress(), "2", bridgecommon.RandEthAddress().Hex())

	for i := 0; i < 2; i++ {
		require.NoError(t, burns.Notify(ctx, burn))
		require.NoError(t, transfers.Notify(ctx, transfer))
	}
	assert.Len(t, transferer.calls, 1)
	assert.Len(t, minter.calls, 1)

	s, ok, err := st.GetSettlement(ctx, agreement.ChainEthereum, burn.SourceTxID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.SettlementRedeem, s.Kind)
	assert.Equal(t, burn.Recipient.Hex(), s.Recipient)
	assert.Equal(t, burn.Amount, s.Amount)

	s, ok, err = st.GetSettlement(ctx, agreement.ChainNineChronicles, transfer.TxId)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.SettlementMint, s.Kind)
}

func TestPendingRedeemWithStateDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := state.Open(path)
	require.NoError(t, err)
	ctx := context.Background()

	transferer := &fakeTransferer{next: 9, err: errors.New("headless unreachable")}
	burn := ethsync.RandBurnEvent(10, big.NewInt(2e18))
	require.Error(t, NewBurnObserver(transferer, st, notifier.LogNotifier{}).Notify(ctx, burn))

	nonce, ok, err := st.MaxPendingNonce(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), nonce)
	require.NoError(t, st.Close())

	// a restart picks the held nonce back up
	st, err = state.Open(path)
	require.NoError(t, err)
	defer st.Close()

	transferer.err = nil
	require.NoError(t, NewBurnObserver(transferer, st, notifier.LogNotifier{}).Notify(ctx, burn))
	require.Len(t, transferer.calls, 2)
	assert.Equal(t, int64(9), transferer.calls[1].nonce)
	assert.Equal(t, []int64{9}, transferer.reserved)

	s, ok, err := st.GetSettlement(ctx, agreement.ChainEthereum, burn.SourceTxID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state.SettlementRedeem, s.Kind)
	assert.Nil(t, s.Nonce)

	_, ok, err = st.MaxPendingNonce(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
