package ncgman

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TEENet-io/ncg-bridge/agreement"
	bridgecommon "github.com/TEENet-io/ncg-bridge/common"
)

// HeadlessTransfer is the subset of Headless used to send NCG.
type HeadlessTransfer interface {
	GetNextTxNonce(ctx context.Context, address common.Address) (int64, error)
	Transfer(ctx context.Context, recipient common.Address, amount string, txNonce int64, memo string) (string, error)
}

// Transferer sends NCG out of the bridge custody address.
type Transferer struct {
	headless HeadlessTransfer
	address  common.Address

	mu sync.Mutex
	// lowest nonce not handed out yet, -1 until the first reservation
	next int64
}

func NewTransferer(headless HeadlessTransfer, bridgeAddress common.Address) *Transferer {
	return &Transferer{headless: headless, address: bridgeAddress, next: -1}
}

// Seed makes later reservations start at next or above.
// Used at startup so nonces held by pending settlements are not handed out twice.
func (t *Transferer) Seed(next int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if next > t.next {
		t.next = next
	}
}

// ReserveNonce hands out the next tx nonce of the custody address.
// Reserved nonces are never handed out again unless released.
func (t *Transferer) ReserveNonce(ctx context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nonce, err := t.headless.GetNextTxNonce(ctx, t.address)
	if err != nil {
		return 0, err
	}
	if t.next > nonce {
		nonce = t.next
	}
	t.next = nonce + 1
	return nonce, nil
}

// ReleaseNonce gives back an unused nonce. Only the latest reservation can be
// taken back, older ones stay handed out.
func (t *Transferer) ReleaseNonce(nonce int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.next == nonce+1 {
		t.next = nonce
	}
}

// Transfer stages a transfer of amount (wNCG base units) truncated to 0.01 NCG
// with the given nonce. It fails with agreement.ErrAmountTooSmall when nothing
// is left after truncation.
func (t *Transferer) Transfer(ctx context.Context, recipient common.Address, amount *big.Int, nonce int64, memo string) (string, error) {
	if bridgecommon.IsNCGDust(amount) {
		return "", agreement.ErrAmountTooSmall
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.headless.Transfer(ctx, recipient, bridgecommon.FormatNCGAmount(amount), nonce, memo)
}
