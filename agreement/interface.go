package agreement

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transferer moves custodied NCG on nine chronicles.
// Every transfer goes out under an explicit nonce, so a transfer retried
// with the same nonce can land on chain only once.
type Transferer interface {
	// ReserveNonce hands out the next nonce of the custody address.
	// A reserved nonce is either used by Transfer or given back with ReleaseNonce.
	ReserveNonce(ctx context.Context) (int64, error)
	ReleaseNonce(nonce int64)

	// Transfer stages the transfer and returns the nine chronicles tx id.
	// The memo is recorded on chain together with the transfer.
	Transfer(ctx context.Context, recipient common.Address, amount *big.Int, nonce int64, memo string) (string, error)
}

// Minter mints wNCG on ethereum with the single bridge signing identity.
type Minter interface {
	// SendMint broadcasts a mint tx and returns its hash without waiting.
	SendMint(ctx context.Context, recipient common.Address, amount *big.Int) (common.Hash, error)

	// WaitMint blocks until the tx is mined. A mint that failed on chain
	// returns an error wrapping ErrTxReverted.
	WaitMint(ctx context.Context, hash common.Hash) error
}
