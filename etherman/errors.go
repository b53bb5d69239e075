package etherman

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TEENet-io/ncg-bridge/agreement"
)

var (
	ErrInvalidBlockRange = errors.New("invalid block range")
	ErrRemovedLog        = errors.New("log removed by reorg")
	ErrUnknownLog        = errors.New("unknown log")
	ErrInvalidPrivateKey = errors.New("invalid private key")
)

func ErrChainIDUnmatched(expected, actual *big.Int) error {
	msg := fmt.Sprintf("chain ID mismatch: expected=%v, actual=%v", expected, actual)
	return errors.New(msg)
}

// ErrSigningIdentity is returned when the signer does not resolve to exactly one account.
func ErrSigningIdentity(n int) error {
	msg := fmt.Sprintf("signer shall control exactly one account: got=%d", n)
	return errors.New(msg)
}

// ErrTxReverted wraps agreement.ErrTxReverted with the tx hash.
func ErrTxReverted(hash common.Hash) error {
	return fmt.Errorf("%w: hash=%s", agreement.ErrTxReverted, hash.Hex())
}
