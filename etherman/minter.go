package etherman

import (
	"context"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"
)

const (
	DefaultReceiptTimeout = 2 * time.Minute
	receiptPollInterval   = time.Second
)

// Minter mints wNCG with the bridge signing identity.
type Minter struct {
	etherman *Etherman
	signer   *Signer

	receiptTimeout time.Duration
	pollInterval   time.Duration
}

func NewMinter(etherman *Etherman, signer *Signer) (*Minter, error) {
	if _, err := SigningIdentity(signer); err != nil {
		return nil, err
	}
	return &Minter{
		etherman:       etherman,
		signer:         signer,
		receiptTimeout: DefaultReceiptTimeout,
		pollInterval:   receiptPollInterval,
	}, nil
}

func (m *Minter) SendMint(ctx context.Context, recipient ethcommon.Address, amount *big.Int) (ethcommon.Hash, error) {
	auth, err := m.signer.TransactOpts(ctx)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	tx, err := m.etherman.Mint(auth, recipient, amount)
	if err != nil {
		return ethcommon.Hash{}, err
	}

	logger.WithFields(logger.Fields{
		"tx":        tx.Hash().Hex(),
		"recipient": recipient.Hex(),
		"amount":    amount.String(),
	}).Info("mint tx sent")

	return tx.Hash(), nil
}

// WaitMint waits for the receipt of a sent mint. The wait is bounded by the
// receipt timeout and keeps going after ctx is cancelled, so a mint already
// on the wire at shutdown is still seen through.
func (m *Minter) WaitMint(ctx context.Context, hash ethcommon.Hash) error {
	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.receiptTimeout)
	defer cancel()

	receipt, err := m.etherman.WaitReceipt(waitCtx, hash, m.pollInterval)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return ErrTxReverted(hash)
	}

	logger.WithFields(logger.Fields{
		"tx":    hash.Hex(),
		"block": receipt.BlockNumber,
	}).Info("mint tx mined")

	return nil
}
