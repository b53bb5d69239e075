package ethsync

import (
	"math/big"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/common"
)

func RandBurnEvent(height uint64, amount *big.Int) *agreement.BurnEvent {
	return &agreement.BurnEvent{
		BlockNumber: height,
		BlockHash:   common.RandBytes32(),
		TxHash:      common.RandBytes32(),
		Sender:      common.RandEthAddress(),
		Recipient:   common.RandEthAddress(),
		Amount:      new(big.Int).Set(amount),
	}
}
