package ncgsync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/TEENet-io/ncg-bridge/agreement"
	bridgecommon "github.com/TEENet-io/ncg-bridge/common"
)

// RandTransferEvent builds a transfer of ncg (a decimal string) to bridge with memo.
func RandTransferEvent(index uint64, bridge common.Address, ncg string, memo string) *agreement.TransferEvent {
	amount, err := bridgecommon.ParseNCGAmount(ncg)
	if err != nil {
		amount = big.NewInt(0)
	}
	return &agreement.TransferEvent{
		BlockIndex: index,
		BlockHash:  fmt.Sprintf("%x", bridgecommon.RandBytes32()),
		TxId:       fmt.Sprintf("%x", bridgecommon.RandBytes32()),
		Sender:     bridgecommon.RandEthAddress(),
		Recipient:  bridge,
		Amount:     amount,
		RawAmount:  ncg,
		Memo:       memo,
	}
}
