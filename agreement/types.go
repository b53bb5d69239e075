// Golbal Agreement on types

package agreement

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Monitor identities, also used as the source chain of settlements.
const (
	ChainEthereum       = "ethereum"
	ChainNineChronicles = "nineChronicles"
)

// Event is a finalized on-chain occurrence relevant to the bridge.
// Events are synthesized from chain data on every poll and never mutated.
type Event interface {
	// Height is the block number (ethereum) or block index (nine chronicles)
	// that contains the event.
	Height() uint64

	// SourceTxID uniquely identifies the occurrence on its source chain.
	SourceTxID() string
}

// BurnEvent represents wNCG burned on the ethereum side,
// redeemable as NCG on nine chronicles.
type BurnEvent struct {
	BlockNumber uint64
	BlockHash   common.Hash
	TxHash      common.Hash
	LogIndex    uint
	Sender      common.Address // ethereum account that burned
	Recipient   common.Address // nine chronicles address taken from the bytes32 "_to"
	Amount      *big.Int       // wNCG base units (18 decimals)
}

func (ev *BurnEvent) Height() uint64 {
	return ev.BlockNumber
}

// A single tx may burn more than once, so the log index is part of the id.
func (ev *BurnEvent) SourceTxID() string {
	return fmt.Sprintf("%s:%d", ev.TxHash.Hex(), ev.LogIndex)
}

func (ev *BurnEvent) String() string {
	return fmt.Sprintf("%+v", *ev)
}

// TransferEvent represents NCG sent to the bridge custody address
// on nine chronicles, mintable as wNCG on ethereum.
type TransferEvent struct {
	BlockIndex uint64
	BlockHash  string
	TxId       string
	Sender     common.Address // nine chronicles sender
	Recipient  common.Address // bridge custody address
	Amount     *big.Int       // converted into wNCG base units (18 decimals)
	RawAmount  string         // NCG amount as reported by the chain
	Memo       string         // expected to carry the ethereum receiver
}

func (ev *TransferEvent) Height() uint64 {
	return ev.BlockIndex
}

func (ev *TransferEvent) SourceTxID() string {
	return ev.TxId
}

// Destination parses the memo as the ethereum receiver.
func (ev *TransferEvent) Destination() (common.Address, bool) {
	memo := strings.TrimSpace(ev.Memo)
	if !common.IsHexAddress(memo) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(memo)
	if addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

func (ev *TransferEvent) String() string {
	return fmt.Sprintf("%+v", *ev)
}
