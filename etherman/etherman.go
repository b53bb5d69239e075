package etherman

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/common"
	"github.com/TEENet-io/ncg-bridge/contracts/wncg"
)

var (
	// Events
	BurnSignatureHash = crypto.Keccak256Hash([]byte("Burn(address,bytes32,uint256)"))
)

// EthClient is the part of ethclient.Client the bridge relies on.
type EthClient interface {
	ethereum.BlockNumberReader
	ethereum.ChainIDReader
	ethereum.LogFilterer

	bind.ContractBackend
	bind.DeployBackend
}

type Etherman struct {
	ethClient    EthClient
	wncgAddress  ethcommon.Address
	wncgContract *wncg.WNCG
}

func NewEtherman(cfg *Config) (*Etherman, error) {
	ethClient, err := ethclient.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	return NewEthermanWithClient(ethClient, cfg.WNCGContractAddress)
}

func NewEthermanWithClient(client EthClient, wncgAddress ethcommon.Address) (*Etherman, error) {
	contract, err := wncg.NewWNCG(wncgAddress, client)
	if err != nil {
		return nil, err
	}

	return &Etherman{
		ethClient:    client,
		wncgAddress:  wncgAddress,
		wncgContract: contract,
	}, nil
}

func (etherman *Etherman) Client() EthClient {
	return etherman.ethClient
}

func (etherman *Etherman) WNCGAddress() ethcommon.Address {
	return etherman.wncgAddress
}

// CheckChainID fails when the node serves another network than expected.
func (etherman *Etherman) CheckChainID(ctx context.Context, expected *big.Int) error {
	actual, err := etherman.ethClient.ChainID(ctx)
	if err != nil {
		return err
	}
	if actual.Cmp(expected) != 0 {
		return ErrChainIDUnmatched(expected, actual)
	}
	return nil
}

func (etherman *Etherman) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return etherman.ethClient.BlockNumber(ctx)
}

// GetBurnEvents returns the wNCG burns within [from, to],
// ordered by (block number, log index).
func (etherman *Etherman) GetBurnEvents(ctx context.Context, from, to uint64) ([]*agreement.BurnEvent, error) {
	if from > to {
		return nil, fmt.Errorf("%w: from=%d, to=%d", ErrInvalidBlockRange, from, to)
	}

	logs, err := etherman.ethClient.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []ethcommon.Address{etherman.wncgAddress},
		Topics:    [][]ethcommon.Hash{{BurnSignatureHash}},
	})
	if err != nil {
		return nil, err
	}

	if len(logs) == 0 {
		return nil, nil
	}

	events := make([]*agreement.BurnEvent, 0, len(logs))
	for _, vlog := range logs {
		if vlog.Removed {
			return nil, fmt.Errorf("%w: tx=%s, index=%d", ErrRemovedLog, vlog.TxHash.Hex(), vlog.Index)
		}
		if len(vlog.Topics) == 0 || vlog.Topics[0] != BurnSignatureHash {
			return nil, fmt.Errorf("%w: tx=%s, index=%d", ErrUnknownLog, vlog.TxHash.Hex(), vlog.Index)
		}

		ev, err := etherman.wncgContract.ParseBurn(vlog)
		if err != nil {
			return nil, err
		}

		events = append(events, &agreement.BurnEvent{
			BlockNumber: vlog.BlockNumber,
			BlockHash:   vlog.BlockHash,
			TxHash:      vlog.TxHash,
			LogIndex:    vlog.Index,
			Sender:      ev.Sender,
			Recipient:   common.NineChroniclesAddressFromBytes32(ev.To),
			Amount:      ev.Amount,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}
		return events[i].LogIndex < events[j].LogIndex
	})

	logger.WithFields(logger.Fields{
		"from":  from,
		"to":    to,
		"burns": len(events),
	}).Debug("burn events fetched")

	return events, nil
}

func (etherman *Etherman) Mint(auth *bind.TransactOpts, receiver ethcommon.Address, amount *big.Int) (*types.Transaction, error) {
	return etherman.wncgContract.Mint(auth, receiver, amount)
}

// WaitReceipt polls for the receipt of hash until it shows up or ctx is done.
func (etherman *Etherman) WaitReceipt(ctx context.Context, hash ethcommon.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := etherman.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			logger.WithField("tx", hash.Hex()).WithError(err).Debug("failed to get receipt")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (etherman *Etherman) WNCGBalanceOf(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	return etherman.wncgContract.BalanceOf(&bind.CallOpts{Context: ctx}, addr)
}

// Burn burns wNCG from auth.From, redeemable as NCG by ncgRecipient.
func (etherman *Etherman) Burn(auth *bind.TransactOpts, ncgRecipient ethcommon.Address, amount *big.Int) (*types.Transaction, error) {
	return etherman.wncgContract.Burn(auth, amount, common.NineChroniclesAddressToBytes32(ncgRecipient))
}
