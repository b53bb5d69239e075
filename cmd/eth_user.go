package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"

	"github.com/TEENet-io/ncg-bridge/etherman"
)

// EthUser's configuration
type EthUserConfig struct {
	EthRpcUrl           string // json rpc url
	EthPrivateKey       string // private key of the user controlled account
	WNCGContractAddress string // address of the wNCG contract
}

// EthUser is a wNCG holder on the ethereum side.
type EthUser struct {
	MyEtherman *etherman.Etherman // Call the smart contract methods over rpc.
	ChainId    *big.Int           // chain id of the ethereum network (gained upon rpc connection)
	Account    *bind.TransactOpts // user account signing burn() transactions
}

// Create a new EthUser object.
func NewEthUser(ctx context.Context, euc *EthUserConfig) (*EthUser, error) {
	if !common.IsHexAddress(euc.WNCGContractAddress) {
		return nil, fmt.Errorf("invalid wNCG contract address: %s", euc.WNCGContractAddress)
	}

	myEtherman, err := etherman.NewEtherman(&etherman.Config{
		URL:                 euc.EthRpcUrl,
		WNCGContractAddress: common.HexToAddress(euc.WNCGContractAddress),
	})
	if err != nil {
		return nil, err
	}

	// Check Chain ID from rpc!
	chainId, err := myEtherman.Client().ChainID(ctx)
	if err != nil {
		return nil, err
	}

	sk, err := etherman.StringToPrivateKey(euc.EthPrivateKey)
	if err != nil {
		return nil, err
	}

	return &EthUser{
		MyEtherman: myEtherman,
		ChainId:    chainId,
		Account:    etherman.NewAuth(sk, chainId),
	}, nil
}

// Fetch the user's address.
func (eu *EthUser) GetAddress() string {
	return eu.Account.From.Hex()
}

// Fetch the wNCG balance of the user's account.
func (eu *EthUser) GetWNCGBalance(ctx context.Context) (*big.Int, error) {
	return eu.MyEtherman.WNCGBalanceOf(ctx, eu.Account.From)
}

// Burn burns amount (wNCG base units) and waits for the tx to be mined.
// The bridge pays the NCG to ncgReceiver once the burn is confirmed.
func (eu *EthUser) Burn(ctx context.Context, amount *big.Int, ncgReceiver common.Address) (common.Hash, error) {
	// Safe guard
	balance, err := eu.GetWNCGBalance(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if balance.Cmp(amount) < 0 {
		return common.Hash{}, fmt.Errorf("not enough wNCG balance: have %s, need %s", balance.String(), amount.String())
	}

	auth := *eu.Account
	auth.Context = ctx
	tx, err := eu.MyEtherman.Burn(&auth, ncgReceiver, amount)
	if err != nil {
		return common.Hash{}, err
	}
	logger.WithField("tx", tx.Hash().Hex()).Info("burn sent, waiting to be mined")

	receipt, err := bind.WaitMined(ctx, eu.MyEtherman.Client(), tx)
	if err != nil {
		return common.Hash{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, etherman.ErrTxReverted(tx.Hash())
	}
	return tx.Hash(), nil
}
