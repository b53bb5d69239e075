// Go binding around the wrapped NCG (wNCG) ERC-20 token.
// Only the methods and events the bridge touches are bound.

package wncg

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// WNCGMetaData contains all meta data concerning the WNCG contract.
var WNCGMetaData = &bind.MetaData{
	ABI: "[{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"_sender\",\"type\":\"address\"},{\"indexed\":true,\"internalType\":\"bytes32\",\"name\":\"_to\",\"type\":\"bytes32\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"Burn\",\"type\":\"event\"},{\"anonymous\":false,\"inputs\":[{\"indexed\":true,\"internalType\":\"address\",\"name\":\"from\",\"type\":\"address\"},{\"indexed\":true,\"internalType\":\"address\",\"name\":\"to\",\"type\":\"address\"},{\"indexed\":false,\"internalType\":\"uint256\",\"name\":\"value\",\"type\":\"uint256\"}],\"name\":\"Transfer\",\"type\":\"event\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"account\",\"type\":\"address\"}],\"name\":\"balanceOf\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"},{\"internalType\":\"bytes32\",\"name\":\"to\",\"type\":\"bytes32\"}],\"name\":\"burn\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"decimals\",\"outputs\":[{\"internalType\":\"uint8\",\"name\":\"\",\"type\":\"uint8\"}],\"stateMutability\":\"view\",\"type\":\"function\"},{\"inputs\":[{\"internalType\":\"address\",\"name\":\"account\",\"type\":\"address\"},{\"internalType\":\"uint256\",\"name\":\"amount\",\"type\":\"uint256\"}],\"name\":\"mint\",\"outputs\":[],\"stateMutability\":\"nonpayable\",\"type\":\"function\"},{\"inputs\":[],\"name\":\"totalSupply\",\"outputs\":[{\"internalType\":\"uint256\",\"name\":\"\",\"type\":\"uint256\"}],\"stateMutability\":\"view\",\"type\":\"function\"}]",
}

// WNCGABI is the input ABI used to generate the binding from.
var WNCGABI = WNCGMetaData.ABI

// WNCG is a Go binding around the wNCG token contract.
type WNCG struct {
	WNCGCaller     // Read-only binding to the contract
	WNCGTransactor // Write-only binding to the contract
	WNCGFilterer   // Log filterer for contract events
}

// WNCGCaller is a read-only Go binding around the wNCG token contract.
type WNCGCaller struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// WNCGTransactor is a write-only Go binding around the wNCG token contract.
type WNCGTransactor struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// WNCGFilterer is a log filtering Go binding around the wNCG token contract events.
type WNCGFilterer struct {
	contract *bind.BoundContract // Generic contract wrapper for the low level calls
}

// NewWNCG creates a new instance of WNCG, bound to a specific deployed contract.
func NewWNCG(address common.Address, backend bind.ContractBackend) (*WNCG, error) {
	contract, err := bindWNCG(address, backend, backend, backend)
	if err != nil {
		return nil, err
	}
	return &WNCG{WNCGCaller: WNCGCaller{contract: contract}, WNCGTransactor: WNCGTransactor{contract: contract}, WNCGFilterer: WNCGFilterer{contract: contract}}, nil
}

// bindWNCG binds a generic wrapper to an already deployed contract.
func bindWNCG(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, filterer bind.ContractFilterer) (*bind.BoundContract, error) {
	parsed, err := WNCGMetaData.GetAbi()
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("GetABI returned nil")
	}
	return bind.NewBoundContract(address, *parsed, caller, transactor, filterer), nil
}

// BalanceOf is a free data retrieval call binding the contract method 0x70a08231.
//
// Solidity: function balanceOf(address account) view returns(uint256)
func (_WNCG *WNCGCaller) BalanceOf(opts *bind.CallOpts, account common.Address) (*big.Int, error) {
	var out []interface{}
	err := _WNCG.contract.Call(opts, &out, "balanceOf", account)
	if err != nil {
		return new(big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// Decimals is a free data retrieval call binding the contract method 0x313ce567.
//
// Solidity: function decimals() view returns(uint8)
func (_WNCG *WNCGCaller) Decimals(opts *bind.CallOpts) (uint8, error) {
	var out []interface{}
	err := _WNCG.contract.Call(opts, &out, "decimals")
	if err != nil {
		return *new(uint8), err
	}

	out0 := *abi.ConvertType(out[0], new(uint8)).(*uint8)

	return out0, err
}

// TotalSupply is a free data retrieval call binding the contract method 0x18160ddd.
//
// Solidity: function totalSupply() view returns(uint256)
func (_WNCG *WNCGCaller) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _WNCG.contract.Call(opts, &out, "totalSupply")
	if err != nil {
		return new(big.Int), err
	}

	out0 := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)

	return out0, err
}

// Burn is a paid mutator transaction binding the contract method burn.
//
// Solidity: function burn(uint256 amount, bytes32 to) returns()
func (_WNCG *WNCGTransactor) Burn(opts *bind.TransactOpts, amount *big.Int, to [32]byte) (*types.Transaction, error) {
	return _WNCG.contract.Transact(opts, "burn", amount, to)
}

// Mint is a paid mutator transaction binding the contract method 0x40c10f19.
//
// Solidity: function mint(address account, uint256 amount) returns()
func (_WNCG *WNCGTransactor) Mint(opts *bind.TransactOpts, account common.Address, amount *big.Int) (*types.Transaction, error) {
	return _WNCG.contract.Transact(opts, "mint", account, amount)
}

// WNCGBurn represents a Burn event raised by the WNCG contract.
type WNCGBurn struct {
	Sender common.Address
	To     [32]byte
	Amount *big.Int
	Raw    types.Log // Blockchain specific contextual infos
}

// ParseBurn is a log parse operation binding the contract event.
//
// Solidity: event Burn(address indexed _sender, bytes32 indexed _to, uint256 amount)
func (_WNCG *WNCGFilterer) ParseBurn(log types.Log) (*WNCGBurn, error) {
	event := new(WNCGBurn)
	if err := _WNCG.contract.UnpackLog(event, "Burn", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}
