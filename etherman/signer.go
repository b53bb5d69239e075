package etherman

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountSource lists the accounts a signing backend controls.
type AccountSource interface {
	Accounts() []common.Address
}

// Signer signs ethereum txs with a single in-memory key.
type Signer struct {
	sk      *ecdsa.PrivateKey
	chainID *big.Int
}

func NewSigner(hexKey string, chainID *big.Int) (*Signer, error) {
	sk, err := StringToPrivateKey(hexKey)
	if err != nil {
		return nil, err
	}
	return &Signer{sk: sk, chainID: new(big.Int).Set(chainID)}, nil
}

func (s *Signer) Accounts() []common.Address {
	return []common.Address{crypto.PubkeyToAddress(s.sk.PublicKey)}
}

func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TransactOpts returns a fresh transactor bound to ctx.
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.sk, s.chainID)
	if err != nil {
		return nil, err
	}
	auth.Context = ctx
	return auth, nil
}

// SigningIdentity resolves the one account the bridge mints with.
func SigningIdentity(src AccountSource) (common.Address, error) {
	accounts := src.Accounts()
	if len(accounts) != 1 {
		return common.Address{}, ErrSigningIdentity(len(accounts))
	}
	return accounts[0], nil
}
