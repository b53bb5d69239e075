package etherman

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	logger "github.com/sirupsen/logrus"
)

// StringToPrivateKey parses a hex private key, with or without 0x.
func StringToPrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	sk, err := crypto.HexToECDSA(common.Bytes2Hex(common.FromHex(hexKey)))
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}
	return sk, nil
}

func NewAuth(sk *ecdsa.PrivateKey, chainId *big.Int) *bind.TransactOpts {
	auth, err := bind.NewKeyedTransactorWithChainID(sk, chainId)
	if err != nil {
		logger.WithError(err).Error("failed to create transactor")
		return nil
	}
	return auth
}

func GenPrivateKeys(n int) []*ecdsa.PrivateKey {
	sks := make([]*ecdsa.PrivateKey, 0, n)
	for i := 0; i < n; i++ {
		sk, _ := crypto.GenerateKey()
		sks = append(sks, sk)
	}
	return sks
}
