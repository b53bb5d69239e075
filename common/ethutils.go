package common

import (
	"crypto/rand"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

func RandEthAddress() ethcommon.Address {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return ethcommon.Address{}
	}
	return ethcommon.BytesToAddress(b[:])
}

// NineChroniclesAddressFromBytes32 takes the leading 20 bytes of a bytes32
// "_to" argument of wNCG burn() as the nine chronicles address.
func NineChroniclesAddressFromBytes32(to [32]byte) ethcommon.Address {
	return ethcommon.BytesToAddress(to[:ethcommon.AddressLength])
}

// NineChroniclesAddressToBytes32 is the inverse of NineChroniclesAddressFromBytes32.
func NineChroniclesAddressToBytes32(addr ethcommon.Address) [32]byte {
	var to [32]byte
	copy(to[:], addr.Bytes())
	return to
}
