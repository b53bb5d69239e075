package etherman

import "github.com/ethereum/go-ethereum/common"

type Config struct {
	// URL is the URL of the Ethereum node
	URL string

	// WNCGContractAddress is the deployed wNCG token address
	WNCGContractAddress common.Address
}
