package ncgman

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const DefaultRequestTimeout = 30 * time.Second

type Config struct {
	// GraphQLEndpoint is the headless GraphQL API, e.g. http://localhost:23061/graphql
	GraphQLEndpoint string

	// HTTPRootEndpoint is the headless HTTP root API, e.g. http://localhost:23061
	HTTPRootEndpoint string

	// BridgeAddress is the custody address of the bridge on nine chronicles
	BridgeAddress common.Address

	RequestTimeout time.Duration
}
