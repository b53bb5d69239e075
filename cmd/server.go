// Server = ethereum monitor + nine chronicles monitor + observers + db/state + http reporter.
// All components are configured via envionment variables (strings!).

package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/chainsync"
	"github.com/TEENet-io/ncg-bridge/etherman"
	"github.com/TEENet-io/ncg-bridge/ethsync"
	"github.com/TEENet-io/ncg-bridge/ncgman"
	"github.com/TEENet-io/ncg-bridge/ncgsync"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/observer"
	"github.com/TEENet-io/ncg-bridge/reporter"
	"github.com/TEENet-io/ncg-bridge/state"
)

// Default params for server.
// More often we don't recommend users to tweak those.
// So we list them here.
const (
	DefaultEthConfirmations = 10
	DefaultNcgConfirmations = 50

	EthMainnetChainID = 1

	startupTimeout = 30 * time.Second
)

// Keep the configuration's fields as "text" as possible.
// Its easier to load it from env vars or a config file.
type BridgeServerConfig struct {
	// ethereum side
	EthRpcUrl           string // json rpc url
	EthPrivateKey       string // hex key of the single minting identity
	EthChainID          int64  // expected chain id, checked against the rpc
	WNCGContractAddress string
	EthConfirmations    uint64
	EthStartBlock       uint64 // used only if no cursor is stored

	// nine chronicles side
	GraphQLEndpoint  string
	HttpRootEndpoint string
	NcgBridgeAddress string // custody address
	NcgPrivateKey    string // uploaded to the headless at start if set
	NcgConfirmations uint64
	NcgStartIndex    uint64 // used only if no cursor is stored

	// state side
	DbFilePath string

	// notifications
	SlackToken   string
	SlackChannel string

	// monitor tuning, zero values fall back to chainsync defaults
	PollInterval     time.Duration
	ErrorBackoffBase time.Duration
	ErrorBackoffMax  time.Duration
	MaxBatchSize     uint64

	// Debug also enables the transfer->mint path on non-mainnet chains
	Debug bool

	// Http side
	HttpIp   string // eg. 0.0.0.0
	HttpPort string // eg. 8080
}

func (bsc *BridgeServerConfig) validate() error {
	switch {
	case bsc.EthRpcUrl == "":
		return errors.New("missing ethereum rpc url")
	case bsc.EthPrivateKey == "":
		return errors.New("missing ethereum private key")
	case !common.IsHexAddress(bsc.WNCGContractAddress):
		return errors.New("invalid wNCG contract address")
	case bsc.GraphQLEndpoint == "":
		return errors.New("missing graphql endpoint")
	case !common.IsHexAddress(bsc.NcgBridgeAddress):
		return errors.New("invalid nine chronicles bridge address")
	case bsc.DbFilePath == "":
		return errors.New("missing monitor state store path")
	}
	return nil
}

// MintEnabled reports whether the transfer observer may mint on the configured chain.
func (bsc *BridgeServerConfig) MintEnabled() bool {
	return bsc.Debug && bsc.EthChainID != EthMainnetChainID
}

func (bsc *BridgeServerConfig) monitorConfig(identity string, confirmations, start uint64) chainsync.Config {
	return chainsync.Config{
		Identity:         identity,
		Confirmations:    confirmations,
		StartHeight:      start,
		PollInterval:     bsc.PollInterval,
		ErrorBackoffBase: bsc.ErrorBackoffBase,
		ErrorBackoffMax:  bsc.ErrorBackoffMax,
		MaxBatchSize:     bsc.MaxBatchSize,
	}
}

// BridgeServer holds the objects that consists of the bridge server.
type BridgeServer struct {
	MyStateDb    *state.StateDB
	MyEtherman   *etherman.Etherman
	MyMinter     *etherman.Minter
	MyHeadless   *ncgman.Headless
	MyTransferer *ncgman.Transferer

	EthMonitor *chainsync.Monitor[*agreement.BurnEvent]
	NcgMonitor *chainsync.Monitor[*agreement.TransferEvent]

	Reporter *reporter.HttpReporter
}

// NewBridgeServer creates a new bridge server.
// Nothing is started until Run is called.
func NewBridgeServer(ctx context.Context, bsc *BridgeServerConfig) (*BridgeServer, error) {
	if err := bsc.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// 1) state: monitor cursors + settlement ledger
	myStateDb, err := state.Open(bsc.DbFilePath)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			_ = myStateDb.Close()
		}
	}()

	// 2) ethereum side
	wncgAddress := common.HexToAddress(bsc.WNCGContractAddress)
	myEtherman, err := etherman.NewEtherman(&etherman.Config{
		URL:                 bsc.EthRpcUrl,
		WNCGContractAddress: wncgAddress,
	})
	if err != nil {
		return nil, err
	}
	chainID := big.NewInt(bsc.EthChainID)
	if err := myEtherman.CheckChainID(ctx, chainID); err != nil {
		return nil, err
	}
	logger.WithField("address", wncgAddress.Hex()).Info("wNCG contract address")

	signer, err := etherman.NewSigner(bsc.EthPrivateKey, chainID)
	if err != nil {
		return nil, err
	}
	myMinter, err := etherman.NewMinter(myEtherman, signer)
	if err != nil {
		return nil, err
	}

	// 3) nine chronicles side
	bridgeAddress := common.HexToAddress(bsc.NcgBridgeAddress)
	myHeadless, err := ncgman.NewHeadless(&ncgman.Config{
		GraphQLEndpoint:  bsc.GraphQLEndpoint,
		HTTPRootEndpoint: bsc.HttpRootEndpoint,
		BridgeAddress:    bridgeAddress,
	})
	if err != nil {
		return nil, err
	}
	if bsc.NcgPrivateKey != "" {
		if err := myHeadless.SetPrivateKey(ctx, bsc.NcgPrivateKey); err != nil {
			return nil, err
		}
		logger.Info("private key uploaded to headless")
	}
	myTransferer := ncgman.NewTransferer(myHeadless, bridgeAddress)
	// nonces held by unfinished settlements stay reserved
	if nonce, ok, err := myStateDb.MaxPendingNonce(ctx); err != nil {
		return nil, err
	} else if ok {
		myTransferer.Seed(nonce + 1)
		logger.WithField("nonce", nonce).Info("pending nine chronicles settlements found")
	}

	// 4) notifications
	var n notifier.Notifier = notifier.LogNotifier{}
	if bsc.SlackToken != "" {
		n = notifier.NewSlackNotifier(&notifier.SlackConfig{
			Token:   bsc.SlackToken,
			Channel: bsc.SlackChannel,
		})
	}

	// 5) monitors, each with its observers
	ethMonitor, ncgMonitor, err := newMonitors(ctx, bsc, &monitorDeps{
		burnSource:     ethsync.NewBurnEventSource(myEtherman, &ethsync.Config{}),
		transferSource: ncgsync.NewTransferEventSource(myHeadless, bridgeAddress),
		store:          myStateDb,
		transferer:     myTransferer,
		minter:         myMinter,
		notifier:       n,
	})
	if err != nil {
		return nil, err
	}

	// 6) http reporter
	httpReporter := reporter.NewHttpReporter(bsc.HttpIp, bsc.HttpPort, myStateDb, ethMonitor, ncgMonitor)

	ok = true
	return &BridgeServer{
		MyStateDb:    myStateDb,
		MyEtherman:   myEtherman,
		MyMinter:     myMinter,
		MyHeadless:   myHeadless,
		MyTransferer: myTransferer,
		EthMonitor:   ethMonitor,
		NcgMonitor:   ncgMonitor,
		Reporter:     httpReporter,
	}, nil
}

// monitorDeps is what the monitors and their observers are built from.
type monitorDeps struct {
	burnSource     chainsync.EventSource[*agreement.BurnEvent]
	transferSource chainsync.EventSource[*agreement.TransferEvent]
	store          *state.StateDB
	transferer     agreement.Transferer
	minter         agreement.Minter
	notifier       notifier.Notifier
}

// newMonitors builds both monitors. The transfer observer is attached only
// when minting is enabled.
func newMonitors(ctx context.Context, bsc *BridgeServerConfig, deps *monitorDeps) (
	*chainsync.Monitor[*agreement.BurnEvent], *chainsync.Monitor[*agreement.TransferEvent], error) {
	ethMonitor, err := chainsync.NewMonitor[*agreement.BurnEvent](
		ctx,
		bsc.monitorConfig(agreement.ChainEthereum, bsc.EthConfirmations, bsc.EthStartBlock),
		deps.burnSource,
		deps.store,
		observer.NewBurnObserver(deps.transferer, deps.store, deps.notifier),
	)
	if err != nil {
		return nil, nil, err
	}

	ncgMonitor, err := chainsync.NewMonitor[*agreement.TransferEvent](
		ctx,
		bsc.monitorConfig(agreement.ChainNineChronicles, bsc.NcgConfirmations, bsc.NcgStartIndex),
		deps.transferSource,
		deps.store,
	)
	if err != nil {
		return nil, nil, err
	}

	if !bsc.MintEnabled() {
		logger.WithFields(logger.Fields{
			"debug":   bsc.Debug,
			"chainID": bsc.EthChainID,
		}).Warn("transfer observer disabled, nine chronicles transfers will not be minted")
		return ethMonitor, ncgMonitor, nil
	}

	if err := ncgMonitor.Attach(observer.NewTransferObserver(deps.transferer, deps.minter, deps.store, deps.notifier)); err != nil {
		return nil, nil, err
	}
	return ethMonitor, ncgMonitor, nil
}

// Run blocks until ctx is cancelled or a component stops on its own.
// The state db is closed before returning.
func (bs *BridgeServer) Run(ctx context.Context) error {
	defer bs.MyStateDb.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bs.EthMonitor.Run(ctx)
	})
	g.Go(func() error {
		return bs.NcgMonitor.Run(ctx)
	})
	g.Go(func() error {
		return bs.Reporter.Run(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Create, then start the bridge server and wait.
// Press Ctrl-C to kill the server.
func StartBridgeServerAndWait(bsc *BridgeServerConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bs, err := NewBridgeServer(ctx, bsc)
	if err != nil {
		logger.WithError(err).Error("failed to create bridge server")
		return fmt.Errorf("failed to create bridge server: %w", err)
	}

	logger.WithFields(logger.Fields{
		"ethCursor": bs.EthMonitor.Cursor(),
		"ncgCursor": bs.NcgMonitor.Cursor(),
		"mint":      bsc.MintEnabled(),
	}).Info("bridge server started")

	if err := bs.Run(ctx); err != nil {
		logger.WithError(err).Error("bridge server stopped")
		return err
	}
	logger.Info("bridge server stopped")
	return nil
}
