package cmd

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/ncg-bridge/agreement"
	"github.com/TEENet-io/ncg-bridge/common"
	"github.com/TEENet-io/ncg-bridge/notifier"
	"github.com/TEENet-io/ncg-bridge/state"
)

func validConfig(t *testing.T) *BridgeServerConfig {
	return &BridgeServerConfig{
		EthRpcUrl:           "http://127.0.0.1:8545",
		EthPrivateKey:       "b6b15c8cb491557369f3c7d2c287b053eb229daa9c22138887752191c9520659",
		EthChainID:          1337,
		WNCGContractAddress: common.RandEthAddress().Hex(),
		EthConfirmations:    DefaultEthConfirmations,
		GraphQLEndpoint:     "http://127.0.0.1:23061/graphql",
		NcgBridgeAddress:    common.RandEthAddress().Hex(),
		NcgConfirmations:    DefaultNcgConfirmations,
		DbFilePath:          filepath.Join(t.TempDir(), "state.db"),
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig(t).validate())

	tests := []struct {
		name   string
		modify func(*BridgeServerConfig)
	}{
		{"no rpc", func(c *BridgeServerConfig) { c.EthRpcUrl = "" }},
		{"no eth key", func(c *BridgeServerConfig) { c.EthPrivateKey = "" }},
		{"bad wncg", func(c *BridgeServerConfig) { c.WNCGContractAddress = "0x1234" }},
		{"no graphql", func(c *BridgeServerConfig) { c.GraphQLEndpoint = "" }},
		{"bad bridge", func(c *BridgeServerConfig) { c.NcgBridgeAddress = "" }},
		{"no db", func(c *BridgeServerConfig) { c.DbFilePath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bsc := validConfig(t)
			tt.modify(bsc)
			assert.Error(t, bsc.validate())
		})
	}
}

func TestNewBridgeServerRejectsInvalidConfig(t *testing.T) {
	bsc := validConfig(t)
	bsc.EthRpcUrl = ""
	_, err := NewBridgeServer(context.Background(), bsc)
	assert.Error(t, err)
}

func TestMintEnabled(t *testing.T) {
	tests := []struct {
		debug   bool
		chainID int64
		want    bool
	}{
		{false, 1, false},
		{true, 1, false},
		{false, 11155111, false},
		{true, 11155111, true},
	}
	for _, tt := range tests {
		bsc := &BridgeServerConfig{Debug: tt.debug, EthChainID: tt.chainID}
		assert.Equal(t, tt.want, bsc.MintEnabled(), "debug=%v chainID=%d", tt.debug, tt.chainID)
	}
}

func TestMonitorConfig(t *testing.T) {
	bsc := &BridgeServerConfig{
		PollInterval:     3 * time.Second,
		ErrorBackoffBase: 2 * time.Second,
		ErrorBackoffMax:  30 * time.Second,
		MaxBatchSize:     100,
	}

	cfg := bsc.monitorConfig(agreement.ChainNineChronicles, 50, 1234)
	assert.Equal(t, agreement.ChainNineChronicles, cfg.Identity)
	assert.Equal(t, uint64(50), cfg.Confirmations)
	assert.Equal(t, uint64(1234), cfg.StartHeight)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.ErrorBackoffBase)
	assert.Equal(t, 30*time.Second, cfg.ErrorBackoffMax)
	assert.Equal(t, uint64(100), cfg.MaxBatchSize)
}

type idleSource[E agreement.Event] struct{}

func (idleSource[E]) GetTipIndex(ctx context.Context) (uint64, error) { return 0, nil }

func (idleSource[E]) GetEvents(ctx context.Context, from, to uint64) ([]E, error) { return nil, nil }

type idleTransferer struct{}

func (idleTransferer) ReserveNonce(ctx context.Context) (int64, error) { return 0, nil }

func (idleTransferer) ReleaseNonce(nonce int64) {}

func (idleTransferer) Transfer(ctx context.Context, recipient ethcommon.Address, amount *big.Int, nonce int64, memo string) (string, error) {
	return "", nil
}

type idleMinter struct{}

func (idleMinter) SendMint(ctx context.Context, recipient ethcommon.Address, amount *big.Int) (ethcommon.Hash, error) {
	return ethcommon.Hash{}, nil
}

func (idleMinter) WaitMint(ctx context.Context, hash ethcommon.Hash) error { return nil }

func TestNewMonitorsGatesMinting(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		chainID     int64
		ncgObserver int
	}{
		{"mainnet", true, EthMainnetChainID, 0},
		{"testnet without debug", false, 11155111, 0},
		{"testnet with debug", true, 11155111, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bsc := validConfig(t)
			bsc.Debug = tt.debug
			bsc.EthChainID = tt.chainID
			bsc.EthStartBlock = 100
			bsc.NcgStartIndex = 200

			st, err := state.Open(bsc.DbFilePath)
			require.NoError(t, err)
			defer st.Close()

			ethMonitor, ncgMonitor, err := newMonitors(context.Background(), bsc, &monitorDeps{
				burnSource:     idleSource[*agreement.BurnEvent]{},
				transferSource: idleSource[*agreement.TransferEvent]{},
				store:          st,
				transferer:     idleTransferer{},
				minter:         idleMinter{},
				notifier:       notifier.LogNotifier{},
			})
			require.NoError(t, err)

			assert.Equal(t, 1, ethMonitor.Observers())
			assert.Equal(t, tt.ncgObserver, ncgMonitor.Observers())
			assert.Equal(t, uint64(100), ethMonitor.Cursor())
			assert.Equal(t, uint64(200), ncgMonitor.Cursor())
		})
	}
}
