package main

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	"github.com/TEENet-io/ncg-bridge/cmd"
	"github.com/TEENet-io/ncg-bridge/logconfig"
)

const (
	appName = "ncg-bridge"

	ENV_CONFIG_FILE_PATH = "BRIDGE_CONFIG"
)

var configFileFlag = cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Configuration file, overrides " + ENV_CONFIG_FILE_PATH,
}

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "NCG <-> wNCG bridge server"
	app.Flags = []cli.Flag{&configFileFlag}
	app.Action = run
	app.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "Run the bridge server",
			Flags:  []cli.Flag{&configFileFlag},
			Action: run,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Tool to read environment variables
	viper.AutomaticEnv()
	setDefaults()

	// Flag first, then the environment variable of configuration file location.
	_config_file := c.String(configFileFlag.Name)
	if _config_file == "" {
		_config_file = viper.GetString(ENV_CONFIG_FILE_PATH)
	}
	if _config_file != "" {
		if !cmd.FileExists(_config_file) {
			return fmt.Errorf("bridge server configuration file not found: %s", _config_file)
		}
		if err := initializeViper(_config_file); err != nil {
			return err
		}
	}

	if err := logconfig.ConfigLogger(viper.GetBool("DEBUG"), viper.GetString("LOG_LEVEL")); err != nil {
		return err
	}
	flush, err := logconfig.ConfigSentry(viper.GetString("SENTRY_DSN"), viper.GetString("SENTRY_ENVIRONMENT"))
	if err != nil {
		return err
	}
	defer flush()

	// Make the configuration
	bsc := PrepareBridgeServerConfig()
	logger.WithField("config", _config_file).Info("Starting bridge server... press Ctrl+C to kill the server")

	// Start server and block.
	// Errors are returned rather than fatal so flush still runs.
	return cmd.StartBridgeServerAndWait(bsc)
}

func initializeViper(filePath string) error {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("ETH_CONFIRMATIONS", cmd.DefaultEthConfirmations)
	viper.SetDefault("NCG_CONFIRMATIONS", cmd.DefaultNcgConfirmations)
	viper.SetDefault("MONITOR_STATE_STORE_PATH", "monitor_state.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_IP", "0.0.0.0")
	viper.SetDefault("HTTP_PORT", "8080")
}

// PrepareBridgeServerConfig reads configuration variables and returns a BridgeServerConfig.
func PrepareBridgeServerConfig() *cmd.BridgeServerConfig {
	return &cmd.BridgeServerConfig{
		// ethereum side
		EthRpcUrl:           viper.GetString("ETH_RPC_URL"),
		EthPrivateKey:       viper.GetString("ETH_PRIVATE_KEY"),
		EthChainID:          viper.GetInt64("ETH_CHAIN_ID"),
		WNCGContractAddress: viper.GetString("WNCG_CONTRACT_ADDRESS"),
		EthConfirmations:    viper.GetUint64("ETH_CONFIRMATIONS"),
		EthStartBlock:       viper.GetUint64("ETH_START_BLOCK"),
		// nine chronicles side
		GraphQLEndpoint:  viper.GetString("GRAPHQL_API_ENDPOINT"),
		HttpRootEndpoint: viper.GetString("HTTP_ROOT_API_ENDPOINT"),
		NcgBridgeAddress: viper.GetString("BRIDGE_9C_ADDRESS"),
		NcgPrivateKey:    viper.GetString("BRIDGE_9C_PRIVATE_KEY"),
		NcgConfirmations: viper.GetUint64("NCG_CONFIRMATIONS"),
		NcgStartIndex:    viper.GetUint64("NCG_START_INDEX"),
		// state side
		DbFilePath: viper.GetString("MONITOR_STATE_STORE_PATH"),
		// notifications
		SlackToken:   viper.GetString("SLACK_WEB_TOKEN"),
		SlackChannel: viper.GetString("SLACK_CHANNEL"),
		// monitor tuning
		PollInterval:     viper.GetDuration("POLL_INTERVAL"),
		ErrorBackoffBase: viper.GetDuration("ERROR_BACKOFF_BASE"),
		ErrorBackoffMax:  viper.GetDuration("ERROR_BACKOFF_MAX"),
		MaxBatchSize:     viper.GetUint64("MAX_BATCH_SIZE"),
		Debug:            viper.GetBool("DEBUG"),
		// Http side
		HttpIp:   viper.GetString("HTTP_IP"),
		HttpPort: viper.GetString("HTTP_PORT"),
	}
}
