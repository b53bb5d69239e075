package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/TEENet-io/ncg-bridge/cmd"
	bridgecommon "github.com/TEENet-io/ncg-bridge/common"
)

const (
	ENV_CONFIG_FILE_PATH = "ETH_USER_CONFIG"
)

func main() {
	// Tool to read environment variables
	viper.AutomaticEnv()

	// Accessing an environment variable of configuration file location.
	_config_file := viper.GetString(ENV_CONFIG_FILE_PATH)
	if _config_file != "" {
		if !cmd.FileExists(_config_file) {
			fmt.Printf("ETH user configuration file not found: %s\n", _config_file)
			return
		}
		if !initializeViper(_config_file) {
			return
		}
	}

	// Create a cancelable context and signal handler for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	euc := PrepareEthUserConfig()
	eu, err := cmd.NewEthUser(ctx, euc)
	if err != nil {
		fmt.Printf("Error creating ETH user: %s\n", err)
		return
	}

	fmt.Println(strings.Repeat("=", 30))
	fmt.Println("Welcome to bridge ETH user command line tool.")
	fmt.Printf("Connected to: %s\n", euc.EthRpcUrl)
	fmt.Printf("ChainId: %d\n", eu.ChainId.Int64())
	fmt.Printf("Your ETH address: %s\n", eu.GetAddress())
	fmt.Printf("wNCG contract address: %s\n", euc.WNCGContractAddress)

	// gather user inputs
	scanner := bufio.NewScanner(os.Stdin)
	for ctx.Err() == nil {
		// Print options
		fmt.Println("What to do:")
		fmt.Println("1) View balance")
		fmt.Println("2) Burn wNCG for NCG")
		fmt.Print("Type option and press Enter: ")

		// Wait for input.
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		// Process user input.
		switch input {
		case "1":
			balance, err := eu.GetWNCGBalance(ctx)
			if err != nil {
				fmt.Printf("Error getting balance: %s\n", err)
			} else {
				fmt.Printf("Your balance: %s wNCG\n", bridgecommon.FormatNCGAmount(balance))
			}
		case "2":
			txHash, err := sendBurn(ctx, eu, scanner)
			if err != nil {
				fmt.Printf("Error sending burn: %s\n", err)
			} else {
				fmt.Printf("Burn mined, tx: %s\n", txHash)
			}
		default:
			fmt.Println("Unknown option, try again.")
		}
		fmt.Println()
	}
}

func initializeViper(filePath string) bool {
	viper.SetConfigFile(filePath)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("Error reading configuration file, %s", err)
		return false
	}
	return true
}

func PrepareEthUserConfig() *cmd.EthUserConfig {
	return &cmd.EthUserConfig{
		EthRpcUrl:           viper.GetString("ETH_RPC_URL"),
		EthPrivateKey:       viper.GetString("ETH_PRIVATE_KEY"),
		WNCGContractAddress: viper.GetString("WNCG_CONTRACT_ADDRESS"),
	}
}

func sendBurn(ctx context.Context, eu *cmd.EthUser, scanner *bufio.Scanner) (string, error) {
	fmt.Print("Enter receiver of the NCG (nine chronicles address): ")
	scanner.Scan()
	receiver := strings.TrimSpace(scanner.Text())
	if !common.IsHexAddress(receiver) {
		return "", fmt.Errorf("invalid nine chronicles address: %s", receiver)
	}

	fmt.Print("Enter amount to burn (NCG, at most 2 decimals): ")
	scanner.Scan()
	amount, err := bridgecommon.ParseNCGAmount(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return "", err
	}
	if bridgecommon.IsNCGDust(amount) {
		return "", fmt.Errorf("amount is below 0.01 NCG")
	}

	fmt.Printf("Burning %s wNCG for %s...\n", bridgecommon.FormatNCGAmount(amount), receiver)
	txHash, err := eu.Burn(ctx, amount, common.HexToAddress(receiver))
	if err != nil {
		return "", err
	}
	return txHash.Hex(), nil
}
