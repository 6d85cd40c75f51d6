package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvRPCEndpoint = "CYCLEARB_RPC_ENDPOINT"
	EnvInfuraKey   = "INFURA_API_KEY"
	EnvNetwork     = "NETWORK" // mainnet, sepolia, holesky
)

// LoadEnv loads environment variables from a .env file when present
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RPCEndpointFromEnv resolves the RPC endpoint from the environment.
// A full endpoint wins; otherwise an Infura key plus network name is
// assembled into one. Returns "" when neither is set.
func RPCEndpointFromEnv() string {
	if endpoint := os.Getenv(EnvRPCEndpoint); endpoint != "" {
		return endpoint
	}

	infuraKey := os.Getenv(EnvInfuraKey)
	if infuraKey == "" {
		return ""
	}

	network := GetEnvWithDefault(EnvNetwork, "mainnet")
	switch network {
	case "mainnet", "sepolia", "holesky":
		return fmt.Sprintf("https://%s.infura.io/v3/%s", network, infuraKey)
	default:
		return ""
	}
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
