package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Sui ledger
	SuiRPCURL         string
	ContractPackageID string
	PaymentConfigID   string
	PaymentAmountMist uint64

	// Walrus storage
	WalrusPackageID      string
	WalrusSystemID       string
	WalrusRelayURL       string
	WalrusAggregatorURL  string
	UploadTipMaxMist     uint64
	DefaultStorageEpochs int

	// AI gateway
	AIGatewayAPIKey  string
	AIGatewayBaseURL string
	AIImageModel     string

	// Service signer (hex-encoded ed25519 seed, signs register/certify)
	ServiceSignerSeed string

	// Auth
	JWTSecret string

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		SuiRPCURL:         getEnv("SUI_RPC_URL", "https://fullnode.testnet.sui.io:443"),
		ContractPackageID: getEnv("CONTRACT_PACKAGE_ID", ""),
		PaymentConfigID:   getEnv("PAYMENT_CONFIG_ID", ""),
		PaymentAmountMist: getEnvUint("PAYMENT_AMOUNT_MIST", 10_000_000), // 0.01 SUI

		WalrusPackageID:      getEnv("WALRUS_PACKAGE_ID", ""),
		WalrusSystemID:       getEnv("WALRUS_SYSTEM_ID", ""),
		WalrusRelayURL:       getEnv("WALRUS_RELAY_URL", "https://upload-relay.testnet.walrus.space"),
		WalrusAggregatorURL:  getEnv("WALRUS_AGGREGATOR_URL", "https://aggregator.testnet.walrus.space"),
		UploadTipMaxMist:     getEnvUint("UPLOAD_TIP_MAX_MIST", 1_000),
		DefaultStorageEpochs: getEnvInt("DEFAULT_STORAGE_EPOCHS", 1),

		AIGatewayAPIKey:  getEnv("AI_GATEWAY_API_KEY", ""),
		AIGatewayBaseURL: getEnv("AI_GATEWAY_BASE_URL", "https://ai-gateway.vercel.sh/v1/"),
		AIImageModel:     getEnv("AI_IMAGE_MODEL", "google/gemini-2.5-flash-image"),

		ServiceSignerSeed: getEnv("SERVICE_SIGNER_SEED", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ContractPackageID == "" {
		return fmt.Errorf("CONTRACT_PACKAGE_ID is required")
	}
	if c.PaymentConfigID == "" {
		return fmt.Errorf("PAYMENT_CONFIG_ID is required")
	}
	if c.AIGatewayAPIKey == "" {
		return fmt.Errorf("AI_GATEWAY_API_KEY is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DefaultStorageEpochs <= 0 {
		return fmt.Errorf("DEFAULT_STORAGE_EPOCHS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
