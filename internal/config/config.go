package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Network bundles the chain-specific addresses and endpoints a dispatcher
// needs. Presets exist for the supported networks; everything can still be
// overridden through environment variables.
type Network struct {
	Name            string
	ChainID         int64
	RPCURL          string
	JobContract     common.Address
	PaymentToken    common.Address
	SponsorEndpoint string
}

// Config is the full runtime configuration, loaded from the environment.
type Config struct {
	Stage   string
	Network Network

	// Fee policy.
	FeeMultiplier  int64
	MaxFeeOverride *big.Int
	MaxPriorityFee *big.Int

	// Sponsorship service.
	SponsorAPIKey string

	// Custodial signer service.
	CustodialBaseURL string
	CustodialAPIKey  string
	CustodialAppID   string
	CustodialWallet  string

	// Direct signing. Empty when the custodial path is used.
	PrivateKeyHex string

	// Optional Postgres DSN for persisted authorization keys.
	DatabaseURL string
}

var networkPresets = map[string]Network{
	"base": {
		Name:            "base",
		ChainID:         8453,
		RPCURL:          "https://mainnet.base.org",
		JobContract:     common.HexToAddress("0x24b3bbD4A32E0c2Cbbd6f40D4a2E204dbC9aF851"),
		PaymentToken:    common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		SponsorEndpoint: "https://sponsor.base.cyphera.dev",
	},
	"base-sepolia": {
		Name:            "base-sepolia",
		ChainID:         84532,
		RPCURL:          "https://sepolia.base.org",
		JobContract:     common.HexToAddress("0x7E10AAc2A589Aa20DA12dAb10b8f6b276C8cbE34"),
		PaymentToken:    common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		SponsorEndpoint: "https://sponsor.sepolia.cyphera.dev",
	},
}

// Load reads configuration from the environment, after loading .env when
// present. Network defaults come from the preset named by NETWORK and may be
// overridden field by field.
func Load() (*Config, error) {
	_ = godotenv.Load()

	networkName := getEnv("NETWORK", "base-sepolia")
	network, ok := networkPresets[strings.ToLower(networkName)]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", networkName)
	}

	if v := os.Getenv("RPC_URL"); v != "" {
		network.RPCURL = v
	}
	if v := os.Getenv("JOB_CONTRACT_ADDRESS"); v != "" {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("JOB_CONTRACT_ADDRESS %q is not a valid address", v)
		}
		network.JobContract = common.HexToAddress(v)
	}
	if v := os.Getenv("PAYMENT_TOKEN_ADDRESS"); v != "" {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("PAYMENT_TOKEN_ADDRESS %q is not a valid address", v)
		}
		network.PaymentToken = common.HexToAddress(v)
	}
	if v := os.Getenv("SPONSOR_ENDPOINT"); v != "" {
		network.SponsorEndpoint = v
	}

	multiplier, err := getEnvInt64("FEE_MULTIPLIER", 2)
	if err != nil {
		return nil, err
	}

	maxFee, err := getEnvBigInt("MAX_FEE_PER_GAS")
	if err != nil {
		return nil, err
	}
	priorityFee, err := getEnvBigInt("MAX_PRIORITY_FEE_PER_GAS")
	if err != nil {
		return nil, err
	}

	return &Config{
		Stage:            getEnv("STAGE", "dev"),
		Network:          network,
		FeeMultiplier:    multiplier,
		MaxFeeOverride:   maxFee,
		MaxPriorityFee:   priorityFee,
		SponsorAPIKey:    os.Getenv("SPONSOR_API_KEY"),
		CustodialBaseURL: os.Getenv("CUSTODIAL_BASE_URL"),
		CustodialAPIKey:  os.Getenv("CUSTODIAL_API_KEY"),
		CustodialAppID:   os.Getenv("CUSTODIAL_APP_ID"),
		CustodialWallet:  os.Getenv("CUSTODIAL_WALLET_ID"),
		PrivateKeyHex:    os.Getenv("PRIVATE_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
	}, nil
}

// UseCustodial reports whether the custodial signer is configured.
func (c *Config) UseCustodial() bool {
	return c.CustodialBaseURL != "" && c.CustodialWallet != ""
}

// UseSponsor reports whether sponsored submission is configured.
func (c *Config) UseSponsor() bool {
	return c.Network.SponsorEndpoint != "" && os.Getenv("DISABLE_SPONSOR") == ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvBigInt(key string) (*big.Int, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	parsed, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("%s must be a base-10 integer", key)
	}
	return parsed, nil
}
