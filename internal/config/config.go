package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cyphera/cyphera-xdk/internal/helpers"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variable names
const (
	EnvStage              = "STAGE"
	EnvLogLevel           = "LOG_LEVEL"
	EnvAPIPort            = "API_PORT"
	EnvGinMode            = "GIN_MODE"
	EnvChain              = "ETH_CHAIN"
	EnvSignerKeyARN       = "SIGNER_PRIVATE_KEY_ARN"
	EnvSignerKey          = "SIGNER_PRIVATE_KEY"
	EnvSignedTxQueueURL   = "SIGNED_TX_QUEUE_URL"
	EnvEthRPCURL          = "ETH_RPC_URL"
	EnvRateLimitRPS       = "RATE_LIMIT_RPS"
	EnvRateLimitBurst     = "RATE_LIMIT_BURST"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvXIDMachineID       = "XID_MACHINE_ID"
	EnvRelayMaxReceives   = "RELAY_MAX_RECEIVES"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Stage    string
	LogLevel string
	APIPort  string
	GinMode  string

	Chain ethtx.Chain

	// Optional integrations; empty disables them.
	SignedTxQueueURL string
	EthRPCURL        string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	// XIDMachineID overrides host detection for the id generator.
	XIDMachineID string

	// RelayMaxReceives is how many times the relay sees a queued
	// transaction before giving up on it.
	RelayMaxReceives int
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Stage:            get(EnvStage, helpers.StageLocal),
		LogLevel:         get(EnvLogLevel, "info"),
		APIPort:          get(EnvAPIPort, "8000"),
		GinMode:          get(EnvGinMode, "debug"),
		SignedTxQueueURL: get(EnvSignedTxQueueURL, ""),
		EthRPCURL:        get(EnvEthRPCURL, ""),
		XIDMachineID:     get(EnvXIDMachineID, ""),
	}

	chain, err := ethtx.ParseChain(get(EnvChain, ethtx.Goerli.String()))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvChain)
	}
	cfg.Chain = chain

	cfg.RateLimitRPS, err = strconv.ParseFloat(get(EnvRateLimitRPS, "10"), 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvRateLimitRPS)
	}
	cfg.RateLimitBurst, err = strconv.Atoi(get(EnvRateLimitBurst, "20"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvRateLimitBurst)
	}

	cfg.RelayMaxReceives, err = strconv.Atoi(get(EnvRelayMaxReceives, "5"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", EnvRelayMaxReceives)
	}

	cfg.CORSAllowedOrigins = splitList(get(EnvCORSAllowedOrigins, "http://localhost:3000"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parsing alone does not catch.
func (c *Config) Validate() error {
	if !helpers.IsValidStage(c.Stage) {
		return errors.Errorf("invalid %s %q: must be one of %s, %s, %s, %s",
			EnvStage, c.Stage, helpers.StageProd, helpers.StageDev, helpers.StageLocal, helpers.StageTest)
	}
	if _, err := strconv.Atoi(c.APIPort); err != nil {
		return errors.Wrapf(err, "invalid %s", EnvAPIPort)
	}
	if !c.Chain.Known() {
		return errors.Errorf("invalid %s: %s", EnvChain, c.Chain)
	}
	if c.RateLimitRPS <= 0 {
		return errors.Errorf("%s must be positive, got %v", EnvRateLimitRPS, c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return errors.Errorf("%s must be at least 1, got %d", EnvRateLimitBurst, c.RateLimitBurst)
	}
	if c.RelayMaxReceives < 1 {
		return errors.Errorf("%s must be at least 1, got %d", EnvRelayMaxReceives, c.RelayMaxReceives)
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
