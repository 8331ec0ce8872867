package config_test

import (
	"testing"

	"github.com/cyphera/cyphera-xdk/internal/config"
	"github.com/cyphera/cyphera-xdk/pkg/ethtx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string {
		return m[key]
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := config.FromEnv(envFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Stage)
	assert.Equal(t, "8000", cfg.APIPort)
	assert.Equal(t, ethtx.Goerli, cfg.Chain)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.RelayMaxReceives)
	assert.Empty(t, cfg.SignedTxQueueURL)
	assert.False(t, cfg.IsRelease())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := config.FromEnv(envFrom(map[string]string{
		config.EnvStage:              "prod",
		config.EnvGinMode:            "release",
		config.EnvChain:              "Sepolia",
		config.EnvRateLimitRPS:       "2.5",
		config.EnvRateLimitBurst:     "5",
		config.EnvCORSAllowedOrigins: "https://a.example, https://b.example,",
		config.EnvSignedTxQueueURL:   "https://sqs.us-east-1.amazonaws.com/123/signed-tx",
		config.EnvXIDMachineID:       "builder-7",
	}))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Stage)
	assert.True(t, cfg.IsRelease())
	assert.Equal(t, ethtx.Sepolia, cfg.Chain)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "builder-7", cfg.XIDMachineID)
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "stage", env: map[string]string{config.EnvStage: "staging"}},
		{name: "chain", env: map[string]string{config.EnvChain: "ropsten"}},
		{name: "port", env: map[string]string{config.EnvAPIPort: "http"}},
		{name: "rps not a number", env: map[string]string{config.EnvRateLimitRPS: "fast"}},
		{name: "rps zero", env: map[string]string{config.EnvRateLimitRPS: "0"}},
		{name: "burst", env: map[string]string{config.EnvRateLimitBurst: "0"}},
		{name: "relay receives", env: map[string]string{config.EnvRelayMaxReceives: "none"}},
		{name: "relay receives zero", env: map[string]string{config.EnvRelayMaxReceives: "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromEnv(envFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
