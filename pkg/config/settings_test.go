package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSwapSettings_Defaults(t *testing.T) {
	s := LoadSwapSettings()

	assert.Nil(t, s.SlippageBps)
	assert.True(t, s.OnlyDirectRoutes)
	assert.Equal(t, "ExactIn", s.SwapMode)
	assert.False(t, s.WrapAndUnwrapSOL)
	assert.False(t, s.AssembleTransaction)
	assert.Equal(t, DefaultKeypairEnv, s.KeypairEnv)
	assert.True(t, s.SkipPreflight)
	assert.Equal(t, uint(2), s.MaxRetries)
	assert.Equal(t, 60*time.Second, s.Timeout)
}

func TestLoadSwapSettings_FromEnv(t *testing.T) {
	t.Setenv("SLIPPAGE_BPS", "75")
	t.Setenv("ONLY_DIRECT_ROUTES", "false")
	t.Setenv("SWAP_MODE", "ExactOut")
	t.Setenv("WRAP_AND_UNWRAP_SOL", "true")
	t.Setenv("ASSEMBLE_TRANSACTION", "1")
	t.Setenv("KEYPAIR_ENV", "TRADING_KEY")
	t.Setenv("TRANSACTION_SKIP_PREFLIGHT", "0")
	t.Setenv("TRANSACTION_MAX_RETRIES", "5")
	t.Setenv("TRANSACTION_TIMEOUT_SECS", "90")

	s := LoadSwapSettings()

	require.NotNil(t, s.SlippageBps)
	assert.Equal(t, uint64(75), *s.SlippageBps)
	assert.False(t, s.OnlyDirectRoutes)
	assert.Equal(t, "ExactOut", s.SwapMode)
	assert.True(t, s.WrapAndUnwrapSOL)
	assert.True(t, s.AssembleTransaction)
	assert.Equal(t, "TRADING_KEY", s.KeypairEnv)
	assert.False(t, s.SkipPreflight)
	assert.Equal(t, uint(5), s.MaxRetries)
	assert.Equal(t, 90*time.Second, s.Timeout)
}

func TestBoolFromEnv(t *testing.T) {
	t.Setenv("FLAG_ONE", "1")
	t.Setenv("FLAG_TRUE", "true")
	t.Setenv("FLAG_OTHER", "yes")

	assert.True(t, BoolFromEnv("FLAG_ONE", false))
	assert.True(t, BoolFromEnv("FLAG_TRUE", false))
	assert.False(t, BoolFromEnv("FLAG_OTHER", true))
	assert.True(t, BoolFromEnv("FLAG_UNSET", true))
	assert.False(t, BoolFromEnv("FLAG_UNSET", false))
}

func TestGetJupiterAPI(t *testing.T) {
	assert.Equal(t, "https://quote-api.jup.ag/v6", GetJupiterAPI())

	t.Setenv("JUPITER_API_URL", "http://localhost:8899/v6/")
	assert.Equal(t, "http://localhost:8899/v6", GetJupiterAPI())
}
