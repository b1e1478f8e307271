package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values for swap settings when the corresponding
// environment variables are unset.
const (
	DefaultSwapMode           = "ExactIn"
	DefaultKeypairEnv         = "SOLANA_PRIVATE_KEY"
	DefaultTransactionRetries = 2
	DefaultTransactionTimeout = 60 * time.Second
)

// SwapSettings holds the environment-driven knobs for swap execution.
type SwapSettings struct {
	// SlippageBps is the slippage tolerance in basis points.
	// When nil, auto slippage is requested from the aggregator.
	SlippageBps *uint64

	// OnlyDirectRoutes restricts quotes to single-hop routes.
	OnlyDirectRoutes bool

	// SwapMode is either "ExactIn" or "ExactOut".
	SwapMode string

	// WrapAndUnwrapSOL wraps native SOL in and out of the swap.
	WrapAndUnwrapSOL bool

	// AssembleTransaction builds the swap transaction locally from the
	// aggregator's instruction set instead of using its serialized
	// transaction.
	AssembleTransaction bool

	// KeypairEnv names the environment variable holding the signing key.
	KeypairEnv string

	// SkipPreflight skips transaction simulation before submission.
	SkipPreflight bool

	// MaxRetries bounds RPC-side resubmission attempts.
	MaxRetries uint

	// Timeout bounds the submit-and-confirm cycle.
	Timeout time.Duration
}

// LoadSwapSettings reads swap settings from the environment.
func LoadSwapSettings() SwapSettings {
	s := SwapSettings{
		OnlyDirectRoutes:    BoolFromEnv("ONLY_DIRECT_ROUTES", true),
		SwapMode:            DefaultSwapMode,
		WrapAndUnwrapSOL:    BoolFromEnv("WRAP_AND_UNWRAP_SOL", false),
		AssembleTransaction: BoolFromEnv("ASSEMBLE_TRANSACTION", false),
		KeypairEnv:          DefaultKeypairEnv,
		SkipPreflight:       BoolFromEnv("TRANSACTION_SKIP_PREFLIGHT", true),
		MaxRetries:          DefaultTransactionRetries,
		Timeout:             DefaultTransactionTimeout,
	}

	if v := strings.TrimSpace(os.Getenv("SLIPPAGE_BPS")); v != "" {
		if bps, err := strconv.ParseUint(v, 10, 64); err == nil {
			s.SlippageBps = &bps
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWAP_MODE")); v != "" {
		s.SwapMode = v
	}
	if v := strings.TrimSpace(os.Getenv("KEYPAIR_ENV")); v != "" {
		s.KeypairEnv = v
	}
	if v := strings.TrimSpace(os.Getenv("TRANSACTION_MAX_RETRIES")); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			s.MaxRetries = uint(n)
		}
	}
	if v := strings.TrimSpace(os.Getenv("TRANSACTION_TIMEOUT_SECS")); v != "" {
		if secs, err := strconv.ParseUint(v, 10, 32); err == nil {
			s.Timeout = time.Duration(secs) * time.Second
		}
	}

	return s
}

// GetJupiterAPI returns the Jupiter API base URL, honoring JUPITER_API_URL.
func GetJupiterAPI() string {
	if v := strings.TrimSpace(os.Getenv("JUPITER_API_URL")); v != "" {
		return strings.TrimSuffix(v, "/")
	}
	return "https://quote-api.jup.ag/v6"
}
