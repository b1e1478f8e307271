package wallet

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func TestParseKey_Base58(t *testing.T) {
	key := newTestKey(t)

	parsed, err := ParseKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), parsed.PublicKey())
}

func TestParseKey_JSONByteArray(t *testing.T) {
	key := newTestKey(t)
	nums := make([]int, len(key))
	for i, b := range key {
		nums[i] = int(b)
	}
	jsonBytes, err := json.Marshal(nums)
	require.NoError(t, err)

	parsed, err := ParseKey(string(jsonBytes))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), parsed.PublicKey())
}

func TestParseKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"[1,2,3]",          // wrong length
		"[not,json",        // malformed JSON
		"0OIl not base58!", // invalid base58 alphabet
	}
	for _, c := range cases {
		_, err := ParseKey(c)
		assert.ErrorIs(t, err, ErrInvalidKey, "input %q", c)
	}
}

func TestFromEnv_ParsesConfiguredKey(t *testing.T) {
	key := newTestKey(t)
	t.Setenv("TEST_SWAP_KEY", key.String())

	got, err := FromEnv("TEST_SWAP_KEY", nil)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), got.PublicKey())
}

func TestFromEnv_EphemeralFallback(t *testing.T) {
	got, err := FromEnv("TEST_SWAP_KEY_UNSET", nil)
	require.NoError(t, err)
	assert.Len(t, []byte(got), 64)
}

func TestFromEnv_InvalidKeyFails(t *testing.T) {
	t.Setenv("TEST_SWAP_KEY", "[1,2,3]")
	_, err := FromEnv("TEST_SWAP_KEY", nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
}
