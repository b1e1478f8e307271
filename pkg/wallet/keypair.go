// Package wallet resolves the signing keypair for swap execution.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned when the key material cannot be parsed as
// either a JSON byte array or a base58 string.
var ErrInvalidKey = errors.New("invalid private key")

// ParseKey parses key material in either of the two accepted forms:
// a JSON array of bytes ("[12,34,...]") or a base58-encoded string.
func ParseKey(material string) (solana.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("%w: empty key material", ErrInvalidKey)
	}

	var raw []byte
	if strings.HasPrefix(material, "[") {
		var nums []int
		if err := json.Unmarshal([]byte(material), &nums); err != nil {
			return nil, fmt.Errorf("%w: parse JSON byte array: %v", ErrInvalidKey, err)
		}
		raw = make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range at index %d", ErrInvalidKey, n, i)
			}
			raw[i] = byte(n)
		}
	} else {
		decoded, err := base58.Decode(material)
		if err != nil {
			return nil, fmt.Errorf("%w: decode base58: %v", ErrInvalidKey, err)
		}
		raw = decoded
	}

	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: expected 64 key bytes, got %d", ErrInvalidKey, len(raw))
	}
	return solana.PrivateKey(raw), nil
}

// FromEnv loads the keypair from the named environment variable. When
// the variable is unset an ephemeral keypair is generated so that
// quoting still works, with a warning that any swap it signs cannot
// spend real funds.
func FromEnv(envVar string, log *zap.Logger) (solana.PrivateKey, error) {
	if log == nil {
		log = zap.NewNop()
	}

	material, ok := os.LookupEnv(envVar)
	if !ok || strings.TrimSpace(material) == "" {
		log.Warn("no signing key in environment, using ephemeral keypair",
			zap.String("env", envVar))
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral keypair: %w", err)
		}
		return key, nil
	}

	key, err := ParseKey(material)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envVar, err)
	}
	return key, nil
}
