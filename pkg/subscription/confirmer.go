package subscription

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Confirmer waits for submitted transactions to reach confirmed
// commitment, one websocket connection shared across waits.
type Confirmer struct {
	ws  *WebSocketClient
	log *zap.Logger
}

// NewConfirmer connects to the node's websocket endpoint. rpcURL may
// be either an http(s) or ws(s) URL.
func NewConfirmer(ctx context.Context, rpcURL string, log *zap.Logger) (*Confirmer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	ws, err := NewWebSocketClient(ctx, WSEndpoint(rpcURL), log)
	if err != nil {
		return nil, fmt.Errorf("create confirmation client: %w", err)
	}
	return &Confirmer{ws: ws, log: log}, nil
}

// WaitForSignature blocks until the signature is confirmed, fails
// on-chain, or ctx expires. An on-chain failure is returned as a
// non-nil error carrying the node's error payload.
func (c *Confirmer) WaitForSignature(ctx context.Context, sig solana.Signature) error {
	done := make(chan error, 1)

	id, err := c.ws.SubscribeSignature(sig.String(), func(_ string, slot uint64, txErr error) {
		if txErr == nil {
			c.log.Info("transaction confirmed",
				zap.String("signature", sig.String()), zap.Uint64("slot", slot))
		}
		done <- txErr
	})
	if err != nil {
		return fmt.Errorf("subscribe signature %s: %w", sig, err)
	}

	select {
	case txErr := <-done:
		return txErr
	case <-ctx.Done():
		_ = c.ws.Unsubscribe(id)
		return fmt.Errorf("confirmation of %s: %w", sig, ctx.Err())
	}
}

// Connected reports whether the websocket is up.
func (c *Confirmer) Connected() bool {
	return c.ws.IsConnected()
}

// Close shuts the websocket down.
func (c *Confirmer) Close() error {
	return c.ws.Close()
}
