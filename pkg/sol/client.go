package sol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"golang.org/x/time/rate"
)

// Client wraps a Solana RPC endpoint with request rate limiting and an
// optional Jito block engine for transaction submission.
type Client struct {
	endpoint string
	rpc      *rpc.Client
	jito     *jitorpc.JitoJsonRpcClient
	limiter  *rate.Limiter
}

// SendOptions control transaction submission.
type SendOptions struct {
	// SkipPreflight skips simulation before submission.
	SkipPreflight bool

	// MaxRetries bounds the RPC node's resubmission attempts.
	MaxRetries uint

	// UseJito routes submission through the Jito block engine when
	// one is configured.
	UseJito bool
}

// NewClient creates a rate-limited client for the given RPC endpoint.
// jitoRpc optionally names a Jito block engine base URL.
func NewClient(ctx context.Context, endpoint, jitoRpc string, reqLimitPerSecond int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("rpc endpoint must not be empty")
	}
	if reqLimitPerSecond <= 0 {
		reqLimitPerSecond = 20
	}

	c := &Client{
		endpoint: endpoint,
		rpc:      rpc.New(endpoint),
		limiter:  rate.NewLimiter(rate.Limit(reqLimitPerSecond), reqLimitPerSecond),
	}
	if jitoRpc != "" {
		c.jito = jitorpc.NewJitoJsonRpcClient(jitoRpc, "")
	}
	return c, nil
}

// Endpoint returns the RPC endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// RPC exposes the underlying solana-go client for read calls.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// GetLatestBlockhash fetches a recent blockhash at finalized commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return solana.Hash{}, err
	}
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return out.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction and returns its
// signature. With UseJito set and a configured block engine, the
// transaction goes through Jito instead of the plain RPC node.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts SendOptions) (solana.Signature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return solana.Signature{}, err
	}

	if opts.UseJito && c.jito != nil {
		return c.sendViaJito(tx)
	}

	maxRetries := opts.MaxRetries
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: opts.SkipPreflight,
		MaxRetries:    &maxRetries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

// sendViaJito submits the transaction to the configured block engine.
func (c *Client) sendViaJito(tx *solana.Transaction) (solana.Signature, error) {
	serialized, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
	}

	// The block engine client takes the base64-encoded transaction
	// string and adds the encoding parameter itself.
	raw, err := c.jito.SendTxn(base64.StdEncoding.EncodeToString(serialized), false)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("jito send transaction: %w", err)
	}

	var sigStr string
	if err := json.Unmarshal(raw, &sigStr); err != nil {
		return solana.Signature{}, fmt.Errorf("jito response: %w", err)
	}
	sig, err := solana.SignatureFromBase58(sigStr)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("jito returned malformed signature %q: %w", sigStr, err)
	}
	return sig, nil
}
