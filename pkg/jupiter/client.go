// Package jupiter is a client for the Jupiter v6 swap aggregator and
// an in-process implementation of the swap engine contract built on it.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Jupiter v6 API.
const DefaultBaseURL = "https://quote-api.jup.ag/v6"

const defaultRequestsPerSecond = 10

// Client talks to the aggregator HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps int) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), rps) }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates an aggregator client for the given base URL.
// An empty baseURL selects the public API.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote fetches the best route for the given parameters.
func (c *Client) Quote(ctx context.Context, p QuoteParams) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, QuoteURL(c.baseURL, p), &quote); err != nil {
		return nil, fmt.Errorf("quote %s->%s: %w", p.InputMint, p.OutputMint, err)
	}
	return &quote, nil
}

// Swap requests serialized swap transactions for a quote.
func (c *Client) Swap(ctx context.Context, quote Quote, userPublicKey string, cfg SwapConfig) (*SwapResponse, error) {
	var resp SwapResponse
	if err := c.post(ctx, c.baseURL+"/swap", newSwapRequest(quote, userPublicKey, cfg), &resp); err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	return &resp, nil
}

// SwapInstructions requests the decomposed instruction set for a quote.
func (c *Client) SwapInstructions(ctx context.Context, quote Quote, userPublicKey string, cfg SwapConfig) (*SwapInstructions, error) {
	var resp SwapInstructions
	if err := c.post(ctx, c.baseURL+"/swap-instructions", newSwapRequest(quote, userPublicKey, cfg), &resp); err != nil {
		return nil, fmt.Errorf("swap instructions: %w", err)
	}
	if resp.SimulationError != nil && *resp.SimulationError != "" {
		return nil, &APIError{Message: "simulation failed: " + *resp.SimulationError}
	}
	return &resp, nil
}

func newSwapRequest(quote Quote, userPublicKey string, cfg SwapConfig) swapRequest {
	req := swapRequest{
		UserPublicKey:           userPublicKey,
		WrapAndUnwrapSol:        cfg.WrapAndUnwrapSOL,
		DynamicComputeUnitLimit: true,
		DynamicSlippage:         true,
		QuoteResponse:           quote,
	}
	if cfg.FeeAccount != nil {
		s := cfg.FeeAccount.String()
		req.FeeAccount = &s
	}
	return req
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	c.log.Debug("aggregator request",
		zap.String("url", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	return decodeResponse(data, out)
}

// decodeResponse unmarshals an API body, mapping the aggregator's
// error envelope to APIError before attempting the target type.
func decodeResponse(data []byte, out interface{}) error {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return &APIError{Message: envelope.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
