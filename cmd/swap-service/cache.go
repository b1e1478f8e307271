package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cosmossdk.io/math"

	"jupswap/pkg/jupiter"
)

type QuoteCache struct {
	cache           map[string]*CachedQuote
	mu              sync.RWMutex
	client          *jupiter.Client
	refreshInterval time.Duration
	slippageBps     int
}

type QuotePair struct {
	InputMint  string
	OutputMint string
	Amount     string
	Label      string
}

func NewQuoteCache(client *jupiter.Client, refreshInterval time.Duration, slippageBps int) *QuoteCache {
	return &QuoteCache{
		cache:           make(map[string]*CachedQuote),
		client:          client,
		refreshInterval: refreshInterval,
		slippageBps:     slippageBps,
	}
}

func (qc *QuoteCache) getCacheKey(inputMint, outputMint, amount string) string {
	return fmt.Sprintf("%s-%s-%s", inputMint, outputMint, amount)
}

func (qc *QuoteCache) GetQuote(inputMint, outputMint, amount string) (*CachedQuote, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	key := qc.getCacheKey(inputMint, outputMint, amount)
	quote, exists := qc.cache[key]
	return quote, exists
}

// GetOrFetchQuote gets a quote from cache or fetches it on-demand
// from the aggregator.
func (qc *QuoteCache) GetOrFetchQuote(ctx context.Context, inputMint, outputMint, amount string) (*CachedQuote, error) {
	key := qc.getCacheKey(inputMint, outputMint, amount)

	qc.mu.RLock()
	if quote, exists := qc.cache[key]; exists {
		qc.mu.RUnlock()
		return quote, nil
	}
	qc.mu.RUnlock()

	quote, err := qc.fetchQuote(ctx, QuotePair{
		InputMint:  inputMint,
		OutputMint: outputMint,
		Amount:     amount,
		Label:      fmt.Sprintf("%s->%s (%s)", short(inputMint), short(outputMint), amount),
	})
	if err != nil {
		return nil, err
	}

	qc.mu.Lock()
	qc.cache[key] = quote
	qc.mu.Unlock()

	return quote, nil
}

func (qc *QuoteCache) fetchQuote(ctx context.Context, pair QuotePair) (*CachedQuote, error) {
	amountIn, ok := math.NewIntFromString(pair.Amount)
	if !ok || amountIn.LTE(math.ZeroInt()) || !amountIn.IsUint64() {
		return nil, fmt.Errorf("invalid amount")
	}

	startTime := time.Now()

	bps := uint64(qc.slippageBps)
	quote, err := qc.client.Quote(ctx, jupiter.QuoteParams{
		InputMint:   pair.InputMint,
		OutputMint:  pair.OutputMint,
		Amount:      amountIn.Uint64(),
		SlippageBps: &bps,
		SwapMode:    "ExactIn",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	return &CachedQuote{
		InputMint:            quote.InputMint,
		OutputMint:           quote.OutputMint,
		InAmount:             quote.InAmount,
		OutAmount:            quote.OutAmount,
		PriceImpact:          quote.PriceImpactPct,
		RoutePlan:            quote.RoutePlan,
		SlippageBps:          int(quote.SlippageBps),
		OtherAmountThreshold: quote.OtherAmountThreshold,
		LastUpdate:           time.Now(),
		TimeTaken:            time.Since(startTime).String(),
	}, nil
}

func (qc *QuoteCache) UpdateQuote(ctx context.Context, pair QuotePair) error {
	startTime := time.Now()

	quote, err := qc.fetchQuote(ctx, pair)
	if err != nil {
		return err
	}

	qc.mu.Lock()
	key := qc.getCacheKey(pair.InputMint, pair.OutputMint, pair.Amount)
	qc.cache[key] = quote
	qc.mu.Unlock()

	log.Printf("✓ Updated %s: %s -> %s (took %s)",
		pair.Label,
		quote.InAmount,
		quote.OutAmount,
		time.Since(startTime).Round(time.Millisecond))

	return nil
}

func (qc *QuoteCache) RefreshAll(ctx context.Context, pairs []QuotePair) {
	for _, pair := range pairs {
		if err := qc.UpdateQuote(ctx, pair); err != nil {
			log.Printf("Error updating quote for %s: %v", pair.Label, err)
		}
	}
}

// RunPeriodicRefresh refreshes the monitored pairs until ctx is
// canceled. It satisfies the supervisor child contract.
func (qc *QuoteCache) RunPeriodicRefresh(ctx context.Context, pairs []QuotePair) error {
	log.Printf("Starting initial quote refresh...")
	qc.RefreshAll(ctx, pairs)
	log.Printf("Initial refresh complete")

	ticker := time.NewTicker(qc.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping periodic refresh")
			return nil
		case <-ticker.C:
			qc.RefreshAll(ctx, pairs)
		}
	}
}

func (qc *QuoteCache) GetAllCached() map[string]*CachedQuote {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	result := make(map[string]*CachedQuote)
	for k, v := range qc.cache {
		result[k] = v
	}
	return result
}

func short(mint string) string {
	if len(mint) > 8 {
		return mint[:8]
	}
	return mint
}
