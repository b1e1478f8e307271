// Package engine defines the swap engine contract and the process-wide
// binding through which QuickSwap is dispatched.
package engine

import (
	"context"
	"fmt"
	"sync"
)

// Request describes a single token swap.
type Request struct {
	// TokenTo is the mint address of the token being bought.
	TokenTo string

	// TokenFrom is the mint address of the token being sold.
	TokenFrom string

	// Amount is the input amount in the token's smallest units.
	Amount uint64
}

// Result is the outcome of a completed swap.
type Result struct {
	// Signature is the transaction signature of the executed swap.
	Signature string

	// InAmount and OutAmount are the quoted amounts in smallest units.
	InAmount  string
	OutAmount string
}

// Engine executes swaps. Implementations are the precompiled native
// engine and the in-process Jupiter engine.
type Engine interface {
	// Swap executes the swap synchronously and returns the result
	// or an error. It never returns a partial result.
	Swap(ctx context.Context, req Request) (*Result, error)

	// Name identifies the engine implementation.
	Name() string
}

// Binding holds the currently loaded engine. The zero value is the
// unloaded state: every call fails with ErrNotLoaded until Load is called.
type Binding struct {
	mu     sync.RWMutex
	engine Engine
}

// Load installs an engine into the binding, replacing any previous one.
func (b *Binding) Load(e Engine) {
	b.mu.Lock()
	b.engine = e
	b.mu.Unlock()
}

// Current returns the loaded engine, or ErrNotLoaded.
func (b *Binding) Current() (Engine, error) {
	b.mu.RLock()
	e := b.engine
	b.mu.RUnlock()
	if e == nil {
		return nil, ErrNotLoaded
	}
	return e, nil
}

// Loaded reports whether an engine has been installed.
func (b *Binding) Loaded() bool {
	_, err := b.Current()
	return err == nil
}

// QuickSwap swaps amount of tokenFrom into tokenTo through the loaded engine.
func (b *Binding) QuickSwap(ctx context.Context, tokenTo, tokenFrom string, amount uint64) (*Result, error) {
	e, err := b.Current()
	if err != nil {
		return nil, err
	}
	if tokenTo == "" || tokenFrom == "" {
		return nil, fmt.Errorf("%w: token mints must not be empty", ErrInvalidRequest)
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	return e.Swap(ctx, Request{TokenTo: tokenTo, TokenFrom: tokenFrom, Amount: amount})
}

// Default is the process-wide binding.
var Default = &Binding{}

// QuickSwap dispatches through the default binding.
func QuickSwap(ctx context.Context, tokenTo, tokenFrom string, amount uint64) (*Result, error) {
	return Default.QuickSwap(ctx, tokenTo, tokenFrom, amount)
}
