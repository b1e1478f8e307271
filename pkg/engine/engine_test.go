package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	lastReq Request
	result  *Result
	err     error
}

func (f *fakeEngine) Swap(_ context.Context, req Request) (*Result, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeEngine) Name() string { return "fake" }

func TestQuickSwap_NotLoaded(t *testing.T) {
	var b Binding

	res, err := b.QuickSwap(context.Background(), "mintA", "mintB", 1_000_000)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotLoaded)

	// The error is stable across repeated calls.
	_, err = b.QuickSwap(context.Background(), "mintA", "mintB", 1_000_000)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestQuickSwap_PassThrough(t *testing.T) {
	var b Binding
	fake := &fakeEngine{result: &Result{Signature: "sig", InAmount: "1000", OutAmount: "990"}}
	b.Load(fake)

	res, err := b.QuickSwap(context.Background(), "mintTo", "mintFrom", 1000)
	require.NoError(t, err)
	assert.Equal(t, "sig", res.Signature)
	assert.Equal(t, Request{TokenTo: "mintTo", TokenFrom: "mintFrom", Amount: 1000}, fake.lastReq)
}

func TestQuickSwap_EngineErrorSurfaced(t *testing.T) {
	var b Binding
	swapErr := errors.New("insufficient liquidity")
	b.Load(&fakeEngine{err: swapErr})

	res, err := b.QuickSwap(context.Background(), "mintTo", "mintFrom", 1)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, swapErr)
}

func TestQuickSwap_Validation(t *testing.T) {
	var b Binding
	b.Load(&fakeEngine{result: &Result{}})

	_, err := b.QuickSwap(context.Background(), "", "mintFrom", 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = b.QuickSwap(context.Background(), "mintTo", "", 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = b.QuickSwap(context.Background(), "mintTo", "mintFrom", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBinding_LoadReplaces(t *testing.T) {
	var b Binding
	first := &fakeEngine{result: &Result{Signature: "first"}}
	second := &fakeEngine{result: &Result{Signature: "second"}}

	b.Load(first)
	assert.True(t, b.Loaded())

	b.Load(second)
	res, err := b.QuickSwap(context.Background(), "a", "b", 1)
	require.NoError(t, err)
	assert.Equal(t, "second", res.Signature)
}
