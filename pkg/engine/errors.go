package engine

import "errors"

// Binding errors.
var (
	// ErrNotLoaded is returned when QuickSwap is invoked before an
	// engine has been loaded into the binding.
	ErrNotLoaded = errors.New("swap engine not loaded")

	// ErrInvalidRequest is returned when the swap parameters fail
	// basic validation before reaching the engine.
	ErrInvalidRequest = errors.New("invalid swap request")
)
