//go:build linux || darwin

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// canBind reports whether this build can dlopen artifacts.
const canBind = true

// openLibrary loads the shared library and binds quick_swap.
func openLibrary(path string) (quickSwapFn, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}

	if _, err := purego.Dlsym(lib, "quick_swap"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, path)
	}

	var fn quickSwapFn
	purego.RegisterLibFunc(&fn, lib, "quick_swap")
	return fn, nil
}
