//go:build !linux && !darwin

package native

import "fmt"

// canBind reports whether this build can dlopen artifacts.
const canBind = false

// openLibrary fails on platforms without dlopen support in the host.
func openLibrary(path string) (quickSwapFn, error) {
	return nil, fmt.Errorf("%w: dynamic loading not supported on this OS", ErrUnsupportedPlatform)
}
