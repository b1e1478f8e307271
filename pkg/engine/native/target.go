package native

import (
	"fmt"
	"runtime"
)

// Triple is a target platform identifier: architecture, vendor/OS and
// ABI/libc variant, matching the naming of published artifacts.
type Triple string

// Supported target triples. One artifact is published per triple and
// release, plus a legacy CPU variant where the triple is x86-64.
// Windows artifacts exist and resolve, but this host only binds on
// linux and darwin; Load refuses windows before downloading.
const (
	LinuxGNUx8664   Triple = "x86_64-unknown-linux-gnu"
	LinuxMuslX8664  Triple = "x86_64-unknown-linux-musl"
	LinuxGNUArm64   Triple = "aarch64-unknown-linux-gnu"
	DarwinX8664     Triple = "x86_64-apple-darwin"
	DarwinArm64     Triple = "aarch64-apple-darwin"
	WindowsMSVCAmd6 Triple = "x86_64-pc-windows-msvc"
)

// SupportedTriples lists every triple with published artifacts.
var SupportedTriples = []Triple{
	LinuxGNUx8664,
	LinuxMuslX8664,
	LinuxGNUArm64,
	DarwinX8664,
	DarwinArm64,
	WindowsMSVCAmd6,
}

// IsX8664 reports whether the triple targets x86-64, the only
// architecture with a legacy CPU variant.
func (t Triple) IsX8664() bool {
	switch t {
	case LinuxGNUx8664, LinuxMuslX8664, DarwinX8664, WindowsMSVCAmd6:
		return true
	default:
		return false
	}
}

// LibExt returns the shared-library extension for the triple's OS.
func (t Triple) LibExt() string {
	switch t {
	case DarwinX8664, DarwinArm64:
		return ".dylib"
	case WindowsMSVCAmd6:
		return ".dll"
	default:
		return ".so"
	}
}

// ResolveTriple maps a GOOS/GOARCH pair plus libc variant to a target
// triple. libc is only consulted on linux and defaults to "gnu".
func ResolveTriple(goos, goarch, libc string) (Triple, error) {
	if libc == "" {
		libc = "gnu"
	}
	switch {
	case goos == "linux" && goarch == "amd64" && libc == "musl":
		return LinuxMuslX8664, nil
	case goos == "linux" && goarch == "amd64":
		return LinuxGNUx8664, nil
	case goos == "linux" && goarch == "arm64":
		return LinuxGNUArm64, nil
	case goos == "darwin" && goarch == "amd64":
		return DarwinX8664, nil
	case goos == "darwin" && goarch == "arm64":
		return DarwinArm64, nil
	case goos == "windows" && goarch == "amd64":
		return WindowsMSVCAmd6, nil
	default:
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
}

// CurrentTriple resolves the triple for the running process.
func CurrentTriple() (Triple, error) {
	return ResolveTriple(runtime.GOOS, runtime.GOARCH, hostLibc())
}
