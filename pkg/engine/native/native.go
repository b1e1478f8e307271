// Package native locates, downloads and loads the precompiled swap
// engine for the current platform, and exposes it as an engine.Engine.
//
// Artifact selection follows the precompiled-binary convention: one
// build per target triple, with an optional "legacy" CPU variant for
// x86-64 hosts lacking AVX/FMA/SSE4.2. Selection is deterministic for
// a fixed platform and CPU feature set.
package native

import (
	"errors"
	"os"
	"strings"
)

// Release metadata for the precompiled engine artifacts.
const (
	// LibName is the base name of the native library.
	LibName = "libjup_swap"

	// Version is the engine release the host is pinned to. It drives
	// the artifact download URL.
	Version = "0.1.0"

	// ABIVersion is the engine call interface version baked into
	// artifact names. A host only loads artifacts built against the
	// same ABI.
	ABIVersion = "1"

	// RepoURL is the source repository publishing release artifacts.
	RepoURL = "https://github.com/jupswap/jup-swap-engine"
)

// ForceBuildEnv names the flag that bypasses artifact download and
// loads a locally built engine instead. Accepted values: "1", "true".
const ForceBuildEnv = "JUP_SWAP_FORCE_BUILD"

// Loader errors.
var (
	// ErrUnsupportedPlatform means no precompiled artifact exists for
	// the host platform.
	ErrUnsupportedPlatform = errors.New("no precompiled engine for this platform")

	// ErrArtifactNotFound means the release artifact could not be
	// fetched for the resolved target.
	ErrArtifactNotFound = errors.New("engine artifact not found")

	// ErrChecksumMismatch means the downloaded artifact failed
	// sha256 verification.
	ErrChecksumMismatch = errors.New("engine artifact checksum mismatch")

	// ErrSymbolNotFound means the loaded library does not export the
	// expected quick_swap entry point.
	ErrSymbolNotFound = errors.New("quick_swap symbol not found in engine library")
)

// ForceBuild reports whether the force-build flag is set. It accepts
// exactly "1" or "true", regardless of platform.
func ForceBuild() bool {
	switch strings.TrimSpace(os.Getenv(ForceBuildEnv)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
