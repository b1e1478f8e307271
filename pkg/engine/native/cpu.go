package native

import (
	"path/filepath"
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Variant selects between multiple builds published for the same
// target triple.
type Variant string

const (
	// VariantDefault is the standard build, compiled with AVX, FMA
	// and SSE4.2 enabled on x86-64.
	VariantDefault Variant = ""

	// VariantLegacy is the lowered-baseline x86-64 build for hosts
	// without the vector extensions the default build requires.
	VariantLegacy Variant = "legacy"
)

// Features is the subset of CPU capabilities variant selection
// depends on.
type Features struct {
	AVX   bool
	FMA   bool
	SSE42 bool
}

// VariantFor is the selection predicate: given a triple and the host
// capability set, it picks exactly one build variant.
func VariantFor(triple Triple, f Features) Variant {
	if !triple.IsX8664() {
		return VariantDefault
	}
	if f.AVX && f.FMA && f.SSE42 {
		return VariantDefault
	}
	return VariantLegacy
}

var (
	hostFeaturesOnce sync.Once
	hostFeaturesVal  Features
)

// HostFeatures queries the CPU capability set once and caches it for
// the process lifetime.
func HostFeatures() Features {
	hostFeaturesOnce.Do(func() {
		hostFeaturesVal = Features{
			AVX:   cpuid.CPU.Supports(cpuid.AVX),
			FMA:   cpuid.CPU.Supports(cpuid.FMA3),
			SSE42: cpuid.CPU.Supports(cpuid.SSE42),
		}
	})
	return hostFeaturesVal
}

// hostLibc reports the linux libc flavor, empty elsewhere.
func hostLibc() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	if matches, _ := filepath.Glob("/lib/ld-musl-*"); len(matches) > 0 {
		return "musl"
	}
	return "gnu"
}
