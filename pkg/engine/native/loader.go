package native

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"jupswap/pkg/engine"
)

// Options configure the loader.
type Options struct {
	// CacheDir overrides the default artifact cache directory.
	CacheDir string

	// ForceBuild skips artifact download and loads LocalPath instead.
	// Populated from JUP_SWAP_FORCE_BUILD by LoaderFromEnv.
	ForceBuild bool

	// LocalPath is the locally built library used when ForceBuild is
	// set. Defaults to native/target/release/<lib><ext>.
	LocalPath string

	// Checksums pins expected sha256 sums per artifact name.
	Checksums map[string]string

	// KeypairEnv names the environment variable the engine reads the
	// signing key from.
	KeypairEnv string

	Logger *zap.Logger
}

// Loader resolves, acquires and binds the precompiled engine.
type Loader struct {
	opts Options
	log  *zap.Logger
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts Options) *Loader {
	if opts.CacheDir == "" {
		opts.CacheDir = defaultCacheDir()
	}
	if opts.KeypairEnv == "" {
		opts.KeypairEnv = "SOLANA_PRIVATE_KEY"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Loader{opts: opts, log: opts.Logger}
}

// LoaderFromEnv creates a Loader honoring the force-build flag.
func LoaderFromEnv(logger *zap.Logger) *Loader {
	return NewLoader(Options{ForceBuild: ForceBuild(), Logger: logger})
}

// Load selects the artifact for the current platform, acquires it and
// binds the quick_swap symbol. A failure here is fatal to callers that
// require the native engine: the binding stays unloaded and QuickSwap
// keeps failing with engine.ErrNotLoaded.
func (l *Loader) Load(ctx context.Context) (engine.Engine, error) {
	// Fail before fetching anything on builds that cannot dlopen:
	// an artifact the host can never bind is not worth downloading.
	if !canBind {
		return nil, fmt.Errorf("%w: dynamic loading not supported on %s", ErrUnsupportedPlatform, runtime.GOOS)
	}

	triple, err := CurrentTriple()
	if err != nil {
		return nil, err
	}
	variant := VariantFor(triple, HostFeatures())

	var libPath string
	if l.opts.ForceBuild {
		libPath = l.opts.LocalPath
		if libPath == "" {
			libPath = "native/target/release/" + LibName + triple.LibExt()
		}
		if _, err := os.Stat(libPath); err != nil {
			return nil, fmt.Errorf("%w: local build %s: %v", ErrArtifactNotFound, libPath, err)
		}
		l.log.Info("loading locally built engine", zap.String("path", libPath))
	} else {
		name := ArtifactName(LibName, Version, ABIVersion, triple, variant)
		url := DownloadURL(RepoURL, Version, name)
		l.log.Info("acquiring precompiled engine",
			zap.String("triple", string(triple)),
			zap.String("variant", string(variant)),
			zap.String("url", url))

		f := newFetcher(l.opts.CacheDir, l.opts.Checksums)
		libPath, err = f.Ensure(ctx, url, name)
		if err != nil {
			return nil, err
		}
	}

	fn, err := openLibrary(libPath)
	if err != nil {
		return nil, err
	}

	l.log.Info("engine loaded", zap.String("path", libPath))
	return &nativeEngine{swapFn: fn, keypairEnv: l.opts.KeypairEnv}, nil
}

// quickSwapFn is the bound quick_swap symbol. The engine returns a
// JSON document carrying either the transaction signature or an error
// message.
type quickSwapFn func(tokenTo, tokenFrom string, amount uint64, keypairEnv string) string

// nativeEngine forwards swaps into the loaded library.
type nativeEngine struct {
	swapFn     quickSwapFn
	keypairEnv string
}

func (e *nativeEngine) Name() string { return "native" }

func (e *nativeEngine) Swap(_ context.Context, req engine.Request) (*engine.Result, error) {
	raw := e.swapFn(req.TokenTo, req.TokenFrom, req.Amount, e.keypairEnv)

	var out struct {
		Signature string `json:"signature"`
		InAmount  string `json:"inAmount"`
		OutAmount string `json:"outAmount"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("malformed engine response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("engine: %s", out.Error)
	}
	return &engine.Result{
		Signature: out.Signature,
		InAmount:  out.InAmount,
		OutAmount: out.OutAmount,
	}, nil
}
