package native

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const downloadTimeout = 120 * time.Second

// fetcher downloads and unpacks engine artifacts into a cache
// directory, verifying checksums when one is pinned.
type fetcher struct {
	client   *http.Client
	cacheDir string

	// checksums maps artifact name to its expected hex sha256.
	// Empty means verification is skipped for that artifact.
	checksums map[string]string
}

func newFetcher(cacheDir string, checksums map[string]string) *fetcher {
	return &fetcher{
		client:    &http.Client{Timeout: downloadTimeout},
		cacheDir:  cacheDir,
		checksums: checksums,
	}
}

// Ensure returns the local path of the unpacked library for the given
// artifact, downloading it on first use. The cached copy is reused on
// subsequent calls.
func (f *fetcher) Ensure(ctx context.Context, url, name string) (string, error) {
	libPath := filepath.Join(f.cacheDir, strings.TrimSuffix(name, ".tar.gz"))
	if _, err := os.Stat(libPath); err == nil {
		return libPath, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return "", err
	}

	if want := f.checksums[name]; want != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != want {
			return "", fmt.Errorf("%w: %s: got %s want %s", ErrChecksumMismatch, name, got, want)
		}
	}

	if err := f.unpack(data, libPath); err != nil {
		return "", fmt.Errorf("unpack %s: %w", name, err)
	}
	return libPath, nil
}

func (f *fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download engine artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download engine artifact: unexpected status %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// unpack extracts the single library file from a tar.gz archive.
func (f *fetcher) unpack(data []byte, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		// Extract to a temp file and rename into place only once the
		// copy completes, so a failed unpack never leaves a partial
		// file that Ensure would mistake for a cached artifact.
		tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp")
		if err != nil {
			return err
		}
		if _, err := io.Copy(tmp, tr); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		if err := os.Chmod(tmp.Name(), 0o755); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		return os.Rename(tmp.Name(), dest)
	}
	return fmt.Errorf("archive contains no library file")
}

// defaultCacheDir is where downloaded engines live between runs.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "jupswap", "engine", "v"+Version)
}
