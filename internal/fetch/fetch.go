// Package fetch acquires asset payloads from a mirror into local files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fetcher retrieves one asset payload into destPath. Implementations must
// either produce the complete file at destPath or leave nothing behind.
type Fetcher interface {
	Fetch(ctx context.Context, sourceRef, destPath string) error
}

// HTTPFetcher downloads assets over HTTP from a mirror base URL.
type HTTPFetcher struct {
	base    string
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// NewHTTP builds an HTTPFetcher. A zero timeout disables the per-download
// deadline; ctx cancellation still applies.
func NewHTTP(base string, timeout time.Duration, log *zap.Logger) *HTTPFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPFetcher{
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{},
		timeout: timeout,
		log:     log,
	}
}

// Fetch downloads base/sourceRef to destPath. The payload is written to a
// .part file first and renamed into place only after the full body has
// been read, so a failed download never leaves a truncated destination.
func (f *HTTPFetcher) Fetch(ctx context.Context, sourceRef, destPath string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	u, err := f.sourceURL(sourceRef)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", sourceRef, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", sourceRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", sourceRef, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating download dir: %w", err)
	}

	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmpPath, err)
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("downloading %s: %w", sourceRef, err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing %s: %w", destPath, err)
	}

	f.log.Debug("fetched asset",
		zap.String("source", sourceRef),
		zap.Int64("bytes", n))
	return nil
}

// sourceURL joins the mirror base with the source reference.
func (f *HTTPFetcher) sourceURL(sourceRef string) (string, error) {
	raw := f.base + "/" + strings.TrimLeft(sourceRef, "/")
	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("bad source url %s: %w", raw, err)
	}
	return raw, nil
}
