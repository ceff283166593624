// Package images downloads candidate thumbnail images with bounded
// parallelism. This work has no correctness coupling to the validation
// pipeline; failures here never block a run.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Downloader fetches images concurrently with a worker limit and a
// request-rate cap.
type Downloader struct {
	HTTPClient *http.Client
	// MaxConcurrent bounds the worker pool.
	MaxConcurrent int
	// RequestsPerMinute caps the download rate across all workers.
	RequestsPerMinute int
	MaxRetries        uint64
}

// NewDownloader creates a Downloader with sane defaults.
func NewDownloader() *Downloader {
	return &Downloader{
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxConcurrent:     4,
		RequestsPerMinute: 60,
		MaxRetries:        3,
	}
}

// Download fetches every URL into dir, naming files by index. Returns the
// saved paths in input order.
func (d *Downloader) Download(ctx context.Context, dir string, urls []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(float64(d.RequestsPerMinute)/60.0), 1)

	type item struct {
		index int
		path  string
	}
	results := make([]item, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.MaxConcurrent)

	for i, url := range urls {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}

			path := filepath.Join(dir, fmt.Sprintf("thumb_%03d%s", i+1, extensionFor(url)))
			if err := d.fetchOne(gctx, url, path); err != nil {
				return fmt.Errorf("image %d/%d: %w", i+1, len(urls), err)
			}

			results[i] = item{index: i, path: path}
			slog.Debug("image downloaded", "url", url, "path", path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	paths := make([]string, 0, len(results))
	for _, r := range results {
		paths = append(paths, r.path)
	}
	return paths, nil
}

func (d *Downloader) fetchOne(ctx context.Context, url, path string) error {
	backoff := retry.WithMaxRetries(d.MaxRetries, retry.NewExponential(time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := d.HTTPClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return retry.RetryableError(fmt.Errorf("download %s: %s", url, resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download %s: %s", url, resp.Status)
		}

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(f, resp.Body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func extensionFor(url string) string {
	ext := filepath.Ext(url)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
