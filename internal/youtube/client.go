// Package youtube acquires video transcripts from the transcript service.
// Transient failures (timeouts, server errors) are retried with exponential
// backoff; permanent failures (malformed input, not-found) are not.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/castrojo/casestudypilot-sub001/internal/cache"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// DefaultBaseURL is the transcript service endpoint.
const DefaultBaseURL = "https://transcripts.example.com"

const defaultMaxRetries = 3

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of a watch, short, or
// embed URL.
func ExtractVideoID(url string) (string, error) {
	for _, pat := range videoIDPatterns {
		if m := pat.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("could not extract video ID from URL: %s", url)
}

// Client fetches transcripts over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries uint64
	// Cache, when set, stores fetched transcripts keyed by video ID.
	Cache *cache.Cache
}

// NewClient creates a Client with sane defaults.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		MaxRetries: defaultMaxRetries,
	}
}

// FetchVideoData resolves the video ID from the URL, fetches its transcript
// segments, and derives duration and full text.
func (c *Client) FetchVideoData(ctx context.Context, url string) (*models.VideoData, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	segments, err := c.fetchTranscript(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript for video %s: %w", videoID, err)
	}

	return models.NewVideoData(videoID, url, segments), nil
}

func (c *Client) fetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	cacheKey := "transcript:" + videoID
	if c.Cache != nil {
		var cached []models.TranscriptSegment
		if hit, err := c.Cache.Get(cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/transcript/%s", c.BaseURL, videoID)

	var segments []models.TranscriptSegment
	backoff := retry.WithMaxRetries(c.MaxRetries, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			slog.Warn("transcript fetch failed, will retry", "video_id", videoID, "err", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to decode
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("transcript service unavailable, will retry", "video_id", videoID, "status", resp.Status)
			return retry.RetryableError(fmt.Errorf("transcript service: %s", resp.Status))
		default:
			// 4xx responses are permanent; retrying cannot help.
			return fmt.Errorf("transcript service: %s", resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(body, &segments)
	})
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		// Cache failures are not fetch failures.
		_ = c.Cache.Put(cacheKey, segments)
	}
	return segments, nil
}
