// Package roster verifies subject names against the list of known member
// organizations using fuzzy name matching.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/sethvargo/go-retry"

	"github.com/castrojo/casestudypilot-sub001/internal/cache"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// DefaultLandscapeURL is the public landscape dataset listing member
// organizations.
const DefaultLandscapeURL = "https://landscape.cncf.io/api/data.json"

// MemberConfidenceFloor is the minimum fuzzy-match confidence for a name to
// count as a roster member.
const MemberConfidenceFloor = 0.70

// nameSuffixes are legal-entity suffixes stripped before comparison, checked
// against the lowercased name.
var nameSuffixes = []string{
	" inc.", " inc", " llc", " ltd.", " ltd", " corporation", " corp.", " corp",
}

// Client fetches the entity roster and matches claimed names against it.
type Client struct {
	LandscapeURL string
	HTTPClient   *http.Client
	MaxRetries   uint64
	// Cache, when set, stores the fetched member list across runs.
	Cache *cache.Cache

	lev *metrics.Levenshtein
}

// NewClient creates a Client with sane defaults.
func NewClient() *Client {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &Client{
		LandscapeURL: DefaultLandscapeURL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		MaxRetries:   3,
		lev:          lev,
	}
}

// landscapeDoc mirrors the slice of the landscape dataset we consume.
type landscapeDoc struct {
	Data struct {
		Categories []struct {
			Name          string `json:"name"`
			Subcategories []struct {
				Name  string `json:"name"`
				Items []struct {
					Name string `json:"name"`
				} `json:"items"`
			} `json:"subcategories"`
		} `json:"categories"`
	} `json:"data"`
}

// FetchMembers downloads the roster and extracts end-user member names.
func (c *Client) FetchMembers(ctx context.Context) ([]string, error) {
	cacheKey := "members:" + c.LandscapeURL
	if c.Cache != nil {
		var cached []string
		if hit, err := c.Cache.Get(cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	var doc landscapeDoc
	backoff := retry.WithMaxRetries(c.MaxRetries, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.LandscapeURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return retry.RetryableError(fmt.Errorf("landscape fetch: %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("landscape fetch: %s", resp.Status)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(body, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch landscape data: %w", err)
	}

	var members []string
	for _, cat := range doc.Data.Categories {
		if cat.Name != "CNCF Members" {
			continue
		}
		for _, sub := range cat.Subcategories {
			if sub.Name != "End User" {
				continue
			}
			for _, item := range sub.Items {
				if item.Name != "" {
					members = append(members, item.Name)
				}
			}
		}
	}
	sort.Strings(members)

	if c.Cache != nil {
		// Cache failures are not fetch failures.
		_ = c.Cache.Put(cacheKey, members)
	}
	return members, nil
}

// Verify fetches the roster and matches the claimed name against it.
func (c *Client) Verify(ctx context.Context, name string) (*models.EntityVerification, error) {
	members, err := c.FetchMembers(ctx)
	if err != nil {
		return nil, err
	}
	return c.FindBestMatch(name, members), nil
}

// FindBestMatch matches a claimed name against the member list: exact
// normalized match wins outright, otherwise the best token-sort ratio.
func (c *Client) FindBestMatch(query string, members []string) *models.EntityVerification {
	normalizedQuery := NormalizeName(query)

	best := &models.EntityVerification{
		Query:       query,
		MatchedName: query,
		MatchMethod: "none",
	}

	for _, member := range members {
		normalizedMember := NormalizeName(member)

		if normalizedQuery == normalizedMember {
			return &models.EntityVerification{
				Query:       query,
				MatchedName: member,
				Confidence:  1.0,
				IsMember:    true,
				MatchMethod: "exact",
			}
		}

		score := c.tokenSortRatio(normalizedQuery, normalizedMember)
		if score > best.Confidence {
			best.Confidence = score
			best.MatchedName = member
		}
	}

	if best.Confidence >= MemberConfidenceFloor {
		best.IsMember = true
		best.MatchMethod = "fuzzy"
	}
	return best
}

// NormalizeName lowercases and strips legal suffixes for comparison.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range nameSuffixes {
		normalized = strings.TrimSuffix(normalized, suffix)
	}
	return strings.TrimSpace(normalized)
}

func (c *Client) tokenSortRatio(a, b string) float64 {
	return strutil.Similarity(sortTokens(a), sortTokens(b), c.lev)
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// sortTokens splits on non-alphanumerics so "Mercedes-Benz" and
// "Mercedes Benz" tokenize identically.
func sortTokens(s string) string {
	var tokens []string
	for _, tok := range tokenSplit.Split(s, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
