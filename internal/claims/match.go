package claims

import (
	"regexp"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Match is the best transcript alignment found for a claim.
type Match struct {
	Claim Claim `json:"claim"`
	// Score is the best token-sort similarity across all transcript windows, in [0,1].
	Score float64 `json:"score"`
	// Window is the transcript span that produced the best score.
	Window string `json:"window,omitempty"`
	// Supported is true when Score met the matcher threshold.
	Supported bool `json:"supported"`
}

// Matcher verifies claims against a transcript using normalized token-sort
// similarity over sliding windows of comparable length.
type Matcher struct {
	// Threshold is the minimum similarity for a claim to count as supported.
	Threshold float64

	lev *metrics.Levenshtein
}

// NewMatcher creates a Matcher with the given support threshold.
func NewMatcher(threshold float64) *Matcher {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &Matcher{Threshold: threshold, lev: lev}
}

var nonWord = regexp.MustCompile(`[^a-z0-9. ]+`)

// normalize lowercases, spells out symbols that transcripts render as words,
// and strips punctuation so "80%" can match "80 percent".
func normalize(s string) []string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "%", " percent")
	s = strings.ReplaceAll(s, "$", " dollars ")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = nonWord.ReplaceAllString(s, " ")
	return strings.Fields(s)
}

func tokenSort(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// Verify returns the best transcript match for a single claim.
func (m *Matcher) Verify(c Claim, transcript string) Match {
	result := Match{Claim: c}

	// Fast path: verbatim presence.
	if c.Text != "" && strings.Contains(strings.ToLower(transcript), strings.ToLower(c.Text)) {
		result.Score = 1.0
		result.Window = c.Text
		result.Supported = true
		return result
	}

	claimTokens := normalize(c.Text)
	if len(claimTokens) == 0 {
		return result
	}
	claimSorted := tokenSort(claimTokens)

	transcriptTokens := normalize(transcript)

	// Windows of comparable length: same size as the claim plus one token of
	// slack in each direction.
	for _, size := range []int{len(claimTokens), len(claimTokens) + 1, len(claimTokens) + 2} {
		if size > len(transcriptTokens) {
			break
		}
		for i := 0; i+size <= len(transcriptTokens); i++ {
			window := transcriptTokens[i : i+size]
			score := strutil.Similarity(claimSorted, tokenSort(window), m.lev)
			if score > result.Score {
				result.Score = score
				result.Window = strings.Join(window, " ")
			}
		}
	}

	result.Supported = result.Score >= m.Threshold
	return result
}

// VerifyAll verifies every claim, preserving input order.
func (m *Matcher) VerifyAll(cs []Claim, transcript string) []Match {
	out := make([]Match, 0, len(cs))
	for _, c := range cs {
		out = append(out, m.Verify(c, transcript))
	}
	return out
}
