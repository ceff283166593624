// Package claims extracts numeric claims from generated text and verifies
// them against the source transcript using fuzzy matching.
package claims

import (
	"regexp"
	"sort"
	"strings"
)

// Claim is a numeric or statistical assertion found in generated text.
type Claim struct {
	// Text is the matched claim, e.g. "80%" or "10,000 pods".
	Text string `json:"text"`
	// Context is the surrounding text window the claim appeared in.
	Context string `json:"context"`
	// Section names the draft section the claim came from.
	Section string `json:"section"`
}

// qualifier is an optional lead-in that marks a number as a metric rather
// than prose. Kept in the context window, not the claim itself.
const qualifier = `(?:(?:reduced|increased|improved|decreased|cut|grew|dropped)(?:\s+by)?\s+|up\s+to\s+|down\s+to\s+|over\s+|around\s+|about\s+)?`

// claimPatterns match percentages, multipliers, dollar amounts, counted
// resources, and time spans. Case-insensitive.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + qualifier + `\d+(?:\.\d+)?\s?%`),
	regexp.MustCompile(`(?i)` + qualifier + `\d+(?:\.\d+)?x\b`),
	regexp.MustCompile(`(?i)\$\d[\d,]*(?:\.\d+)?(?:\s?(?:k|m|bn|million|billion))?`),
	regexp.MustCompile(`(?i)\d[\d,]*\+?\s+(?:pods?|services?|nodes?|clusters?|users?|requests?|microservices?|deployments?|containers?|teams?|engineers?|regions?)\b`),
	regexp.MustCompile(`(?i)\d+(?:\.\d+)?[\s-](?:hours?|minutes?|seconds?|days?|weeks?|months?|years?|ms|milliseconds?)\b`),
}

// structuralContext matches surroundings that mark a number as a structural
// counter rather than a metric (step numbers, section headers, versions).
// Only unambiguous structural uses are excluded; anything doubtful stays
// flagged.
var structuralContext = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:step|section|part|phase|chapter|figure|table|appendix|option|item)\s*$`),
	regexp.MustCompile(`(?i)\bv$`),                // v1.26 style version prefixes
	regexp.MustCompile(`(?i)version\s*$`),         // "version 2"
	regexp.MustCompile(`#+\s*$`),                  // numbered markdown headings
	regexp.MustCompile(`(?i)\b(?:top|first)\s*$`), // "top 3 lessons"
}

const contextRadius = 60

// Extract scans every section of a draft for numeric claims, in
// deterministic order (sections sorted by name, matches in document order).
func Extract(sections map[string]string) []Claim {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Claim
	for _, name := range names {
		out = append(out, extractFromSection(name, sections[name])...)
	}
	return out
}

func extractFromSection(section, text string) []Claim {
	type span struct{ start, end int }
	var spans []span

	for _, pat := range claimPatterns {
		for _, loc := range pat.FindAllStringIndex(text, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var claims []Claim
	lastEnd := -1
	for _, sp := range spans {
		// Drop overlapping matches from different patterns.
		if sp.start < lastEnd {
			continue
		}
		lastEnd = sp.end

		before := text[:sp.start]
		if isStructural(before) {
			continue
		}

		claims = append(claims, Claim{
			Text:    strings.TrimSpace(text[sp.start:sp.end]),
			Context: contextWindow(text, sp.start, sp.end),
			Section: section,
		})
	}
	return claims
}

func isStructural(before string) bool {
	for _, pat := range structuralContext {
		if pat.MatchString(before) {
			return true
		}
	}
	return false
}

func contextWindow(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
