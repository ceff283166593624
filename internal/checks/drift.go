package checks

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// DriftDetector verifies that a draft consistently discusses the verified
// subject rather than another known entity. The dominant failure mode is the
// generator conflating two entities discussed near each other in source
// material.
type DriftDetector struct {
	// Candidates is the roster of known entity names checked as drift targets.
	Candidates []string
}

// Detect counts word-boundary occurrences of the verified name against every
// other candidate. CRITICAL when the verified name never appears while
// another candidate does, or when any candidate out-mentions it.
func (d *DriftDetector) Detect(verifiedName string, draft *models.Draft) *models.Verdict {
	v := models.NewVerdict(StageDrift)
	text := draft.FullText()

	verifiedCount := countMentions(text, verifiedName)

	otherCounts := map[string]int{}
	topName, topCount := "", 0
	for _, candidate := range d.Candidates {
		if strings.EqualFold(candidate, verifiedName) {
			continue
		}
		if n := countMentions(text, candidate); n > 0 {
			otherCounts[candidate] = n
			if n > topCount {
				topName, topCount = candidate, n
			}
		}
	}

	drifted := (verifiedCount == 0 && topCount > 0) || topCount > verifiedCount
	v.Add(models.Check{
		Name:   "subject_consistency",
		Passed: !drifted,
		Status: models.StatusCritical,
		Message: messageIf(drifted, fmt.Sprintf(
			"subject drift: expected %q (%d mentions) but draft appears to be about %q (%d mentions)",
			verifiedName, verifiedCount, topName, topCount)),
		Details: map[string]any{
			"expected":          verifiedName,
			"expected_mentions": verifiedCount,
			"other_mentions":    otherCounts,
		},
	})

	// Secondary mentions below the verified count are usually partners or
	// competitors; surface them informationally without degrading the verdict.
	if !drifted && len(otherCounts) > 0 {
		names := make([]string, 0, len(otherCounts))
		for name := range otherCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		v.Add(models.Check{
			Name:    "other_entities_mentioned",
			Passed:  true,
			Message: fmt.Sprintf("other known entities mentioned: %s; verify they are partners or competitors, not the subject", strings.Join(names, ", ")),
			Details: map[string]any{"other_mentions": otherCounts},
		})
	}

	return v
}

// countMentions counts case-insensitive occurrences with word-boundary
// semantics, so possessive and punctuated forms still count.
func countMentions(text, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	pat := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	return len(pat.FindAllStringIndex(text, -1))
}
