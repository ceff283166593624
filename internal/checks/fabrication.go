package checks

import (
	"fmt"
	"strings"

	"github.com/castrojo/casestudypilot-sub001/internal/claims"
	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// FabricationDetector verifies every numeric claim in a draft against the
// source transcript. It is read-only over its inputs: a CRITICAL result is
// expected to trigger regeneration by the caller, never local repair.
type FabricationDetector struct {
	Thresholds config.FabricationThresholds
}

// FabricationEvidence carries the per-claim match results so callers can
// present actionable diagnostics without re-deriving them.
type FabricationEvidence struct {
	Matches     []claims.Match `json:"matches"`
	Supported   int            `json:"supported"`
	Unsupported int            `json:"unsupported"`
}

// Detect extracts claims from the draft sections and fuzzy-matches each one
// against the transcript. Any unsupported claim is CRITICAL.
func (d *FabricationDetector) Detect(draft *models.Draft, transcript string) (*models.Verdict, *FabricationEvidence) {
	v := models.NewVerdict(StageFabrication)

	extracted := claims.Extract(draft.Sections)
	matcher := claims.NewMatcher(d.Thresholds.SimilarityFloor)
	matches := matcher.VerifyAll(extracted, transcript)

	evidence := &FabricationEvidence{Matches: matches}
	var unsupported []claims.Match
	for _, m := range matches {
		if m.Supported {
			evidence.Supported++
		} else {
			evidence.Unsupported++
			unsupported = append(unsupported, m)
		}
	}

	if len(unsupported) == 0 {
		v.Add(models.Check{
			Name:   "metrics_in_transcript",
			Passed: true,
			Details: map[string]any{
				"claim_count": len(matches),
			},
		})
		v.SetScore(1.0)
		return v, evidence
	}

	v.Add(models.Check{
		Name:    "metrics_in_transcript",
		Passed:  false,
		Status:  models.StatusCritical,
		Message: d.describe(unsupported),
		Details: map[string]any{
			"claim_count":        len(matches),
			"unsupported_claims": unsupported,
		},
	})
	if len(matches) > 0 {
		v.SetScore(float64(evidence.Supported) / float64(len(matches)))
	}
	return v, evidence
}

func (d *FabricationDetector) describe(unsupported []claims.Match) string {
	maxReported := d.Thresholds.MaxReported
	if maxReported <= 0 {
		maxReported = len(unsupported)
	}

	var parts []string
	for i, m := range unsupported {
		if i >= maxReported {
			break
		}
		parts = append(parts, fmt.Sprintf("%q (section %s, best match %.2f)", m.Claim.Text, m.Claim.Section, m.Score))
	}

	msg := fmt.Sprintf("found %d claim(s) with no transcript support: %s", len(unsupported), strings.Join(parts, "; "))
	if extra := len(unsupported) - maxReported; extra > 0 {
		msg += fmt.Sprintf(" (and %d more)", extra)
	}
	return msg
}
