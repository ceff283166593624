package checks

import (
	"fmt"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// TranscriptGate checks raw transcript sufficiency before any generation
// output is considered. Deterministic; purely a function of counts.
type TranscriptGate struct {
	Thresholds config.TranscriptThresholds
}

// Validate applies the gate: PASS when all minimums are met, CRITICAL when
// the transcript is empty or under half the character minimum, WARN for
// anything between.
func (g *TranscriptGate) Validate(vd *models.VideoData) *models.Verdict {
	v := models.NewVerdict(StageTranscript)
	t := g.Thresholds

	chars := len(vd.Transcript)
	words := vd.WordCount()
	segments := len(vd.Segments)

	v.Add(models.Check{
		Name:    "transcript_exists",
		Passed:  chars > 0,
		Status:  models.StatusCritical,
		Message: messageIf(chars == 0, "transcript is empty"),
	})
	if chars == 0 {
		return v
	}

	lengthSeverity := models.StatusWarn
	if chars < t.MinChars/2 {
		lengthSeverity = models.StatusCritical
	}
	v.Add(models.Check{
		Name:    "minimum_length",
		Passed:  chars >= t.MinChars,
		Status:  lengthSeverity,
		Message: messageIf(chars < t.MinChars, fmt.Sprintf("transcript too short: %d chars (minimum %d)", chars, t.MinChars)),
		Details: map[string]any{"length": chars, "minimum": t.MinChars},
	})

	v.Add(models.Check{
		Name:    "sufficient_segments",
		Passed:  segments >= t.MinSegments,
		Status:  models.StatusWarn,
		Message: messageIf(segments < t.MinSegments, fmt.Sprintf("too few transcript segments: %d (minimum %d)", segments, t.MinSegments)),
		Details: map[string]any{"segment_count": segments, "minimum": t.MinSegments},
	})

	v.Add(models.Check{
		Name:    "meaningful_content",
		Passed:  words >= t.MinWords,
		Status:  models.StatusWarn,
		Message: messageIf(words < t.MinWords, fmt.Sprintf("transcript lacks meaningful content: only %d words (minimum %d)", words, t.MinWords)),
		Details: map[string]any{"word_count": words, "minimum": t.MinWords},
	})

	return v
}

func messageIf(cond bool, msg string) string {
	if cond {
		return msg
	}
	return ""
}
