package checks

import (
	"fmt"
	"strings"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// EntityChecker gates on the roster matcher's result. Generation stages
// downstream assume a trustworthy subject name, so an unresolved or
// low-confidence name is always CRITICAL.
type EntityChecker struct {
	Thresholds config.EntityThresholds
}

// Validate applies the gate to a single EntityVerification.
func (c *EntityChecker) Validate(ev *models.EntityVerification) *models.Verdict {
	v := models.NewVerdict(StageEntity)
	name := strings.TrimSpace(ev.MatchedName)

	v.Add(models.Check{
		Name:    "entity_resolved",
		Passed:  name != "",
		Status:  models.StatusCritical,
		Message: messageIf(name == "", fmt.Sprintf("no matched entity for query %q", ev.Query)),
	})
	if name == "" {
		return v
	}

	placeholder := isPlaceholder(name, c.Thresholds.Placeholders)
	v.Add(models.Check{
		Name:    "not_generic",
		Passed:  !placeholder,
		Status:  models.StatusCritical,
		Message: messageIf(placeholder, fmt.Sprintf("matched name is a generic placeholder: %q", name)),
	})

	v.Add(models.Check{
		Name:    "minimum_length",
		Passed:  len(name) >= 2,
		Status:  models.StatusCritical,
		Message: messageIf(len(name) < 2, fmt.Sprintf("matched name too short: %q", name)),
	})

	v.Add(models.Check{
		Name:    "confidence_threshold",
		Passed:  ev.Confidence >= c.Thresholds.ConfidenceFloor,
		Status:  models.StatusCritical,
		Message: messageIf(ev.Confidence < c.Thresholds.ConfidenceFloor, fmt.Sprintf("low confidence in entity match: %.2f (minimum %.2f)", ev.Confidence, c.Thresholds.ConfidenceFloor)),
		Details: map[string]any{"confidence": ev.Confidence, "minimum": c.Thresholds.ConfidenceFloor},
	})

	return v
}

func isPlaceholder(name string, denylist []string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, generic := range denylist {
		if lower == generic {
			return true
		}
	}
	return false
}
