package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// AnalysisChecker validates a deep-analysis document for minimum breadth:
// topic counts, coverage layers, integration patterns, metric quotes,
// screenshot opportunities, and per-section length bands. The overall status
// is the worst of the sub-check statuses.
type AnalysisChecker struct {
	Thresholds config.AnalysisThresholds
}

// Validate runs every sub-check and enumerates each outcome so a caller can
// report specific remediation.
func (c *AnalysisChecker) Validate(da *models.DeepAnalysis) *models.Verdict {
	v := models.NewVerdict(StageAnalysis)
	t := c.Thresholds

	c.checkTopics(v, da)
	c.checkLayers(v, da)
	c.checkPatterns(v, da)
	c.checkMetricQuotes(v, da)

	if t.ScreenshotsPass > 0 {
		count := len(da.ScreenshotOpportunities)
		v.Add(models.Check{
			Name:    "screenshot_opportunities",
			Passed:  count >= t.ScreenshotsPass,
			Status:  steppedSeverity(count, t.ScreenshotsWarn),
			Message: messageIf(count < t.ScreenshotsPass, fmt.Sprintf("only %d screenshot opportunities (%d recommended)", count, t.ScreenshotsPass)),
			Details: map[string]any{"count": count},
		})
	}

	c.checkSections(v, da)

	return v
}

func (c *AnalysisChecker) checkTopics(v *models.Verdict, da *models.DeepAnalysis) {
	t := c.Thresholds
	count := countDistinctTopics(da.Topics)
	v.Add(models.Check{
		Name:    "topics",
		Passed:  count >= t.TopicsPass,
		Status:  steppedSeverity(count, t.TopicsWarn),
		Message: messageIf(count < t.TopicsPass, fmt.Sprintf("only %d distinct topics (%d required)", count, t.TopicsPass)),
		Details: map[string]any{"distinct_count": count, "raw_count": len(da.Topics)},
	})
}

func (c *AnalysisChecker) checkLayers(v *models.Verdict, da *models.DeepAnalysis) {
	var missing []string
	for _, layer := range c.Thresholds.RequiredLayers {
		if strings.TrimSpace(da.CoverageLayers[layer]) == "" {
			missing = append(missing, layer)
		}
	}
	var extra []string
	for layer := range da.CoverageLayers {
		if !containsString(c.Thresholds.RequiredLayers, layer) {
			extra = append(extra, layer)
		}
	}
	sort.Strings(extra)

	ok := len(missing) == 0 && len(extra) == 0
	msg := ""
	if len(missing) > 0 {
		msg = fmt.Sprintf("missing or empty coverage layers: %s", strings.Join(missing, ", "))
	} else if len(extra) > 0 {
		msg = fmt.Sprintf("unexpected coverage layers: %s", strings.Join(extra, ", "))
	}
	v.Add(models.Check{
		Name:    "coverage_layers",
		Passed:  ok,
		Status:  models.StatusCritical,
		Message: msg,
		Details: map[string]any{"missing": missing, "unexpected": extra},
	})
}

func (c *AnalysisChecker) checkPatterns(v *models.Verdict, da *models.DeepAnalysis) {
	t := c.Thresholds
	seen := map[string]bool{}
	for _, p := range da.IntegrationPatterns {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key != "" {
			seen[key] = true
		}
	}
	count := len(seen)
	v.Add(models.Check{
		Name:    "integration_patterns",
		Passed:  count >= t.PatternsPass,
		Status:  steppedSeverity(count, t.PatternsWarn),
		Message: messageIf(count < t.PatternsPass, fmt.Sprintf("only %d distinct integration patterns (%d required)", count, t.PatternsPass)),
		Details: map[string]any{"distinct_count": count},
	})
}

func (c *AnalysisChecker) checkMetricQuotes(v *models.Verdict, da *models.DeepAnalysis) {
	minChars := c.Thresholds.MinQuoteChars
	var unquoted []string
	for i, m := range da.TechnicalMetrics {
		if len(strings.TrimSpace(m.TranscriptQuote)) < minChars {
			unquoted = append(unquoted, fmt.Sprintf("metric %d (%s)", i+1, m.Metric))
		}
	}
	v.Add(models.Check{
		Name:    "metric_quotes",
		Passed:  len(unquoted) == 0,
		Status:  models.StatusCritical,
		Message: messageIf(len(unquoted) > 0, fmt.Sprintf("technical metrics missing transcript quotes: %s", strings.Join(unquoted, "; "))),
		Details: map[string]any{"missing_quotes": unquoted},
	})
}

func (c *AnalysisChecker) checkSections(v *models.Verdict, da *models.DeepAnalysis) {
	t := c.Thresholds

	var missing []string
	for _, name := range t.RequiredSections {
		if _, ok := da.Sections[name]; !ok {
			missing = append(missing, name)
		}
	}
	v.Add(models.Check{
		Name:    "sections",
		Passed:  len(missing) == 0,
		Status:  models.StatusCritical,
		Message: messageIf(len(missing) > 0, fmt.Sprintf("missing required sections: %s", strings.Join(missing, ", "))),
		Details: map[string]any{"missing": missing},
	})

	for _, name := range t.RequiredSections {
		section, ok := da.Sections[name]
		if !ok {
			continue
		}
		words := section.Words()
		inBand := words >= t.SectionWordMin && words <= t.SectionWordMax
		v.Add(models.Check{
			Name:    "section_" + name + "_words",
			Passed:  inBand,
			Status:  models.StatusWarn,
			Message: messageIf(!inBand, fmt.Sprintf("section %q is %d words (%d-%d recommended)", name, words, t.SectionWordMin, t.SectionWordMax)),
			Details: map[string]any{"section": name, "word_count": words},
		})
	}
}

// countDistinctTopics counts topic names case-insensitively so duplicate
// spellings count once toward the minimum.
func countDistinctTopics(topics []models.Topic) int {
	seen := map[string]bool{}
	for _, topic := range topics {
		key := strings.ToLower(strings.TrimSpace(topic.Name))
		if key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}

// steppedSeverity implements the warn band used by count gates: at or above
// the warn floor is WARN, below it is CRITICAL.
func steppedSeverity(count, warnFloor int) models.Status {
	if count >= warnFloor {
		return models.StatusWarn
	}
	return models.StatusCritical
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
