// Package scoring computes the composite quality scores that gate
// publication: the five-dimension technical depth score for the deeper
// document variant and the four-dimension structural score for the lighter
// one. Both scorers are pure deterministic functions of their inputs and
// configuration.
package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// StageDepth names the technical depth verdict stage.
const StageDepth = "technical_depth"

// DepthSubScores holds the five independently computed dimensions, each in [0,1].
type DepthSubScores struct {
	ProjectDepth             float64 `json:"project_depth"`
	TechnicalSpecificity     float64 `json:"technical_specificity"`
	ImplementationDetail     float64 `json:"implementation_detail"`
	MetricQuality            float64 `json:"metric_quality"`
	ArchitectureCompleteness float64 `json:"architecture_completeness"`
}

// DepthInput bundles the documents the depth scorer consumes.
type DepthInput struct {
	Draft *models.Draft
	// Analysis supplies the coverage layers; may be nil when the deep
	// analysis stage was skipped.
	Analysis *models.DeepAnalysis
	// SupportedClaims is the count of metric claims the fabrication detector
	// verified against the transcript.
	SupportedClaims int
}

// DepthScorer computes the weighted composite technical depth score.
// This is the terminal quality gate for the deeper document variant.
type DepthScorer struct {
	profile *config.Profile
}

// NewDepthScorer creates a scorer bound to an immutable profile.
func NewDepthScorer(p *config.Profile) *DepthScorer {
	return &DepthScorer{profile: p}
}

var (
	versionPattern = regexp.MustCompile(`\bv?\d+\.\d+(?:\.\d+)?\b`)
	resourceSpec   = regexp.MustCompile(`(?i)\b\d+\s*(?:gb|gib|mb|mib|tb|cores?|vcpus?|cpus?|replicas?|nodes?)\b`)
)

// configKeywords are named configuration markers that indicate concrete,
// copy-pasteable implementation content.
var configKeywords = []string{
	"apiVersion:", "kind:", "metadata:", "spec:", "replicas:", "nodeGroups:", "```",
}

// Score computes the composite and its sub-scores.
func (s *DepthScorer) Score(in DepthInput) (float64, DepthSubScores) {
	sub := DepthSubScores{
		ProjectDepth:             s.projectDepth(in),
		TechnicalSpecificity:     s.technicalSpecificity(in.Draft),
		ImplementationDetail:     s.implementationDetail(in.Draft),
		MetricQuality:            s.metricQuality(in),
		ArchitectureCompleteness: s.architectureCompleteness(in),
	}

	w := s.profile.Depth.Weights
	total := sub.ProjectDepth*w.ProjectDepth +
		sub.TechnicalSpecificity*w.TechnicalSpecificity +
		sub.ImplementationDetail*w.ImplementationDetail +
		sub.MetricQuality*w.MetricQuality +
		sub.ArchitectureCompleteness*w.ArchitectureCompleteness

	return total, sub
}

// Validate scores the input and applies the stage's thresholds, including
// the word-count bands for the assembled document.
func (s *DepthScorer) Validate(in DepthInput) *models.Verdict {
	v := models.NewVerdict(StageDepth)
	t := s.profile.Depth

	score, sub := s.Score(in)
	v.SetScore(score)

	severity := models.StatusWarn
	if score < t.WarnThreshold {
		severity = models.StatusCritical
	}
	v.Add(models.Check{
		Name:    "technical_depth_score",
		Passed:  score >= t.PassThreshold,
		Status:  severity,
		Message: messageIf(score < t.PassThreshold, fmt.Sprintf("technical depth score %.2f below %.2f", score, t.PassThreshold)),
		Details: map[string]any{
			"score":      score,
			"sub_scores": sub,
			"weights":    t.Weights,
		},
	})

	words := in.Draft.WordCount()
	hardOK := words >= t.WordCountHardMin && words <= t.WordCountHardMax
	idealOK := words >= t.WordCountIdealMin && words <= t.WordCountIdealMax
	wordSeverity := models.StatusWarn
	if !hardOK {
		wordSeverity = models.StatusCritical
	}
	v.Add(models.Check{
		Name:    "word_count",
		Passed:  hardOK && idealOK,
		Status:  wordSeverity,
		Message: messageIf(!(hardOK && idealOK), fmt.Sprintf("word count %d outside range %d-%d", words, t.WordCountIdealMin, t.WordCountIdealMax)),
		Details: map[string]any{"word_count": words},
	})

	var missing []string
	for _, name := range t.RequiredSections {
		if strings.TrimSpace(in.Draft.Sections[name]) == "" {
			missing = append(missing, name)
		}
	}
	v.Add(models.Check{
		Name:    "required_sections",
		Passed:  len(missing) == 0,
		Status:  models.StatusCritical,
		Message: messageIf(len(missing) > 0, fmt.Sprintf("missing required sections: %s", strings.Join(missing, ", "))),
		Details: map[string]any{"missing": missing},
	})

	return v
}

// projectDepth is the normalized count of distinct topics with non-trivial
// usage descriptions, saturating at the configured count.
func (s *DepthScorer) projectDepth(in DepthInput) float64 {
	topics := in.Draft.Topics
	if len(topics) == 0 && in.Analysis != nil {
		topics = in.Analysis.Topics
	}

	seen := map[string]bool{}
	for _, topic := range topics {
		key := strings.ToLower(strings.TrimSpace(topic.Name))
		if key == "" || seen[key] {
			continue
		}
		if len(strings.Fields(topic.UsageContext)) >= s.profile.Depth.MinUsageWords {
			seen[key] = true
		}
	}

	saturation := s.profile.Depth.TopicSaturation
	if saturation <= 0 {
		saturation = 1
	}
	return capUnit(float64(len(seen)) / float64(saturation))
}

// technicalSpecificity is the density of concrete technical tokens per
// section, normalized against the configured target density.
func (s *DepthScorer) technicalSpecificity(draft *models.Draft) float64 {
	if len(draft.Sections) == 0 {
		return 0
	}

	hits := 0
	for _, text := range draft.Sections {
		hits += len(versionPattern.FindAllString(text, -1))
		for _, kw := range configKeywords {
			hits += strings.Count(text, kw)
		}
		lower := strings.ToLower(text)
		for _, topic := range s.profile.TopicRoster {
			hits += strings.Count(lower, strings.ToLower(topic))
		}
	}

	density := float64(hits) / float64(len(draft.Sections))
	if s.profile.Depth.TargetDensity <= 0 {
		return 0
	}
	return capUnit(density / s.profile.Depth.TargetDensity)
}

// implementationDetail is the ratio of sections carrying at least one
// concrete implementation indicator.
func (s *DepthScorer) implementationDetail(draft *models.Draft) float64 {
	if len(draft.Sections) == 0 {
		return 0
	}

	concrete := 0
	for _, text := range draft.Sections {
		if hasImplementationIndicator(text) {
			concrete++
		}
	}
	return float64(concrete) / float64(len(draft.Sections))
}

func hasImplementationIndicator(text string) bool {
	if versionPattern.MatchString(text) || resourceSpec.MatchString(text) {
		return true
	}
	for _, kw := range configKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// metricQuality is the ratio of transcript-supported metric claims to total
// sections, capped at 1.0.
func (s *DepthScorer) metricQuality(in DepthInput) float64 {
	if len(in.Draft.Sections) == 0 {
		return 0
	}
	return capUnit(float64(in.SupportedClaims) / float64(len(in.Draft.Sections)))
}

// architectureCompleteness is the ratio of required structural elements
// present (coverage layers plus required sections) to the required total.
func (s *DepthScorer) architectureCompleteness(in DepthInput) float64 {
	layers := s.profile.Analysis.RequiredLayers
	sections := s.profile.Depth.RequiredSections
	total := len(layers) + len(sections)
	if total == 0 {
		return 0
	}

	present := 0
	for _, layer := range layers {
		if in.Analysis != nil && strings.TrimSpace(in.Analysis.CoverageLayers[layer]) != "" {
			present++
		}
	}
	for _, name := range sections {
		if strings.TrimSpace(in.Draft.Sections[name]) != "" {
			present++
		}
	}
	return float64(present) / float64(total)
}

func capUnit(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}

func messageIf(cond bool, msg string) string {
	if cond {
		return msg
	}
	return ""
}
