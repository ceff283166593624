package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// StageQuality names the structural/formatting verdict stage.
const StageQuality = "document_quality"

// QualityBreakdown holds the four dimension scores and their diagnostics.
type QualityBreakdown struct {
	Structure       float64  `json:"structure"`
	ContentDepth    float64  `json:"content_depth"`
	TopicMentions   float64  `json:"topic_mentions"`
	Formatting      float64  `json:"formatting"`
	MissingSections []string `json:"missing_sections,omitempty"`
	ThinSections    []string `json:"thin_sections,omitempty"`
	MentionedTopics []string `json:"mentioned_topics,omitempty"`
	FormattingGaps  []string `json:"formatting_gaps,omitempty"`
}

// QualityScorer computes the simpler four-dimension weighted score used by
// the lighter-weight document variant.
type QualityScorer struct {
	profile *config.Profile
	md      goldmark.Markdown
}

// NewQualityScorer creates a scorer bound to an immutable profile.
func NewQualityScorer(p *config.Profile) *QualityScorer {
	return &QualityScorer{profile: p, md: goldmark.New()}
}

// Score computes the composite score and its per-dimension breakdown.
func (s *QualityScorer) Score(draft *models.Draft) (float64, *QualityBreakdown) {
	t := s.profile.Quality
	b := &QualityBreakdown{}

	s.scoreStructure(draft, b)
	s.scoreContentDepth(draft, b)
	s.scoreTopicMentions(draft, b)
	s.scoreFormatting(draft, b)

	total := b.Structure*t.Weights.Structure +
		b.ContentDepth*t.Weights.ContentDepth +
		b.TopicMentions*t.Weights.TopicMentions +
		b.Formatting*t.Weights.Formatting

	return math.Round(total*100) / 100, b
}

// Validate scores the draft and applies the quality threshold. Below
// threshold is CRITICAL; at or above with warnings is WARN.
func (s *QualityScorer) Validate(draft *models.Draft) (*models.Verdict, *models.ValidationResults) {
	t := s.profile.Quality
	score, breakdown := s.Score(draft)

	v := models.NewVerdict(StageQuality)
	v.SetScore(score)

	v.Add(models.Check{
		Name:    "quality_score",
		Passed:  score >= t.Threshold,
		Status:  models.StatusCritical,
		Message: messageIf(score < t.Threshold, fmt.Sprintf("quality score %.2f below threshold %.2f", score, t.Threshold)),
		Details: map[string]any{"score": score, "breakdown": breakdown},
	})

	warnings := breakdownWarnings(breakdown)
	for i, w := range warnings {
		v.Add(models.Check{
			Name:    fmt.Sprintf("quality_warning_%d", i+1),
			Passed:  false,
			Status:  models.StatusWarn,
			Message: w,
		})
	}

	results := &models.ValidationResults{
		Score:     score,
		Passed:    score >= t.Threshold,
		Threshold: t.Threshold,
		Warnings:  warnings,
		Details:   map[string]any{"breakdown": breakdown},
	}
	return v, results
}

func (s *QualityScorer) scoreStructure(draft *models.Draft, b *QualityBreakdown) {
	required := s.profile.Quality.RequiredSections
	if len(required) == 0 {
		b.Structure = 1.0
		return
	}
	for _, name := range required {
		if strings.TrimSpace(draft.Sections[name]) == "" {
			b.MissingSections = append(b.MissingSections, name)
		}
	}
	b.Structure = 1.0 - float64(len(b.MissingSections))/float64(len(required))
}

// scoreContentDepth averages each required section's word-count-to-minimum
// ratio, capping every ratio at 1.0. Missing sections contribute zero.
func (s *QualityScorer) scoreContentDepth(draft *models.Draft, b *QualityBreakdown) {
	required := s.profile.Quality.RequiredSections
	minWords := s.profile.Quality.MinWords
	if len(required) == 0 {
		b.ContentDepth = 1.0
		return
	}

	sum := 0.0
	for _, name := range required {
		text, ok := draft.Sections[name]
		if !ok {
			continue
		}
		floor := minWords[name]
		if floor <= 0 {
			sum += 1.0
			continue
		}
		words := len(strings.Fields(text))
		ratio := capUnit(float64(words) / float64(floor))
		if ratio < 1.0 {
			b.ThinSections = append(b.ThinSections, fmt.Sprintf("%s: %d words (minimum %d)", name, words, floor))
		}
		sum += ratio
	}
	b.ContentDepth = sum / float64(len(required))
}

// scoreTopicMentions applies the stepped richness score:
// 0 mentions is 0.0, 1 is 0.5, 2 is 0.8, 3 or more is 1.0.
func (s *QualityScorer) scoreTopicMentions(draft *models.Draft, b *QualityBreakdown) {
	text := draft.FullText()
	for _, topic := range s.profile.TopicRoster {
		if strings.Contains(text, topic) {
			b.MentionedTopics = append(b.MentionedTopics, topic)
		}
	}

	switch n := len(b.MentionedTopics); {
	case n >= 3:
		b.TopicMentions = 1.0
	case n == 2:
		b.TopicMentions = 0.8
	case n == 1:
		b.TopicMentions = 0.5
	default:
		b.TopicMentions = 0.0
	}
}

// scoreFormatting parses the assembled markdown and deducts a fixed penalty
// for each missing element kind: lists, links, code blocks, headings.
func (s *QualityScorer) scoreFormatting(draft *models.Draft, b *QualityBreakdown) {
	source := []byte(draft.FullText())
	doc := s.md.Parser().Parse(gmtext.NewReader(source))

	var hasList, hasLink, hasCode, hasHeading bool
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.List:
			hasList = true
		case *ast.Link, *ast.AutoLink:
			hasLink = true
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			hasCode = true
		case *ast.Heading:
			hasHeading = true
		}
		return ast.WalkContinue, nil
	})

	for _, el := range []struct {
		name    string
		present bool
	}{
		{"lists", hasList},
		{"links", hasLink},
		{"code blocks", hasCode},
		{"headings", hasHeading},
	} {
		if !el.present {
			b.FormattingGaps = append(b.FormattingGaps, "no "+el.name+" found")
		}
	}

	penalty := s.profile.Quality.FormattingPenalty
	b.Formatting = capUnit(1.0 - float64(len(b.FormattingGaps))*penalty)
}

func breakdownWarnings(b *QualityBreakdown) []string {
	var warnings []string
	if len(b.MissingSections) > 0 {
		warnings = append(warnings, fmt.Sprintf("missing sections: %s", strings.Join(b.MissingSections, ", ")))
	}
	warnings = append(warnings, b.ThinSections...)
	if len(b.MentionedTopics) < 2 {
		warnings = append(warnings, fmt.Sprintf("only %d well-known topics mentioned (minimum 2)", len(b.MentionedTopics)))
	}
	warnings = append(warnings, b.FormattingGaps...)
	return warnings
}
