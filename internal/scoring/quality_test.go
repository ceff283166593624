package scoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

// richSection builds markdown that satisfies the word minimum and carries
// every formatting element kind.
func richSection(name string, minWords int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", name)
	b.WriteString("- the first point made\n- the second point made\n\n")
	b.WriteString("See [the docs](https://example.com) and run `kubectl get pods` to confirm.\n\n")
	for b.Len() == 0 || len(strings.Fields(b.String())) < minWords {
		b.WriteString("more detail about what the team actually shipped and why it mattered ")
	}
	return b.String()
}

func goodCaseStudy() *models.Draft {
	p := config.NewStandard()
	sections := map[string]string{}
	for _, name := range p.Quality.RequiredSections {
		sections[name] = richSection(name, p.Quality.MinWords[name])
	}
	// Three well-known topic mentions push topic richness to full score.
	sections["Solution"] += "\n\nBuilt on Kubernetes with Prometheus metrics and Helm releases."
	return &models.Draft{Sections: sections}
}

func TestQualityScorePerfectDraft(t *testing.T) {
	scorer := NewQualityScorer(config.NewStandard())
	score, b := scorer.Score(goodCaseStudy())

	require.InDelta(t, 1.0, b.Structure, 1e-9)
	require.InDelta(t, 1.0, b.ContentDepth, 1e-9)
	require.InDelta(t, 1.0, b.TopicMentions, 1e-9)
	require.InDelta(t, 1.0, b.Formatting, 1e-9)
	require.InDelta(t, 1.0, score, 1e-9)
	require.Empty(t, b.MissingSections)
	require.Empty(t, b.ThinSections)
	require.Empty(t, b.FormattingGaps)
}

func TestQualityScoreMissingSections(t *testing.T) {
	draft := goodCaseStudy()
	delete(draft.Sections, "Impact")
	delete(draft.Sections, "Conclusion")

	scorer := NewQualityScorer(config.NewStandard())
	_, b := scorer.Score(draft)
	require.InDelta(t, 0.6, b.Structure, 1e-9)
	require.ElementsMatch(t, []string{"Impact", "Conclusion"}, b.MissingSections)
	// Missing sections contribute zero to content depth.
	require.InDelta(t, 0.6, b.ContentDepth, 1e-9)
}

func TestQualityScoreThinSection(t *testing.T) {
	draft := goodCaseStudy()
	draft.Sections["Challenge"] = "only a few words here" // 5 of 100 required

	scorer := NewQualityScorer(config.NewStandard())
	_, b := scorer.Score(draft)
	require.Len(t, b.ThinSections, 1)
	require.Contains(t, b.ThinSections[0], "Challenge")
	// 4 full sections plus 5/100 for the thin one, averaged over 5.
	require.InDelta(t, (4.0+0.05)/5.0, b.ContentDepth, 1e-9)
}

func TestQualityScoreTopicMentionSteps(t *testing.T) {
	tests := []struct {
		mentions []string
		want     float64
	}{
		{nil, 0.0},
		{[]string{"Kubernetes"}, 0.5},
		{[]string{"Kubernetes", "Prometheus"}, 0.8},
		{[]string{"Kubernetes", "Prometheus", "Helm"}, 1.0},
		{[]string{"Kubernetes", "Prometheus", "Helm", "Envoy"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d mentions", len(tt.mentions)), func(t *testing.T) {
			draft := &models.Draft{Sections: map[string]string{
				"Overview": "The team shipped a platform using " + strings.Join(tt.mentions, " and ") + ".",
			}}
			scorer := NewQualityScorer(config.NewStandard())
			_, b := scorer.Score(draft)
			require.InDelta(t, tt.want, b.TopicMentions, 1e-9)
		})
	}
}

func TestQualityScoreFormattingPenalty(t *testing.T) {
	t.Run("plain prose loses every element", func(t *testing.T) {
		draft := &models.Draft{Sections: map[string]string{
			"Overview": "Just plain prose with nothing structured about it at all.",
		}}
		scorer := NewQualityScorer(config.NewStandard())
		_, b := scorer.Score(draft)
		require.Len(t, b.FormattingGaps, 4)
		require.Zero(t, b.Formatting)
	})

	t.Run("heading only", func(t *testing.T) {
		draft := &models.Draft{Sections: map[string]string{
			"Overview": "# Overview\n\nPlain prose underneath.",
		}}
		scorer := NewQualityScorer(config.NewStandard())
		_, b := scorer.Score(draft)
		require.Len(t, b.FormattingGaps, 3)
		require.InDelta(t, 0.25, b.Formatting, 1e-9)
	})
}

func TestQualityValidate(t *testing.T) {
	scorer := NewQualityScorer(config.NewStandard())

	t.Run("good draft passes with no warnings", func(t *testing.T) {
		v, results := scorer.Validate(goodCaseStudy())
		require.Equal(t, StageQuality, v.Stage)
		require.Equal(t, models.StatusPass, v.Status)
		require.True(t, results.Passed)
		require.Empty(t, results.Warnings)
		require.InDelta(t, 0.60, results.Threshold, 1e-9)
	})

	t.Run("above threshold with gaps warns", func(t *testing.T) {
		draft := goodCaseStudy()
		for name, text := range draft.Sections {
			// Strip markdown so formatting scores zero but content survives.
			plain := strings.NewReplacer("#", "", "-", "", "[", "", "]", "", "`", "", "(", " ", ")", " ").Replace(text)
			draft.Sections[name] = plain
		}

		v, results := scorer.Validate(draft)
		require.Equal(t, models.StatusWarn, v.Status)
		require.True(t, results.Passed)
		require.NotEmpty(t, results.Warnings)
	})

	t.Run("empty draft is critical", func(t *testing.T) {
		v, results := scorer.Validate(&models.Draft{})
		require.Equal(t, models.StatusCritical, v.Status)
		require.False(t, results.Passed)
	})
}
