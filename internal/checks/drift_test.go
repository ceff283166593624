package checks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

func TestDriftDetector(t *testing.T) {
	candidates := config.NewStandard().EntityRoster

	tests := []struct {
		name     string
		verified string
		text     string
		want     models.Status
	}{
		{
			name:     "subject dominates passes",
			verified: "Intuit",
			text:     "Intuit built the platform. Intuit scaled it. Intuit runs it today. Intuit and Intuit again. Spotify inspired parts of the design, as did Spotify's model.",
			want:     models.StatusPass,
		},
		{
			name:     "another entity out-mentions the subject",
			verified: "Intuit",
			text:     "Intuit appears once. Spotify did this. Spotify did that. Spotify again and Spotify once more.",
			want:     models.StatusCritical,
		},
		{
			name:     "subject never mentioned while another is",
			verified: "Intuit",
			text:     "Spotify rearchitected its entire delivery pipeline last year.",
			want:     models.StatusCritical,
		},
		{
			name:     "no candidates mentioned at all passes",
			verified: "Intuit",
			text:     "A large financial software firm rebuilt its infrastructure.",
			want:     models.StatusPass,
		},
		{
			name:     "substring does not count as a mention",
			verified: "Intuit",
			text:     "Intuit worked on intuition and Intuitive design.",
			want:     models.StatusPass,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector := &DriftDetector{Candidates: candidates}
			draft := &models.Draft{Sections: map[string]string{"Overview": tt.text}}
			v := detector.Detect(tt.verified, draft)
			require.Equal(t, StageDrift, v.Stage)
			require.Equal(t, tt.want, v.Status)
		})
	}
}

func TestDriftDetectorMentionCountsInDetails(t *testing.T) {
	detector := &DriftDetector{Candidates: config.NewStandard().EntityRoster}
	draft := &models.Draft{Sections: map[string]string{
		"Overview": "Intuit leads. Intuit follows up. Intuit closes. Intuit x4. Intuit x5. Spotify appears twice: Spotify.",
	}}

	v := detector.Detect("Intuit", draft)
	require.Equal(t, models.StatusPass, v.Status)

	c := v.Check("subject_consistency")
	require.NotNil(t, c)
	require.True(t, c.Passed)
	require.Equal(t, 5, c.Details["expected_mentions"])

	other := v.Check("other_entities_mentioned")
	require.NotNil(t, other)
	require.True(t, other.Passed)
	require.Contains(t, other.Message, "Spotify")
}

func TestDriftDetectorCaseInsensitive(t *testing.T) {
	detector := &DriftDetector{Candidates: []string{"Spotify"}}
	draft := &models.Draft{Sections: map[string]string{
		"Overview": "SPOTIFY and spotify both count, INTUIT too.",
	}}

	v := detector.Detect("Intuit", draft)
	// One INTUIT mention versus two Spotify mentions.
	require.Equal(t, models.StatusCritical, v.Status)
}

func TestDriftDetectorIgnoresVerifiedNameInCandidates(t *testing.T) {
	detector := &DriftDetector{Candidates: []string{"Intuit", "Spotify"}}
	draft := &models.Draft{Sections: map[string]string{
		"Overview": "Intuit did the work.",
	}}

	v := detector.Detect("Intuit", draft)
	require.Equal(t, models.StatusPass, v.Status)
	require.Nil(t, v.Check("other_entities_mentioned"))
}
