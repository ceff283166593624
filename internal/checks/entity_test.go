package checks

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

func TestEntityChecker(t *testing.T) {
	thresholds := config.NewStandard().Entity

	tests := []struct {
		name   string
		entity models.EntityVerification
		want   models.Status
	}{
		{
			name: "confident member passes",
			entity: models.EntityVerification{
				Query: "Spotify", MatchedName: "Spotify", Confidence: 0.95, IsMember: true,
			},
			want: models.StatusPass,
		},
		{
			name: "confidence exactly at floor passes",
			entity: models.EntityVerification{
				Query: "Adobe", MatchedName: "Adobe", Confidence: 0.70, IsMember: true,
			},
			want: models.StatusPass,
		},
		{
			name: "low confidence is critical",
			entity: models.EntityVerification{
				Query: "Spotify", MatchedName: "Spotify", Confidence: 0.45,
			},
			want: models.StatusCritical,
		},
		{
			name:   "empty matched name is critical",
			entity: models.EntityVerification{Query: "whoever"},
			want:   models.StatusCritical,
		},
		{
			name: "placeholder name is critical",
			entity: models.EntityVerification{
				Query: "the company", MatchedName: "Company", Confidence: 0.99,
			},
			want: models.StatusCritical,
		},
		{
			name: "placeholder check is case-insensitive",
			entity: models.EntityVerification{
				Query: "tbd", MatchedName: "TBD", Confidence: 0.99,
			},
			want: models.StatusCritical,
		},
		{
			name: "single character name is critical",
			entity: models.EntityVerification{
				Query: "X", MatchedName: "X", Confidence: 0.99,
			},
			want: models.StatusCritical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &EntityChecker{Thresholds: thresholds}
			v := checker.Validate(&tt.entity)
			require.Equal(t, StageEntity, v.Stage)
			require.Equal(t, tt.want, v.Status)
		})
	}
}

func TestEntityCheckerUnresolvedShortCircuits(t *testing.T) {
	checker := &EntityChecker{Thresholds: config.NewStandard().Entity}
	v := checker.Validate(&models.EntityVerification{Query: "nobody", MatchedName: "  "})

	require.Len(t, v.Checks, 1)
	require.Equal(t, "entity_resolved", v.Checks[0].Name)
	require.Equal(t, models.StatusCritical, v.Status)
}

func TestEntityCheckerReportsFailingCheck(t *testing.T) {
	checker := &EntityChecker{Thresholds: config.NewStandard().Entity}
	v := checker.Validate(&models.EntityVerification{
		Query: "Spotify", MatchedName: "Spotify", Confidence: 0.30,
	})

	c := v.Check("confidence_threshold")
	require.NotNil(t, c)
	require.False(t, c.Passed)
	require.Contains(t, c.Message, "0.30")
}
