package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorst(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusPass},
		{"all pass", []Status{StatusPass, StatusPass}, StatusPass},
		{"warn dominates pass", []Status{StatusPass, StatusWarn, StatusPass}, StatusWarn},
		{"critical dominates all", []Status{StatusWarn, StatusCritical, StatusPass}, StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Worst(tt.statuses...))
		})
	}
}

func TestStatusExitCode(t *testing.T) {
	require.Equal(t, 0, StatusPass.ExitCode())
	require.Equal(t, 1, StatusWarn.ExitCode())
	require.Equal(t, 2, StatusCritical.ExitCode())
}

func TestVerdictAdd(t *testing.T) {
	v := NewVerdict("some_stage")
	require.Equal(t, StatusPass, v.Status)

	v.Add(Check{Name: "ok", Passed: true})
	require.Equal(t, StatusPass, v.Status)
	require.Empty(t, v.Messages)

	v.Add(Check{Name: "soft", Passed: false, Status: StatusWarn, Message: "soft failure"})
	require.Equal(t, StatusWarn, v.Status)
	require.Equal(t, []string{"soft failure"}, v.Messages)

	v.Add(Check{Name: "hard", Passed: false, Status: StatusCritical, Message: "hard failure"})
	require.Equal(t, StatusCritical, v.Status)

	// A later WARN never lowers an established CRITICAL.
	v.Add(Check{Name: "soft2", Passed: false, Status: StatusWarn, Message: "another"})
	require.Equal(t, StatusCritical, v.Status)

	require.Len(t, v.Checks, 4)
	require.Len(t, v.Failed(), 3)
}

func TestVerdictAddDefaultsFailedStatusToCritical(t *testing.T) {
	v := NewVerdict("stage")
	v.Add(Check{Name: "unset", Passed: false, Message: "failed"})
	require.Equal(t, StatusCritical, v.Status)
	require.Equal(t, StatusCritical, v.Checks[0].Status)
}

func TestVerdictCheckLookup(t *testing.T) {
	v := NewVerdict("stage")
	v.Add(Check{Name: "a", Passed: true})
	v.Add(Check{Name: "b", Passed: false, Status: StatusWarn, Message: "b failed"})

	require.NotNil(t, v.Check("a"))
	require.True(t, v.Check("a").Passed)
	require.NotNil(t, v.Check("b"))
	require.False(t, v.Check("b").Passed)
	require.Nil(t, v.Check("missing"))
}

func TestPipelineReportStatus(t *testing.T) {
	report := &PipelineReport{
		Verdicts: []Verdict{
			{Stage: "one", Status: StatusPass},
			{Stage: "two", Status: StatusWarn},
		},
	}
	require.Equal(t, StatusWarn, report.Status())

	report.Verdicts = append(report.Verdicts, Verdict{Stage: "three", Status: StatusCritical})
	require.Equal(t, StatusCritical, report.Status())
}

func TestPipelineReportJSONRoundTrip(t *testing.T) {
	score := 0.71
	report := &PipelineReport{
		RunID:   "run-1",
		Profile: "deep",
		Verdicts: []Verdict{
			{Stage: "transcript_quality", Status: StatusPass},
			{Stage: "technical_depth", Status: StatusWarn, Score: &score, Messages: []string{"below ideal"}},
		},
		FinalScore: &score,
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded PipelineReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, report.RunID, decoded.RunID)
	require.Len(t, decoded.Verdicts, 2)
	require.NotNil(t, decoded.FinalScore)
	require.InDelta(t, 0.71, *decoded.FinalScore, 1e-9)
}
