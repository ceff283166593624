package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

func writeTestFile(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func healthyVideoFile(t *testing.T, dir string) string {
	segments := make([]models.TranscriptSegment, 0, 60)
	for i := range 60 {
		segments = append(segments, models.TranscriptSegment{
			Text:     "Intuit runs Kubernetes with Prometheus and Helm at serious scale",
			Start:    float64(i) * 5,
			Duration: 5,
		})
	}
	video := models.NewVideoData("abcdefghijk", "https://youtube.com/watch?v=abcdefghijk", segments)
	return writeTestFile(t, dir, "video_data.json", video)
}

func healthyDraftFile(t *testing.T, dir string) string {
	sections := map[string]string{}
	for name, minWords := range map[string]int{
		"Overview": 50, "Challenge": 100, "Solution": 150, "Impact": 100, "Conclusion": 50,
	} {
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n- a point\n- another\n\nSee [the talk](https://example.com) and `kubectl` output.\n\n", name)
		for len(strings.Fields(b.String())) < minWords {
			b.WriteString("Intuit runs Kubernetes with Prometheus and Helm in production every single day ")
		}
		sections[name] = b.String()
	}
	return writeTestFile(t, dir, "draft.json", &models.Draft{Sections: sections})
}

func TestValidateTranscriptCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("healthy transcript exits clean", func(t *testing.T) {
		out, err := runCommand(t, "validate", "transcript", healthyVideoFile(t, dir))
		require.NoError(t, err)
		require.Contains(t, out, "transcript_quality: PASS")
	})

	t.Run("empty transcript is a critical failure", func(t *testing.T) {
		path := writeTestFile(t, dir, "empty.json", &models.VideoData{
			VideoID: "abcdefghijk", Transcript: "", Segments: []models.TranscriptSegment{},
		})
		_, err := runCommand(t, "validate", "transcript", path)
		require.Error(t, err)

		var vfe *ValidationFailureError
		require.ErrorAs(t, err, &vfe)
		require.Equal(t, ExitCritical, vfe.ExitCode)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := runCommand(t, "validate", "transcript", filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		var vfe *ValidationFailureError
		require.False(t, errors.As(err, &vfe))
	})
}

func TestValidateEntityCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("placeholder entity is critical", func(t *testing.T) {
		path := writeTestFile(t, dir, "entity.json", &models.EntityVerification{
			Query: "the company", MatchedName: "Company", Confidence: 0.99, IsMember: true,
		})
		_, err := runCommand(t, "validate", "entity", path)
		var vfe *ValidationFailureError
		require.ErrorAs(t, err, &vfe)
		require.Equal(t, ExitCritical, vfe.ExitCode)
	})

	t.Run("confident member passes", func(t *testing.T) {
		path := writeTestFile(t, dir, "entity_ok.json", &models.EntityVerification{
			Query: "Intuit", MatchedName: "Intuit", Confidence: 0.95, IsMember: true,
		})
		out, err := runCommand(t, "validate", "entity", path)
		require.NoError(t, err)
		require.Contains(t, out, "entity_consistency: PASS")
	})
}

func TestValidateQualityCommandWritesResults(t *testing.T) {
	dir := t.TempDir()
	draftPath := healthyDraftFile(t, dir)
	resultsPath := filepath.Join(dir, "validation_results.json")

	_, err := runCommand(t, "validate", "quality", draftPath, "--results", resultsPath)
	require.NoError(t, err)

	data, err := os.ReadFile(resultsPath)
	require.NoError(t, err)

	var results models.ValidationResults
	require.NoError(t, json.Unmarshal(data, &results))
	require.True(t, results.Passed)
	require.InDelta(t, 0.60, results.Threshold, 1e-9)
}

func TestRunCommandFullPipeline(t *testing.T) {
	dir := t.TempDir()
	videoPath := healthyVideoFile(t, dir)
	draftPath := healthyDraftFile(t, dir)
	entityPath := writeTestFile(t, dir, "entity.json", &models.EntityVerification{
		Query: "Intuit", MatchedName: "Intuit", Confidence: 0.95, IsMember: true,
	})
	reportPath := filepath.Join(dir, "report.json")

	out, err := runCommand(t, "run",
		"--video", videoPath,
		"--entity", entityPath,
		"--draft", draftPath,
		"--output", reportPath,
	)
	require.NoError(t, err)
	require.Contains(t, out, "result: PASS")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)

	var report models.PipelineReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.False(t, report.Halted)
	require.Len(t, report.Verdicts, 5)
}

func TestRunCommandExitsOnFabrication(t *testing.T) {
	dir := t.TempDir()
	videoPath := healthyVideoFile(t, dir)
	entityPath := writeTestFile(t, dir, "entity.json", &models.EntityVerification{
		Query: "Intuit", MatchedName: "Intuit", Confidence: 0.95, IsMember: true,
	})

	draft := &models.Draft{Sections: map[string]string{
		"Overview":   strings.Repeat("Intuit ships software to customers constantly here ", 10),
		"Challenge":  strings.Repeat("Intuit ships software to customers constantly here ", 20),
		"Solution":   strings.Repeat("Intuit ships software to customers constantly here ", 30),
		"Impact":     "Costs dropped by 97% and the fleet grew to 12,345 nodes overnight.",
		"Conclusion": strings.Repeat("Intuit ships software to customers constantly here ", 10),
	}}
	draftPath := writeTestFile(t, dir, "draft.json", draft)

	_, err := runCommand(t, "run", "--video", videoPath, "--entity", entityPath, "--draft", draftPath)
	var vfe *ValidationFailureError
	require.ErrorAs(t, err, &vfe)
	require.Equal(t, ExitCritical, vfe.ExitCode)
}

func TestRunCommandProfileOverrides(t *testing.T) {
	dir := t.TempDir()
	videoPath := healthyVideoFile(t, dir)
	draftPath := healthyDraftFile(t, dir)
	entityPath := writeTestFile(t, dir, "entity.json", &models.EntityVerification{
		Query: "Intuit", MatchedName: "Intuit", Confidence: 0.95, IsMember: true,
	})

	// An impossible transcript minimum forces a WARN at the gate.
	_, err := runCommand(t, "run",
		"--video", videoPath,
		"--entity", entityPath,
		"--draft", draftPath,
		"--set", "transcript: {min_words: 1000000}",
	)
	var vfe *ValidationFailureError
	require.ErrorAs(t, err, &vfe)
	require.Equal(t, ExitWarn, vfe.ExitCode)
}
