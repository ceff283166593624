package models

import (
	"sort"
	"strings"
)

// TranscriptSegment is a single timed span of transcript text.
// Insertion order is chronological order.
type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// VideoData is the document produced by the transcript-acquisition
// collaborator. It is never mutated after creation.
type VideoData struct {
	VideoID         string              `json:"video_id"`
	URL             string              `json:"url"`
	Title           string              `json:"title,omitempty"`
	Transcript      string              `json:"transcript"`
	Segments        []TranscriptSegment `json:"transcript_segments"`
	DurationSeconds float64             `json:"duration_seconds"`
}

// NewVideoData builds a VideoData from raw segments, deriving the full
// transcript text and the duration from the last segment.
func NewVideoData(videoID, url string, segments []TranscriptSegment) *VideoData {
	vd := &VideoData{
		VideoID:  videoID,
		URL:      url,
		Segments: segments,
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	vd.Transcript = strings.Join(texts, " ")

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		vd.DurationSeconds = last.Start + last.Duration
	}

	return vd
}

// WordCount returns the number of whitespace-delimited words in the transcript.
func (vd *VideoData) WordCount() int {
	return len(strings.Fields(vd.Transcript))
}

// EntityVerification is the result of matching a claimed subject name
// against the entity roster. Produced once per run by the roster matcher;
// read-only input to the entity and drift checks.
type EntityVerification struct {
	Query       string  `json:"query"`
	MatchedName string  `json:"matched_name"`
	Confidence  float64 `json:"confidence"`
	IsMember    bool    `json:"is_member"`
	MatchMethod string  `json:"match_method,omitempty"`
}

// Topic is a technology or project identified in the deep analysis.
type Topic struct {
	Name         string `json:"name"`
	UsageContext string `json:"usage_context,omitempty"`
	Category     string `json:"category,omitempty"`
}

// IntegrationPattern describes how two or more topics interoperate.
type IntegrationPattern struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TechnicalMetric is a quantitative claim extracted during analysis,
// anchored to its supporting transcript quote.
type TechnicalMetric struct {
	Metric          string `json:"metric"`
	Improvement     string `json:"improvement,omitempty"`
	TranscriptQuote string `json:"transcript_quote"`
}

// AnalysisSection is one narrative section of a deep analysis.
type AnalysisSection struct {
	Text      string `json:"text"`
	WordCount int    `json:"word_count,omitempty"`
}

// Words returns the section's word count, deriving it from the text when
// the generator did not supply one.
func (s AnalysisSection) Words() int {
	if s.WordCount > 0 {
		return s.WordCount
	}
	return len(strings.Fields(s.Text))
}

// DeepAnalysis is the intermediate document produced by the generation
// collaborator. It is validated, never repaired.
type DeepAnalysis struct {
	Topics                  []Topic                    `json:"topics"`
	CoverageLayers          map[string]string          `json:"coverage_layers"`
	IntegrationPatterns     []IntegrationPattern       `json:"integration_patterns"`
	TechnicalMetrics        []TechnicalMetric          `json:"technical_metrics,omitempty"`
	ScreenshotOpportunities []ScreenshotOpportunity    `json:"screenshot_opportunities,omitempty"`
	Sections                map[string]AnalysisSection `json:"sections"`
}

// ScreenshotOpportunity marks a transcript timestamp worth capturing.
type ScreenshotOpportunity struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Description      string  `json:"description,omitempty"`
}

// KeyMetric is a headline metric summarized for the final document.
type KeyMetric struct {
	Metric      string `json:"metric"`
	Improvement string `json:"improvement,omitempty"`
}

// Draft is a generated document under test: a mapping of section name to
// markdown text, plus the structured summaries the generator emits alongside.
type Draft struct {
	Sections   map[string]string `json:"sections"`
	Topics     []Topic           `json:"topic_list,omitempty"`
	KeyMetrics []KeyMetric       `json:"key_metrics_summary,omitempty"`
}

// FullText concatenates every section in an unspecified but deterministic
// order, for whole-document scans.
func (d *Draft) FullText() string {
	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(d.Sections[name])
	}
	return b.String()
}

// WordCount returns the total word count across all sections.
func (d *Draft) WordCount() int {
	count := 0
	for _, text := range d.Sections {
		count += len(strings.Fields(text))
	}
	return count
}
