// Package checks implements the validation stages that gate publication of
// generated documents: transcript quality, entity consistency, analysis
// depth, metric fabrication, and subject drift.
//
// Every checker is a pure function of its input documents and its immutable
// thresholds: expected-shape failures are returned as verdicts, never as
// errors.
package checks

// Stage identifiers used in verdicts and reports.
const (
	StageTranscript  = "transcript_quality"
	StageEntity      = "entity_consistency"
	StageAnalysis    = "analysis_depth"
	StageFabrication = "metric_fabrication"
	StageDrift       = "subject_drift"
)
