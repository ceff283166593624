// Package pipeline composes the validation stages into a fail-fast run:
// the transcript and entity gates execute concurrently, every later stage
// runs in dependency order, and the first CRITICAL verdict halts the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/castrojo/casestudypilot-sub001/internal/checks"
	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
	"github.com/castrojo/casestudypilot-sub001/internal/scoring"
)

// Documents are the materialized collaborator outputs for one run. The
// runner never mutates them.
type Documents struct {
	Video  *models.VideoData
	Entity *models.EntityVerification
	// Analysis is required for the deep profile, optional otherwise.
	Analysis *models.DeepAnalysis
	Draft    *models.Draft
}

// Runner executes the staged pipeline under one immutable profile.
type Runner struct {
	profile *config.Profile
}

// New creates a Runner. The profile is captured as-is and must not be
// mutated afterwards.
func New(profile *config.Profile) *Runner {
	return &Runner{profile: profile}
}

// Run executes all stages against the documents and returns the ordered
// verdict log. A missing required document is a hard error; validation
// failures are verdicts, never errors.
func (r *Runner) Run(ctx context.Context, docs Documents) (*models.PipelineReport, error) {
	if docs.Video == nil {
		return nil, fmt.Errorf("missing required document: video_data")
	}
	if docs.Entity == nil {
		return nil, fmt.Errorf("missing required document: entity_verification")
	}
	if docs.Draft == nil {
		return nil, fmt.Errorf("missing required document: draft")
	}
	if r.profile.Name == config.ProfileDeep && docs.Analysis == nil {
		return nil, fmt.Errorf("missing required document: deep_analysis (deep profile)")
	}

	report := &models.PipelineReport{
		RunID:   uuid.NewString(),
		Profile: r.profile.Name,
	}

	// Stages 1 and 2 have no mutual data dependency and may run in parallel.
	var transcriptVerdict, entityVerdict *models.Verdict
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		gate := &checks.TranscriptGate{Thresholds: r.profile.Transcript}
		transcriptVerdict = gate.Validate(docs.Video)
		return nil
	})
	g.Go(func() error {
		checker := &checks.EntityChecker{Thresholds: r.profile.Entity}
		entityVerdict = checker.Validate(docs.Entity)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Both gates ran, so both verdicts are recorded even when one is CRITICAL.
	transcriptHalted := r.record(report, transcriptVerdict)
	entityHalted := r.record(report, entityVerdict)
	if transcriptHalted || entityHalted {
		return report, nil
	}

	if docs.Analysis != nil {
		checker := &checks.AnalysisChecker{Thresholds: r.profile.Analysis}
		if r.record(report, checker.Validate(docs.Analysis)) {
			return report, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	detector := &checks.FabricationDetector{Thresholds: r.profile.Fabrication}
	fabricationVerdict, evidence := detector.Detect(docs.Draft, docs.Video.Transcript)
	if r.record(report, fabricationVerdict) {
		return report, nil
	}

	drift := &checks.DriftDetector{Candidates: r.profile.EntityRoster}
	if r.record(report, drift.Detect(docs.Entity.MatchedName, docs.Draft)) {
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	var terminal *models.Verdict
	if r.profile.Name == config.ProfileDeep {
		scorer := scoring.NewDepthScorer(r.profile)
		terminal = scorer.Validate(scoring.DepthInput{
			Draft:           docs.Draft,
			Analysis:        docs.Analysis,
			SupportedClaims: evidence.Supported,
		})
	} else {
		scorer := scoring.NewQualityScorer(r.profile)
		terminal, _ = scorer.Validate(docs.Draft)
	}
	r.record(report, terminal)
	report.FinalScore = terminal.Score

	return report, nil
}

// record appends a verdict, marks the report halted on CRITICAL, and
// reports whether the pipeline should stop.
func (r *Runner) record(report *models.PipelineReport, v *models.Verdict) bool {
	report.Verdicts = append(report.Verdicts, *v)
	slog.Debug("stage complete", "stage", v.Stage, "status", v.Status, "messages", len(v.Messages))
	if v.Status == models.StatusCritical {
		report.Halted = true
		return true
	}
	return false
}
