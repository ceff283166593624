package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/castrojo/casestudypilot-sub001/internal/checks"
	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
	"github.com/castrojo/casestudypilot-sub001/internal/scoring"
	"github.com/castrojo/casestudypilot-sub001/internal/validation"
)

// validateOptions are the flags shared by every validate subcommand.
type validateOptions struct {
	profileName string
	profileFile string
	format      string
}

func (o *validateOptions) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.profileName, "profile", config.ProfileStandard, "Validation profile (standard or deep)")
	cmd.PersistentFlags().StringVar(&o.profileFile, "profile-file", "", "YAML file overriding profile thresholds")
	cmd.PersistentFlags().StringVar(&o.format, "format", "text", "Output format (text or json)")
}

func (o *validateOptions) loadProfile() (*config.Profile, error) {
	if o.profileFile != "" {
		return config.LoadFile(o.profileFile)
	}
	return config.LoadProfile(o.profileName)
}

// loadDocument reads a collaborator document from disk, schema-validates it,
// and unmarshals it into out.
func loadDocument(kind, path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return validation.Validate(kind, data, out)
}

// verdictError converts a non-passing verdict into the typed error that
// drives the exit-code contract.
func verdictError(v *models.Verdict) error {
	if v.Status == models.StatusPass {
		return nil
	}
	return &ValidationFailureError{
		ExitCode: v.Status.ExitCode(),
		Message:  fmt.Sprintf("%s: %s", v.Stage, v.Status),
	}
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run a single validation stage against a document",
	}
	opts.register(cmd)

	cmd.AddCommand(newValidateTranscriptCommand(opts))
	cmd.AddCommand(newValidateEntityCommand(opts))
	cmd.AddCommand(newValidateAnalysisCommand(opts))
	cmd.AddCommand(newValidateMetricsCommand(opts))
	cmd.AddCommand(newValidateDriftCommand(opts))
	cmd.AddCommand(newValidateDepthCommand(opts))
	cmd.AddCommand(newValidateQualityCommand(opts))

	return cmd
}

func newValidateTranscriptCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <video_data.json>",
		Short: "Check transcript sufficiency before any generation work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var video models.VideoData
			if err := loadDocument(validation.KindVideoData, args[0], &video); err != nil {
				return err
			}

			gate := &checks.TranscriptGate{Thresholds: profile.Transcript}
			verdict := gate.Validate(&video)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateEntityCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "entity <entity_verification.json>",
		Aliases: []string{"company"},
		Short:   "Check that the resolved subject entity is concrete and confident",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var entity models.EntityVerification
			if err := loadDocument(validation.KindEntityVerification, args[0], &entity); err != nil {
				return err
			}

			checker := &checks.EntityChecker{Thresholds: profile.Entity}
			verdict := checker.Validate(&entity)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateAnalysisCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analysis <deep_analysis.json>",
		Short: "Check structural completeness of the deep analysis document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var analysis models.DeepAnalysis
			if err := loadDocument(validation.KindDeepAnalysis, args[0], &analysis); err != nil {
				return err
			}

			checker := &checks.AnalysisChecker{Thresholds: profile.Analysis}
			verdict := checker.Validate(&analysis)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateMetricsCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <draft.json> <video_data.json>",
		Short: "Check that every quantitative claim in the draft is grounded in the transcript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var draft models.Draft
			if err := loadDocument(validation.KindDraft, args[0], &draft); err != nil {
				return err
			}
			var video models.VideoData
			if err := loadDocument(validation.KindVideoData, args[1], &video); err != nil {
				return err
			}

			detector := &checks.FabricationDetector{Thresholds: profile.Fabrication}
			verdict, _ := detector.Detect(&draft, video.Transcript)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateDriftCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drift <draft.json> <entity_verification.json>",
		Short: "Check that the draft stays about the verified subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var draft models.Draft
			if err := loadDocument(validation.KindDraft, args[0], &draft); err != nil {
				return err
			}
			var entity models.EntityVerification
			if err := loadDocument(validation.KindEntityVerification, args[1], &entity); err != nil {
				return err
			}

			detector := &checks.DriftDetector{Candidates: profile.EntityRoster}
			verdict := detector.Detect(entity.MatchedName, &draft)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateDepthCommand(opts *validateOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "depth <draft.json> <deep_analysis.json> <video_data.json>",
		Aliases: []string{"refarch"},
		Short:   "Score technical depth of a reference architecture draft",
		Long: `Scores the draft on the five technical depth dimensions and checks word
count and required sections. Metric quality needs the transcript, so the
fabrication matcher runs first to count supported claims.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Depth scoring is a deep-profile concern; default accordingly so
			// thresholds match unless the caller overrides them.
			if opts.profileFile == "" && !cmd.Flags().Changed("profile") {
				opts.profileName = config.ProfileDeep
			}
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var draft models.Draft
			if err := loadDocument(validation.KindDraft, args[0], &draft); err != nil {
				return err
			}
			var analysis models.DeepAnalysis
			if err := loadDocument(validation.KindDeepAnalysis, args[1], &analysis); err != nil {
				return err
			}
			var video models.VideoData
			if err := loadDocument(validation.KindVideoData, args[2], &video); err != nil {
				return err
			}

			detector := &checks.FabricationDetector{Thresholds: profile.Fabrication}
			_, evidence := detector.Detect(&draft, video.Transcript)

			scorer := scoring.NewDepthScorer(profile)
			verdict := scorer.Validate(scoring.DepthInput{
				Draft:           &draft,
				Analysis:        &analysis,
				SupportedClaims: evidence.Supported,
			})
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			return verdictError(verdict)
		},
	}
}

func newValidateQualityCommand(opts *validateOptions) *cobra.Command {
	var resultsPath string

	cmd := &cobra.Command{
		Use:     "quality <draft.json>",
		Aliases: []string{"casestudy"},
		Short:   "Score overall document quality of a case study draft",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := opts.loadProfile()
			if err != nil {
				return err
			}

			var draft models.Draft
			if err := loadDocument(validation.KindDraft, args[0], &draft); err != nil {
				return err
			}

			scorer := scoring.NewQualityScorer(profile)
			verdict, results := scorer.Validate(&draft)
			if err := renderVerdict(cmd.OutOrStdout(), verdict, opts.format); err != nil {
				return err
			}
			if resultsPath != "" {
				if err := writeJSON(resultsPath, results); err != nil {
					return err
				}
			}
			return verdictError(verdict)
		},
	}
	cmd.Flags().StringVarP(&resultsPath, "results", "r", "", "Write validation results JSON to this path")
	return cmd
}
