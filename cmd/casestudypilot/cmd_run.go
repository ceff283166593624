package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/castrojo/casestudypilot-sub001/internal/config"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
	"github.com/castrojo/casestudypilot-sub001/internal/pipeline"
	"github.com/castrojo/casestudypilot-sub001/internal/validation"
)

type runOptions struct {
	videoPath    string
	entityPath   string
	analysisPath string
	draftPath    string

	profileName string
	profileFile string
	overrides   []string

	outputPath string
	format     string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full validation pipeline over a set of documents",
		Long: `Runs every validation stage in order against the collaborator documents
and prints the per-stage verdict log. The transcript and entity gates run
concurrently; the first CRITICAL verdict halts the run.

Exit code is 0 when every stage passed, 1 when any stage warned, and 2 when
a stage failed critically or the run itself errored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.videoPath, "video", "", "Path to video_data.json (required)")
	cmd.Flags().StringVar(&opts.entityPath, "entity", "", "Path to entity_verification.json (required)")
	cmd.Flags().StringVar(&opts.draftPath, "draft", "", "Path to draft.json (required)")
	cmd.Flags().StringVar(&opts.analysisPath, "analysis", "", "Path to deep_analysis.json (required for deep profile)")
	cmd.Flags().StringVar(&opts.profileName, "profile", config.ProfileStandard, "Validation profile (standard or deep)")
	cmd.Flags().StringVar(&opts.profileFile, "profile-file", "", "YAML file overriding profile thresholds")
	cmd.Flags().StringArrayVar(&opts.overrides, "set", nil, "Threshold override as key: value YAML (repeatable)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write the full report JSON to this path")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format (text or json)")

	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("draft")

	return cmd
}

func runPipeline(cmd *cobra.Command, opts *runOptions) error {
	profile, err := loadRunProfile(opts)
	if err != nil {
		return err
	}

	docs, err := loadRunDocuments(opts)
	if err != nil {
		return err
	}

	runner := pipeline.New(profile)
	report, err := runner.Run(cmd.Context(), docs)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		if err := renderVerdictJSON(cmd, report); err != nil {
			return err
		}
	} else {
		renderReport(cmd.OutOrStdout(), report)
	}

	if opts.outputPath != "" {
		if err := writeJSON(opts.outputPath, report); err != nil {
			return err
		}
	}

	if status := report.Status(); status != models.StatusPass {
		return &ValidationFailureError{
			ExitCode: status.ExitCode(),
			Message:  fmt.Sprintf("pipeline result: %s", status),
		}
	}
	return nil
}

func loadRunProfile(opts *runOptions) (*config.Profile, error) {
	var profile *config.Profile
	var err error
	if opts.profileFile != "" {
		profile, err = config.LoadFile(opts.profileFile)
	} else {
		profile, err = config.LoadProfile(opts.profileName)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.overrides) > 0 {
		merged := map[string]any{}
		for _, raw := range opts.overrides {
			var one map[string]any
			if err := yaml.Unmarshal([]byte(raw), &one); err != nil {
				return nil, fmt.Errorf("parsing --set %q: %w", raw, err)
			}
			for k, v := range one {
				merged[k] = v
			}
		}
		if err := profile.ApplyOverrides(merged); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func loadRunDocuments(opts *runOptions) (pipeline.Documents, error) {
	var docs pipeline.Documents

	var video models.VideoData
	if err := loadDocument(validation.KindVideoData, opts.videoPath, &video); err != nil {
		return docs, err
	}
	docs.Video = &video

	var entity models.EntityVerification
	if err := loadDocument(validation.KindEntityVerification, opts.entityPath, &entity); err != nil {
		return docs, err
	}
	docs.Entity = &entity

	var draft models.Draft
	if err := loadDocument(validation.KindDraft, opts.draftPath, &draft); err != nil {
		return docs, err
	}
	docs.Draft = &draft

	if opts.analysisPath != "" {
		var analysis models.DeepAnalysis
		if err := loadDocument(validation.KindDeepAnalysis, opts.analysisPath, &analysis); err != nil {
			return docs, err
		}
		docs.Analysis = &analysis
	}

	return docs, nil
}

func renderVerdictJSON(cmd *cobra.Command, v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), data)
	return err
}
