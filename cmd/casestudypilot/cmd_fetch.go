package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castrojo/casestudypilot-sub001/internal/cache"
	"github.com/castrojo/casestudypilot-sub001/internal/images"
	"github.com/castrojo/casestudypilot-sub001/internal/models"
	"github.com/castrojo/casestudypilot-sub001/internal/roster"
	"github.com/castrojo/casestudypilot-sub001/internal/youtube"
)

func newYoutubeDataCommand() *cobra.Command {
	var outputPath string
	var baseURL string
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "youtube-data <url>",
		Short: "Fetch a video transcript and write the video data document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := youtube.NewClient()
			if baseURL != "" {
				client.BaseURL = baseURL
			}
			if cacheDir != "" {
				client.Cache = cache.New(cacheDir, cache.DefaultTTL)
			}

			video, err := client.FetchVideoData(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outputPath != "" {
				return writeJSON(outputPath, video)
			}
			out, err := marshalIndent(video)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write video_data.json to this path")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Override the transcript service endpoint")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache fetched transcripts in this directory")
	return cmd
}

func newVerifyCompanyCommand() *cobra.Command {
	var outputPath string
	var landscapeURL string
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "verify-company <name>",
		Short: "Verify a company name against the member roster",
		Long: `Fetches the member roster and fuzzy-matches the given name against it.
Exits 0 when the name resolves to a member and 1 when it does not, so
callers can branch on membership without parsing output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := roster.NewClient()
			if landscapeURL != "" {
				client.LandscapeURL = landscapeURL
			}
			if cacheDir != "" {
				client.Cache = cache.New(cacheDir, cache.DefaultTTL)
			}

			result, err := client.Verify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, merr := marshalIndent(result)
			if merr != nil {
				return merr
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if outputPath != "" {
				if err := writeJSON(outputPath, result); err != nil {
					return err
				}
			}

			if !result.IsMember {
				return &ValidationFailureError{
					ExitCode: models.StatusWarn.ExitCode(),
					Message:  fmt.Sprintf("%q did not match a member organization (best: %q, confidence %.2f)", args[0], result.MatchedName, result.Confidence),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write entity_verification.json to this path")
	cmd.Flags().StringVar(&landscapeURL, "landscape-url", "", "Override the landscape dataset URL")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache the fetched roster in this directory")
	return cmd
}

func newThumbnailsCommand() *cobra.Command {
	var dir string
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "thumbnails <url>...",
		Short: "Download candidate thumbnail images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dl := images.NewDownloader()
			if maxConcurrent > 0 {
				dl.MaxConcurrent = maxConcurrent
			}

			paths, err := dl.Download(cmd.Context(), dir, args)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "images", "Directory to save images into")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum parallel downloads (default 4)")
	return cmd
}
