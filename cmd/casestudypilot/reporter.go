package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/castrojo/casestudypilot-sub001/internal/models"
)

func marshalIndent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(data), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// renderVerdict prints one stage verdict in the requested format.
func renderVerdict(w io.Writer, v *models.Verdict, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	fmt.Fprintf(w, "%s: %s\n", v.Stage, v.Status)
	if v.Score != nil {
		fmt.Fprintf(w, "score: %.2f\n", *v.Score)
	}
	for _, c := range v.Checks {
		marker := "ok"
		if !c.Passed {
			marker = strings.ToLower(string(c.Status))
		}
		line := fmt.Sprintf("  [%s] %s", marker, c.Name)
		if c.Message != "" {
			line += ": " + c.Message
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

// renderReport prints the full pipeline report as an aligned table with one
// row per stage.
func renderReport(w io.Writer, report *models.PipelineReport) {
	fmt.Fprintf(w, "run %s (profile: %s)\n\n", report.RunID, report.Profile)

	headers := []string{"STAGE", "STATUS", "SCORE", "NOTES"}
	rows := make([][]string, 0, len(report.Verdicts))
	for _, v := range report.Verdicts {
		score := "-"
		if v.Score != nil {
			score = fmt.Sprintf("%.2f", *v.Score)
		}
		notes := ""
		if len(v.Messages) > 0 {
			notes = v.Messages[0]
			if len(v.Messages) > 1 {
				notes += fmt.Sprintf(" (+%d more)", len(v.Messages)-1)
			}
		}
		rows = append(rows, []string{v.Stage, string(v.Status), score, notes})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}

	fmt.Fprintln(w)
	if report.Halted {
		fmt.Fprintf(w, "result: %s (halted)\n", report.Status())
		return
	}
	if report.FinalScore != nil {
		fmt.Fprintf(w, "result: %s (final score %.2f)\n", report.Status(), *report.FinalScore)
		return
	}
	fmt.Fprintf(w, "result: %s\n", report.Status())
}
