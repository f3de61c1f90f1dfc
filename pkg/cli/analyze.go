package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/cli/config"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
	"github.com/secmon-lab/uxlens/pkg/usecase"
	"github.com/secmon-lab/uxlens/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

var errNoFiles = goerr.New("at least one file is required")

type analyzeOutput struct {
	Files    []analyzeFile          `json:"files"`
	Analysis *usecase.Analysis      `json:"analysis"`
	Persist  *usecase.PersistResult `json:"persist,omitempty"`
}

type analyzeFile struct {
	Filename string       `json:"filename"`
	Format   types.Format `json:"format,omitempty"`
	Total    int          `json:"total"`
	Valid    int          `json:"valid"`
	Error    string       `json:"error,omitempty"`
}

func cmdAnalyze() *cli.Command {
	var dryRun bool
	var outputJSON bool
	var repoCfg config.Repository
	var rulesCfg config.Rules

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Classify and score without persisting fixspecs",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the result as JSON",
			Destination: &outputJSON,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, rulesCfg.Flags()...)

	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Analyze telemetry files and write fixspecs",
		ArgsUsage: "FILE [FILE...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return errNoFiles
			}

			files := make([]usecase.FileInput, 0, len(paths))
			for _, p := range paths {
				// #nosec G304 - paths are provided by CLI arguments
				data, err := os.ReadFile(p)
				if err != nil {
					return goerr.Wrap(err, "failed to read input file", goerr.V(usecase.FilenameKey, p))
				}
				files = append(files, usecase.FileInput{Filename: filepath.Base(p), Data: data})
			}

			cls, err := rulesCfg.Classifier(classifier.WithStableIDs())
			if err != nil {
				return goerr.Wrap(err, "failed to load detector rules")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize fixspec store")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithClassifier(cls))

			results, err := uc.IngestFiles(ctx, files)
			if err != nil {
				return err
			}

			out := analyzeOutput{Files: make([]analyzeFile, 0, len(results))}
			failed := 0
			for _, r := range results {
				f := analyzeFile{Filename: r.Filename}
				if r.Err != nil {
					failed++
					f.Error = r.Err.Error()
				} else {
					f.Format = r.Result.Format
					f.Total = r.Result.Stats.Total
					f.Valid = r.Result.Stats.Valid
				}
				out.Files = append(out.Files, f)
			}

			entries := usecase.MergeEntries(results)
			out.Analysis = uc.Analyze(ctx, entries)
			if !dryRun {
				out.Persist = uc.Persist(ctx, out.Analysis.Issues)
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			if outputJSON {
				safe.WriteJSON(ctx, w, out)
			} else {
				printAnalysis(w, &out)
			}

			if failed == len(results) {
				return goerr.New("no file could be ingested", goerr.V("files", len(results)))
			}
			return nil
		},
	}
}

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgHiRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgRed),
	types.SeverityMedium:   color.New(color.FgYellow),
	types.SeverityLow:      color.New(color.FgCyan),
}

func severityLabel(sev types.Severity) string {
	label := fmt.Sprintf("%-8s", sev)
	if c, ok := severityColors[sev]; ok {
		return c.Sprint(label)
	}
	return label
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 90:
		return color.New(color.FgGreen, color.Bold)
	case score >= 70:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printAnalysis(w io.Writer, out *analyzeOutput) {
	bold := color.New(color.Bold)

	_, _ = bold.Fprintln(w, "Files")
	for _, f := range out.Files {
		if f.Error != "" {
			_, _ = fmt.Fprintf(w, "  %s  %s\n", f.Filename, color.RedString("failed: %s", f.Error))
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s  %s  %d/%d valid\n", f.Filename, f.Format, f.Valid, f.Total)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = bold.Fprintf(w, "Issues (%d)\n", len(out.Analysis.Issues))
	for _, issue := range out.Analysis.Issues {
		printIssue(w, issue)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Score: %s\n", scoreColor(out.Analysis.Score).Sprintf("%d/100", out.Analysis.Score))

	if p := out.Persist; p != nil {
		_, _ = fmt.Fprintf(w, "Fixspecs: %d created, %d skipped, %d failed\n",
			len(p.Created), len(p.Skipped), len(p.Failed))
		for _, f := range p.Failed {
			_, _ = fmt.Fprintf(w, "  %s %s\n", f.IssueID, color.RedString(f.Error))
		}
	}
}

func printIssue(w io.Writer, issue *model.Issue) {
	_, _ = fmt.Fprintf(w, "  %s %-14s %s\n", severityLabel(issue.Severity), issue.Type, issue.Description)
}
