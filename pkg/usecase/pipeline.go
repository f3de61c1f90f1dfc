package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/service/ingest"
	"github.com/secmon-lab/uxlens/pkg/service/scoring"
	"github.com/secmon-lab/uxlens/pkg/utils/async"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// FileInput is one uploaded file
type FileInput struct {
	Filename string
	Data     []byte
}

// FileResult is the ingestion outcome of one file. Exactly one of Result and
// Err is set.
type FileResult struct {
	Filename string
	Result   *ingest.Result
	Err      error
}

// Analysis is the classification and scoring of a set of entries
type Analysis struct {
	Issues []*model.Issue `json:"issues"`
	Score  int            `json:"score"`
}

// PersistFailure records a fixspec that could not be saved
type PersistFailure struct {
	IssueID string `json:"issueId"`
	Error   string `json:"error"`
}

// PersistResult splits generated fixspecs by outcome. Order follows the
// input issues.
type PersistResult struct {
	Created []*model.Fixspec  `json:"created"`
	Skipped []*model.Fixspec  `json:"skipped"`
	Failed  []*PersistFailure `json:"failed"`
}

// Report is the outcome of a full pipeline run
type Report struct {
	Analysis
	Persist *PersistResult `json:"persist"`
}

// IngestFile sniffs, parses and normalizes one file
func (uc *UseCases) IngestFile(ctx context.Context, data []byte, filename string) (*ingest.Result, error) {
	result, err := uc.ingestor.Ingest(ctx, data, filename)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to ingest file", goerr.V(FilenameKey, filename))
	}
	return result, nil
}

// IngestFiles ingests files concurrently. A failing file does not affect the
// others; results keep the input order.
func (uc *UseCases) IngestFiles(ctx context.Context, files []FileInput) ([]*FileResult, error) {
	if len(files) == 0 {
		return nil, goerr.Wrap(ErrNoInput, "at least one file is required")
	}

	results := make([]*FileResult, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.ingestConcurrency)

	for i, f := range files {
		eg.Go(func() error {
			res, err := uc.IngestFile(ctx, f.Data, f.Filename)
			results[i] = &FileResult{Filename: f.Filename, Result: res, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to ingest files")
	}
	return results, nil
}

// Analyze classifies entries and scores the resulting issues
func (uc *UseCases) Analyze(ctx context.Context, entries []*model.LogEntry) *Analysis {
	issues := uc.classifier.ClassifyAll(ctx, entries)
	return &Analysis{
		Issues: issues,
		Score:  scoring.Score(issues),
	}
}

// Persist generates a fixspec per issue and saves each one once. Failures are
// collected per issue and never stop the remaining saves. Newly created
// fixspecs are handed to the notifier in the background.
func (uc *UseCases) Persist(ctx context.Context, issues []*model.Issue) *PersistResult {
	specs := uc.generator.GenerateAll(issues)

	type outcome struct {
		created bool
		err     error
	}
	outcomes := make([]outcome, len(specs))

	var eg errgroup.Group
	eg.SetLimit(uc.persistConcurrency)
	for i, spec := range specs {
		eg.Go(func() error {
			created, err := uc.repo.SaveOnce(ctx, spec)
			outcomes[i] = outcome{created: created, err: err}
			return nil
		})
	}
	_ = eg.Wait()

	logger := logging.From(ctx)
	result := &PersistResult{
		Created: []*model.Fixspec{},
		Skipped: []*model.Fixspec{},
		Failed:  []*PersistFailure{},
	}
	for i, spec := range specs {
		switch o := outcomes[i]; {
		case o.err != nil:
			logger.Error("failed to persist fixspec",
				"issue_id", spec.IssueID,
				"error", o.err.Error(),
			)
			result.Failed = append(result.Failed, &PersistFailure{IssueID: spec.IssueID, Error: o.err.Error()})
		case o.created:
			result.Created = append(result.Created, spec)
		default:
			result.Skipped = append(result.Skipped, spec)
		}
	}

	logger.Info("persisted fixspecs",
		"created", len(result.Created),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)

	uc.notify(ctx, result.Created)
	return result
}

func (uc *UseCases) notify(ctx context.Context, created []*model.Fixspec) {
	if uc.notifier == nil || len(created) == 0 {
		return
	}
	specs := append([]*model.Fixspec(nil), created...)
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.notifier.NotifyFixspecs(ctx, specs)
	})
}

// Run classifies, scores and persists in two explicit stages
func (uc *UseCases) Run(ctx context.Context, entries []*model.LogEntry) *Report {
	analysis := uc.Analyze(ctx, entries)
	return &Report{
		Analysis: *analysis,
		Persist:  uc.Persist(ctx, analysis.Issues),
	}
}

// ProcessLogEntries runs the pipeline for the canonical log refresh worker.
// Any persistence failure is returned so the worker retries the file.
func (uc *UseCases) ProcessLogEntries(ctx context.Context, entries []*model.LogEntry) error {
	report := uc.Run(ctx, entries)
	if n := len(report.Persist.Failed); n > 0 {
		return goerr.Wrap(ErrPersistFailed, "canonical log run had persistence failures", goerr.V(FailedKey, n))
	}
	return nil
}

// MergeEntries concatenates the entries of successful file results
func MergeEntries(results []*FileResult) []*model.LogEntry {
	var entries []*model.LogEntry
	for _, r := range results {
		if r == nil || r.Result == nil {
			continue
		}
		entries = append(entries, r.Result.Entries...)
	}
	return entries
}
