package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/repository/memory"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
	"github.com/secmon-lab/uxlens/pkg/usecase"
)

func TestReadLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		_, err := usecase.New(memory.New()).ReadLogs(ctx, false)
		gt.Error(t, err).Is(usecase.ErrLogStoreNotConfigured)
	})

	t.Run("reads canonical log", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs.json")
		gt.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","timestamp":"t","type":"ui","message":"m"}]`), 0o600)).Required()

		uc := usecase.New(memory.New(), usecase.WithLogStore(logstore.New(path)))
		entries, err := uc.ReadLogs(ctx, true)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
	})

	t.Run("errors are wrapped", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithLogStore(logstore.New(filepath.Join(t.TempDir(), "none.json"))))
		_, err := uc.ReadLogs(ctx, false)
		gt.Error(t, err).Is(logstore.ErrLogFileNotFound)
	})
}

func TestFixspecQueries(t *testing.T) {
	ctx := context.Background()
	uc := newStableUseCases(memory.New())

	entries := []*model.LogEntry{
		{ID: "a", Timestamp: "t", Type: types.LogTypePerformance, Message: "slow", Metadata: metadata("responseTime", 6000)},
	}
	uc.Run(ctx, entries)

	specs, err := uc.ListFixspecs(ctx, interfaces.FixspecFilter{Status: types.FixspecStatusPending})
	gt.NoError(t, err).Required()
	gt.Value(t, len(specs)).Equal(1).Required()

	got, err := uc.GetFixspec(ctx, specs[0].IssueID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.IssueID).Equal(specs[0].IssueID)

	specs, err = uc.ListFixspecs(ctx, interfaces.FixspecFilter{Status: types.FixspecStatusApplied})
	gt.NoError(t, err).Required()
	gt.Array(t, specs).Length(0)

	_, err = uc.GetFixspec(ctx, "missing")
	gt.Error(t, err).Is(model.ErrFixspecNotFound)
}
