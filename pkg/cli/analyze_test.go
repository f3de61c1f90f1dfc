package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/uxlens/pkg/cli"
	"github.com/secmon-lab/uxlens/pkg/cli/config"
)

const slowNDJSON = `{"id":"a","timestamp":"2025-01-01T00:00:00Z","type":"performance","message":"slow","metadata":{"responseTime":6000,"endpoint":"/x"}}
{"id":"b","timestamp":"2025-01-01T00:00:01Z","type":"error","category":"javascript","message":"TypeError: x is undefined"}
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func countJSON(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	gt.NoError(t, err).Required()
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n
}

func TestRun_AnalyzeCommand_WritesFixspecs(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "events.ndjson", slowNDJSON)
	out := filepath.Join(dir, "fixspecs")

	args := []string{"uxlens", "--log-output", filepath.Join(dir, "uxlens.log"),
		"analyze", "--fixspec-dir", out, "--json", input}

	gt.NoError(t, cli.Run(context.Background(), args, "test")).Required()
	gt.Value(t, countJSON(t, out)).Equal(2)

	// a second run finds the same issues and keeps the stored fixspecs
	gt.NoError(t, cli.Run(context.Background(), args, "test")).Required()
	gt.Value(t, countJSON(t, out)).Equal(2)
}

func TestRun_AnalyzeCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "events.ndjson", slowNDJSON)
	out := filepath.Join(dir, "fixspecs")

	err := cli.Run(context.Background(), []string{"uxlens", "--log-output", filepath.Join(dir, "uxlens.log"),
		"analyze", "--fixspec-dir", out, "--dry-run", input}, "test")
	gt.NoError(t, err).Required()

	_, err = os.Stat(out)
	gt.Bool(t, os.IsNotExist(err)).True()
}

func TestRun_AnalyzeCommand_Rules(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "events.ndjson", slowNDJSON)
	rules := writeInput(t, dir, "rules.toml", "[latency]\nthreshold_ms = 7000\nhigh_ms = 9000\n")
	out := filepath.Join(dir, "fixspecs")

	err := cli.Run(context.Background(), []string{"uxlens", "--log-output", filepath.Join(dir, "uxlens.log"),
		"analyze", "--fixspec-dir", out, "--rules", rules, input}, "test")
	gt.NoError(t, err).Required()

	// 6000ms is below the raised threshold, only the script error remains
	gt.Value(t, countJSON(t, out)).Equal(1)
}

func TestRun_AnalyzeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	logOut := filepath.Join(dir, "uxlens.log")

	t.Run("no files", func(t *testing.T) {
		err := cli.Run(context.Background(), []string{"uxlens", "--log-output", logOut, "analyze", "--dry-run"}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("all files fail", func(t *testing.T) {
		broken := writeInput(t, dir, "broken.ndjson", `{"x":`)
		err := cli.Run(context.Background(), []string{"uxlens", "--log-output", logOut, "analyze", "--dry-run", broken}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid rules", func(t *testing.T) {
		input := writeInput(t, dir, "events.ndjson", slowNDJSON)
		rules := writeInput(t, dir, "bad.toml", "[latency]\nthreshold_ms = 9000\nhigh_ms = 1000\n")
		err := cli.Run(context.Background(), []string{"uxlens", "--log-output", logOut, "analyze", "--dry-run", "--rules", rules, input}, "test")
		gt.Error(t, err).Is(config.ErrInvalidRules)
	})

	t.Run("unknown backend", func(t *testing.T) {
		input := writeInput(t, dir, "events.ndjson", slowNDJSON)
		err := cli.Run(context.Background(), []string{"uxlens", "--log-output", logOut, "analyze", "--fixspec-backend", "s3", input}, "test")
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}
