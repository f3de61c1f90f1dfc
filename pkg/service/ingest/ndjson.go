package ingest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// parseNDJSON parses one JSON object per line. Invalid lines are skipped; the
// parse fails only when no line succeeds.
func parseNDJSON(ctx context.Context, text string) ([]*model.Record, error) {
	var records []*model.Record
	var lastErr error

	for i, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec model.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logging.From(ctx).Warn("skipping invalid NDJSON line", "line", i+1, "error", err.Error())
			lastErr = err
			continue
		}
		records = append(records, &rec)
	}

	if len(records) == 0 {
		if lastErr != nil {
			return nil, newParseError(types.FormatNDJSON, ErrNoRecords, "no valid NDJSON lines",
				goerr.V("last_error", lastErr.Error()))
		}
		return nil, newParseError(types.FormatNDJSON, ErrNoRecords, "no valid NDJSON lines")
	}
	return records, nil
}
