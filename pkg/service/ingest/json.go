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

// parseJSON accepts an array of objects or a single object. An empty array is
// a valid, empty result.
func parseJSON(ctx context.Context, text string) ([]*model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newParseError(types.FormatJSON, ErrEmptyInput, "empty JSON input")
	}

	var root model.Value
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, newParseError(types.FormatJSON, err, "invalid JSON")
	}

	switch root.Kind() {
	case model.KindMap:
		m, _ := root.AsMap()
		return []*model.Record{m}, nil

	case model.KindArray:
		items, _ := root.AsArray()
		records := make([]*model.Record, 0, len(items))
		for i, item := range items {
			m, ok := item.AsMap()
			if !ok {
				logging.From(ctx).Warn("skipping non-object JSON array element",
					"index", i, "kind", item.Kind().String())
				continue
			}
			records = append(records, m)
		}
		return records, nil

	default:
		return nil, newParseError(types.FormatJSON,
			goerr.New("top-level JSON value must be an object or array", goerr.V("kind", root.Kind().String())),
			"unsupported JSON document")
	}
}
