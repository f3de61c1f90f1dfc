package ingest

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// parseCSV treats the first non-blank line as the header. Data rows whose
// field count differs from the header are dropped.
func parseCSV(ctx context.Context, text string) ([]*model.Record, error) {
	var lines []string
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, newParseError(types.FormatCSV, ErrEmptyInput, "empty CSV input")
	}

	headers := splitCSVLine(lines[0])
	records := make([]*model.Record, 0, len(lines)-1)
	dropped := 0
	for _, line := range lines[1:] {
		fields := splitCSVLine(line)
		if len(fields) != len(headers) {
			dropped++
			continue
		}
		rec := model.NewMetadata()
		for i, h := range headers {
			rec.Set(h, model.StringValue(fields[i]))
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		logging.From(ctx).Debug("dropped CSV rows with mismatched field count",
			"dropped", dropped, "columns", len(headers))
	}
	if len(records) == 0 {
		return nil, newParseError(types.FormatCSV, ErrNoRecords, "no valid CSV data rows",
			goerr.V("columns", len(headers)), goerr.V("dropped", dropped))
	}
	return records, nil
}

// splitCSVLine splits one line on commas outside double quotes. Quotes are
// stripped, a doubled quote inside a quoted field is a literal quote, and
// unquoted fields are trimmed.
func splitCSVLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
		quoted   bool
	)

	flush := func() {
		v := cur.String()
		if !quoted {
			v = strings.TrimSpace(v)
		}
		fields = append(fields, v)
		cur.Reset()
		quoted = false
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			if !inQuotes && !quoted && strings.TrimSpace(cur.String()) == "" {
				cur.Reset()
			}
			inQuotes = !inQuotes
			quoted = true
		case c == ',' && !inQuotes:
			flush()
		case quoted && !inQuotes:
			// text after a closing quote: keep anything but padding
			if c != ' ' && c != '\t' {
				cur.WriteByte(c)
			}
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	return fields
}
