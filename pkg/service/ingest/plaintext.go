package ingest

import (
	"context"
	"regexp"
	"strings"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

var (
	timestampPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2} \d{2}:\d{2}:\d{2}`),
	}
	levelPattern = regexp.MustCompile(`(?i)\b(ERROR|WARNING|WARN|INFO|DEBUG|TRACE|FATAL|CRITICAL)\b`)
)

// message decoration left behind after removing timestamp and level tokens
const plaintextSeparators = " \t-:|[]()"

// parsePlaintext turns each non-blank line into a record with optional
// timestamp and level. Only input without any text fails.
func parsePlaintext(_ context.Context, text string) ([]*model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newParseError(types.FormatPlaintext, ErrEmptyInput, "empty plaintext input")
	}

	var records []*model.Record
	for i, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		records = append(records, parsePlaintextLine(i+1, line))
	}
	return records, nil
}

func parsePlaintextLine(lineNo int, line string) *model.Record {
	rec := model.NewMetadata()
	rest := line
	matched := false

	for _, p := range timestampPatterns {
		if loc := p.FindStringIndex(rest); loc != nil {
			rec.Set("timestamp", model.StringValue(rest[loc[0]:loc[1]]))
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
			matched = true
			break
		}
	}

	if loc := levelPattern.FindStringSubmatchIndex(rest); loc != nil {
		rec.Set("level", model.StringValue(strings.ToUpper(rest[loc[2]:loc[3]])))
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
		matched = true
	}

	msg := strings.Join(strings.Fields(strings.Trim(rest, plaintextSeparators)), " ")
	if !matched || msg == "" {
		msg = line
	}
	rec.Set("message", model.StringValue(msg))
	rec.Set("line", model.NumberValue(float64(lineNo)))
	return rec
}
