package ingest

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

var (
	htmlTablePattern = regexp.MustCompile(`(?is)<table\b[^>]*>(.*?)</table\s*>`)
	htmlRowPattern   = regexp.MustCompile(`(?is)<tr\b[^>]*>(.*?)</tr\s*>`)
	htmlHeadPattern  = regexp.MustCompile(`(?is)<th\b[^>]*>(.*?)</th\s*>`)
	htmlCellPattern  = regexp.MustCompile(`(?is)<td\b[^>]*>(.*?)</td\s*>`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// htmlParser extracts rows from every <table>. Header cells name the columns
// when their count matches the row; otherwise columns are column_1..column_N.
type htmlParser struct {
	policy *bluemonday.Policy
}

func newHTMLParser() *htmlParser {
	return &htmlParser{policy: bluemonday.StrictPolicy()}
}

func (p *htmlParser) Parse(_ context.Context, text string) ([]*model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newParseError(types.FormatHTML, ErrEmptyInput, "empty HTML input")
	}

	var records []*model.Record
	for _, table := range htmlTablePattern.FindAllStringSubmatch(text, -1) {
		var headers []string
		for _, th := range htmlHeadPattern.FindAllStringSubmatch(table[1], -1) {
			headers = append(headers, p.cellText(th[1]))
		}

		for _, row := range htmlRowPattern.FindAllStringSubmatch(table[1], -1) {
			cells := htmlCellPattern.FindAllStringSubmatch(row[1], -1)
			if len(cells) == 0 {
				continue
			}

			rec := model.NewMetadata()
			useHeaders := len(headers) == len(cells)
			for i, cell := range cells {
				key := fmt.Sprintf("column_%d", i+1)
				if useHeaders && headers[i] != "" {
					key = headers[i]
				}
				rec.Set(key, model.StringValue(p.cellText(cell[1])))
			}
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, newParseError(types.FormatHTML, ErrNoRecords, "no HTML table rows found")
	}
	return records, nil
}

// cellText strips nested markup and entities from a cell
func (p *htmlParser) cellText(raw string) string {
	text := html.UnescapeString(p.policy.Sanitize(raw))
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
