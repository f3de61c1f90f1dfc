package ingest

import (
	"bytes"
	"context"
	"strings"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser converts decoded text into loosely typed records
type Parser interface {
	Parse(ctx context.Context, text string) ([]*model.Record, error)
}

// ParserFunc adapts a function to Parser
type ParserFunc func(ctx context.Context, text string) ([]*model.Record, error)

func (f ParserFunc) Parse(ctx context.Context, text string) ([]*model.Record, error) {
	return f(ctx, text)
}

func defaultParsers(xml EntryExtractor) map[types.Format]Parser {
	return map[types.Format]Parser{
		types.FormatJSON:      ParserFunc(parseJSON),
		types.FormatNDJSON:    ParserFunc(parseNDJSON),
		types.FormatCSV:       ParserFunc(parseCSV),
		types.FormatXML:       &xmlParser{extractor: xml},
		types.FormatHTML:      newHTMLParser(),
		types.FormatHAR:       ParserFunc(parseHAR),
		types.FormatPlaintext: ParserFunc(parsePlaintext),
	}
}

// decodeText turns raw upload bytes into parser input: BOM stripped, invalid
// UTF-8 replaced and CRLF line endings folded to LF
func decodeText(data []byte) string {
	text := string(bytes.TrimPrefix(data, utf8BOM))
	text = strings.ToValidUTF8(text, "�")
	return strings.ReplaceAll(text, "\r\n", "\n")
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
