package ingest

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

var extensionFormats = []struct {
	format types.Format
	exts   []string
}{
	{types.FormatHAR, []string{".har"}},
	{types.FormatJSON, []string{".json"}},
	{types.FormatNDJSON, []string{".ndjson", ".jsonl"}},
	{types.FormatCSV, []string{".csv"}},
	{types.FormatHTML, []string{".html", ".htm"}},
	{types.FormatXML, []string{".xml"}},
}

// Detect sniffs the format of data. Extension hints are trusted first, in
// format priority order; content heuristics apply when no extension matches.
// A .json file is only taken as json when it is one valid JSON document,
// otherwise it falls through to the content heuristics. Ambiguous input
// resolves to plaintext.
func Detect(data []byte, filename string) types.Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		for _, ef := range extensionFormats {
			for _, e := range ef.exts {
				if ext != e {
					continue
				}
				if ef.format == types.FormatJSON && !json.Valid(bytes.TrimPrefix(data, utf8BOM)) {
					return sniffContent(data)
				}
				return ef.format
			}
		}
	}

	return sniffContent(data)
}

func sniffContent(data []byte) types.Format {
	content := strings.TrimSpace(string(bytes.TrimPrefix(data, utf8BOM)))
	if content == "" {
		return types.FormatPlaintext
	}

	if strings.HasPrefix(content, "{") && strings.Contains(content, `"log"`) && strings.Contains(content, `"entries"`) {
		return types.FormatHAR
	}

	objectLines := countObjectLines(content)
	if strings.HasPrefix(content, "[") && !strings.Contains(content, "\n{") && isJSONArray(content) {
		return types.FormatJSON
	}
	// a lone object is a one-record json batch, not ndjson
	if strings.HasPrefix(content, "{") && objectLines == 1 && json.Valid([]byte(content)) {
		return types.FormatJSON
	}

	if objectLines > 1 {
		return types.FormatNDJSON
	}

	// markup often carries commas across lines; it must reach the html/xml rules
	multiLine := strings.Contains(content, "\n")
	if multiLine && strings.Contains(content, ",") && !strings.HasPrefix(content, "<") {
		return types.FormatCSV
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html") {
		return types.FormatHTML
	}

	if strings.HasPrefix(content, "<?xml") || strings.HasPrefix(content, "<") {
		return types.FormatXML
	}

	return types.FormatPlaintext
}

// countObjectLines counts lines whose first column is '{'
func countObjectLines(content string) int {
	n := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "{") {
			n++
		}
	}
	return n
}

func isJSONArray(content string) bool {
	var arr []json.RawMessage
	return json.Unmarshal([]byte(content), &arr) == nil
}
