package types

import "github.com/m-mizutani/goerr/v2"

// Format is the sniffed encoding of an uploaded telemetry file
type Format string

const (
	FormatJSON      Format = "json"
	FormatNDJSON    Format = "ndjson"
	FormatCSV       Format = "csv"
	FormatXML       Format = "xml"
	FormatHTML      Format = "html"
	FormatHAR       Format = "har"
	FormatPlaintext Format = "plaintext"
)

// AllFormats returns all supported formats in detection priority order
func AllFormats() []Format {
	return []Format{
		FormatHAR,
		FormatJSON,
		FormatNDJSON,
		FormatCSV,
		FormatHTML,
		FormatXML,
		FormatPlaintext,
	}
}

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatNDJSON, FormatCSV, FormatXML, FormatHTML, FormatHAR, FormatPlaintext:
		return true
	default:
		return false
	}
}

func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a string into a Format
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.IsValid() {
		return "", goerr.New("invalid format", goerr.V("format", s))
	}
	return f, nil
}
