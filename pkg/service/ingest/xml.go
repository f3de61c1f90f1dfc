package ingest

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

// EntryExtractor finds entry records inside an XML document. The default
// implementation is a best-effort pattern matcher; a structured parser can be
// substituted through WithXMLExtractor without touching the normalizer.
type EntryExtractor interface {
	Extract(text string) []*model.Record
}

// DefaultWrapperTags are the candidate entry element names, in priority order
var DefaultWrapperTags = []string{"entry", "log", "record", "item", "event"}

// TagExtractor tries each wrapper tag name in order and uses the first one
// that matches at least one element
type TagExtractor struct {
	wrappers []*regexp.Regexp
}

var (
	xmlLeafPattern        = regexp.MustCompile(`(?s)<([A-Za-z_][\w.:-]*)(?:\s[^<>]*)?>([^<]*)</([A-Za-z_][\w.:-]*)\s*>`)
	xmlSelfClosingPattern = regexp.MustCompile(`<([A-Za-z_][\w.:-]*)((?:\s+[\w.:-]+\s*=\s*(?:"[^"]*"|'[^']*'))*)\s*/>`)
	xmlAttrPattern        = regexp.MustCompile(`([\w.:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// NewTagExtractor builds an extractor for the given wrapper tag names
func NewTagExtractor(tags ...string) *TagExtractor {
	if len(tags) == 0 {
		tags = DefaultWrapperTags
	}
	x := &TagExtractor{}
	for _, tag := range tags {
		name := regexp.QuoteMeta(tag)
		x.wrappers = append(x.wrappers,
			regexp.MustCompile(`(?s)<`+name+`((?:\s[^<>]*)?)>(.*?)</`+name+`\s*>`))
	}
	return x
}

func (x *TagExtractor) Extract(text string) []*model.Record {
	for _, wrapper := range x.wrappers {
		matches := wrapper.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}

		records := make([]*model.Record, 0, len(matches))
		for _, m := range matches {
			records = append(records, extractXMLFields(m[1], m[2]))
		}
		return records
	}
	return nil
}

func extractXMLFields(wrapperAttrs, body string) *model.Record {
	rec := model.NewMetadata()

	for _, leaf := range xmlLeafPattern.FindAllStringSubmatch(body, -1) {
		if leaf[1] != leaf[3] {
			continue
		}
		rec.Set(leaf[1], model.StringValue(strings.TrimSpace(html.UnescapeString(leaf[2]))))
	}

	for _, sc := range xmlSelfClosingPattern.FindAllStringSubmatch(body, -1) {
		tag := sc[1]
		for _, attr := range xmlAttrPattern.FindAllStringSubmatch(sc[2], -1) {
			rec.Set(tag+"_"+attr[1], model.StringValue(html.UnescapeString(attrValue(attr))))
		}
	}

	// attributes on the wrapper itself never override child elements
	for _, attr := range xmlAttrPattern.FindAllStringSubmatch(wrapperAttrs, -1) {
		if !rec.Has(attr[1]) {
			rec.Set(attr[1], model.StringValue(html.UnescapeString(attrValue(attr))))
		}
	}

	return rec
}

func attrValue(m []string) string {
	if m[2] != "" {
		return m[2]
	}
	return m[3]
}

type xmlParser struct {
	extractor EntryExtractor
}

func (p *xmlParser) Parse(_ context.Context, text string) ([]*model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newParseError(types.FormatXML, ErrEmptyInput, "empty XML input")
	}

	records := p.extractor.Extract(text)
	if len(records) == 0 {
		return nil, newParseError(types.FormatXML, ErrNoRecords, "no XML entry elements found",
			goerr.V("candidates", strings.Join(DefaultWrapperTags, ",")))
	}
	return records, nil
}
