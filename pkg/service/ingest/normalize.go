package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
)

// Stats summarizes a soft-validated batch
type Stats struct {
	Total int `json:"total"`
	Valid int `json:"valid"`
}

// Ratio is valid/total, or 1 for an empty batch
func (s Stats) Ratio() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Valid) / float64(s.Total)
}

// Field name conventions, matched case-insensitively
var (
	idFields        = []string{"id", "_id", "uuid", "logid", "log_id"}
	timestampFields = []string{"timestamp", "time", "@timestamp", "ts", "datetime", "date", "starteddatetime"}
	typeFields      = []string{"type", "log_type", "logtype", "kind"}
	categoryFields  = []string{"category", "subcategory", "sub_type"}
	messageFields   = []string{"message", "msg", "description", "text", "summary"}

	// HAR "time" is the request duration, not a point in time
	harTimestampFields = []string{"starteddatetime", "timestamp"}
)

const metadataField = "metadata"

// Normalizer maps raw records onto the LogEntry shape
type Normalizer struct {
	now   func() time.Time
	newID func() string
}

func NewNormalizer(now func() time.Time, newID func() string) *Normalizer {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = model.NewLogEntryID
	}
	return &Normalizer{now: now, newID: newID}
}

// Normalize converts records to entries. Records that fail validation are
// dropped; the returned Stats reports how many survived.
func (n *Normalizer) Normalize(ctx context.Context, records []*model.Record, format types.Format) ([]*model.LogEntry, Stats) {
	logger := logging.From(ctx)
	stats := Stats{Total: len(records)}
	entries := make([]*model.LogEntry, 0, len(records))
	ingestedAt := n.now().UTC().Format(time.RFC3339Nano)

	for i, rec := range records {
		entry := n.mapRecord(rec, format, ingestedAt)
		if err := entry.Validate(); err != nil {
			logger.Debug("dropping invalid record", "index", i, "format", format, "error", err.Error())
			continue
		}
		entries = append(entries, entry)
	}
	stats.Valid = len(entries)

	logger.Info("normalized records",
		"format", format,
		"total", stats.Total,
		"valid", stats.Valid,
		"ratio", fmt.Sprintf("%.2f", stats.Ratio()),
	)
	return entries, stats
}

func (n *Normalizer) mapRecord(rec *model.Record, format types.Format, ingestedAt string) *model.LogEntry {
	entry := &model.LogEntry{Metadata: model.NewMetadata()}
	claimed := map[string]bool{}

	// take returns the first non-empty field among aliases, in alias priority order
	take := func(aliases []string) (string, bool) {
		for _, alias := range aliases {
			for _, key := range rec.Keys() {
				if claimed[key] || strings.ToLower(key) != alias {
					continue
				}
				if v, ok := rec.Text(key); ok && strings.TrimSpace(v) != "" {
					claimed[key] = true
					return strings.TrimSpace(v), true
				}
			}
		}
		return "", false
	}

	tsFields := timestampFields
	if format == types.FormatHAR {
		tsFields = harTimestampFields
	}

	entry.ID, _ = take(idFields)
	rawTimestamp, hasTimestamp := take(tsFields)
	rawType, _ := take(typeFields)
	entry.Category, _ = take(categoryFields)
	entry.Message, _ = take(messageFields)
	entry.Type = types.LogType(strings.ToLower(rawType))

	for _, key := range rec.Keys() {
		if claimed[key] {
			continue
		}
		v, _ := rec.Get(key)
		if strings.EqualFold(key, metadataField) {
			if nested := nestedMetadata(v); nested != nil {
				entry.Metadata.Merge(nested)
				continue
			}
		}
		entry.Metadata.Set(key, v)
	}

	switch format {
	case types.FormatHAR:
		applyHARConventions(entry)
	case types.FormatPlaintext:
		applyPlaintextConventions(entry)
	}

	if entry.ID == "" {
		entry.ID = n.newID()
	}
	if hasTimestamp {
		entry.Timestamp = normalizeTimestamp(rawTimestamp, n.now())
	} else {
		entry.Timestamp = ingestedAt
	}
	if entry.Metadata.Len() == 0 {
		entry.Metadata = nil
	}
	return entry
}

// nestedMetadata accepts a nested object or a string holding a JSON object,
// which is how CSV and HTML sources carry it
func nestedMetadata(v model.Value) *model.Metadata {
	if m, ok := v.AsMap(); ok {
		return m
	}
	if s, ok := v.AsString(); ok && strings.HasPrefix(strings.TrimSpace(s), "{") {
		var m model.Metadata
		if err := json.Unmarshal([]byte(s), &m); err == nil {
			return &m
		}
	}
	return nil
}

func applyHARConventions(entry *model.LogEntry) {
	if entry.Type == "" {
		entry.Type = types.LogTypePerformance
	}
	if entry.Category == "" {
		entry.Category = "network"
	}

	url, _ := entry.Metadata.Text("url")
	method, _ := entry.Metadata.Text("method")
	status, _ := entry.Metadata.Text("status")
	if elapsed, ok := entry.Metadata.Number("time"); ok {
		entry.Metadata.Set("responseTime", model.NumberValue(elapsed))
	}
	if url != "" {
		entry.Metadata.Set("endpoint", model.StringValue(url))
	}
	if entry.Message == "" {
		entry.Message = strings.TrimSpace(fmt.Sprintf("%s %s -> %s", method, url, status))
	}
}

// plaintext lines carry no type; error-ish levels map to error, anything else to ui
func applyPlaintextConventions(entry *model.LogEntry) {
	if entry.Type != "" {
		return
	}
	level, _ := entry.Metadata.Text("level")
	switch strings.ToUpper(level) {
	case "ERROR", "FATAL", "CRITICAL":
		entry.Type = types.LogTypeError
	default:
		entry.Type = types.LogTypeUI
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05,999",
	"01/02/2006 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// normalizeTimestamp converts recognised timestamps to RFC 3339 UTC. Epoch
// numbers are read as milliseconds when large enough, otherwise seconds.
// Unrecognised text is kept verbatim.
func normalizeTimestamp(raw string, now time.Time) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}

	if t, err := time.Parse(time.Stamp, strings.Join(strings.Fields(raw), " ")); err == nil {
		t = t.AddDate(now.Year(), 0, 0)
		return t.UTC().Format(time.RFC3339Nano)
	}

	if epoch, ok := model.StringValue(raw).AsNumber(); ok && epoch > 0 {
		if epoch >= 1e12 {
			return time.UnixMilli(int64(epoch)).UTC().Format(time.RFC3339Nano)
		}
		return time.Unix(int64(epoch), 0).UTC().Format(time.RFC3339Nano)
	}

	return raw
}
