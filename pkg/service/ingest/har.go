package ingest

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
)

type harDocument struct {
	Log *struct {
		Entries []harEntry `json:"entries"`
	} `json:"log"`
}

type harEntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Time            float64     `json:"time"`
	Request         harRequest  `json:"request"`
	Response        harResponse `json:"response"`
	Timings         harTimings  `json:"timings"`
}

type harRequest struct {
	Method      string `json:"method"`
	URL         string `json:"url"`
	HeadersSize int64  `json:"headersSize"`
	BodySize    int64  `json:"bodySize"`
}

type harResponse struct {
	Status      int    `json:"status"`
	StatusText  string `json:"statusText"`
	HeadersSize int64  `json:"headersSize"`
	BodySize    int64  `json:"bodySize"`
	Content     struct {
		MimeType string `json:"mimeType"`
	} `json:"content"`
}

// HAR timing phases are -1 when not applicable
type harTimings struct {
	Blocked float64 `json:"blocked"`
	DNS     float64 `json:"dns"`
	Connect float64 `json:"connect"`
	Send    float64 `json:"send"`
	Wait    float64 `json:"wait"`
	Receive float64 `json:"receive"`
	SSL     float64 `json:"ssl"`
}

func parseHAR(_ context.Context, text string) ([]*model.Record, error) {
	var doc harDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, newParseError(types.FormatHAR, err, "invalid HAR JSON")
	}
	if doc.Log == nil || doc.Log.Entries == nil {
		return nil, newParseError(types.FormatHAR, goerr.New("log.entries array is missing"), "invalid HAR document")
	}
	if len(doc.Log.Entries) == 0 {
		return nil, newParseError(types.FormatHAR, ErrNoRecords, "HAR document has no entries")
	}

	records := make([]*model.Record, 0, len(doc.Log.Entries))
	for _, e := range doc.Log.Entries {
		rec := model.NewMetadata()
		rec.Set("startedDateTime", model.StringValue(e.StartedDateTime))
		rec.Set("method", model.StringValue(e.Request.Method))
		rec.Set("url", model.StringValue(e.Request.URL))
		rec.Set("status", model.NumberValue(float64(e.Response.Status)))
		if e.Response.StatusText != "" {
			rec.Set("statusText", model.StringValue(e.Response.StatusText))
		}
		rec.Set("time", model.NumberValue(e.totalTime()))

		timings := model.NewMetadata()
		timings.Set("blocked", model.NumberValue(e.Timings.Blocked))
		timings.Set("dns", model.NumberValue(e.Timings.DNS))
		timings.Set("connect", model.NumberValue(e.Timings.Connect))
		timings.Set("send", model.NumberValue(e.Timings.Send))
		timings.Set("wait", model.NumberValue(e.Timings.Wait))
		timings.Set("receive", model.NumberValue(e.Timings.Receive))
		timings.Set("ssl", model.NumberValue(e.Timings.SSL))
		rec.Set("timings", model.MapValue(timings))

		rec.Set("requestSize", model.NumberValue(float64(nonNegative(e.Request.HeadersSize)+nonNegative(e.Request.BodySize))))
		rec.Set("responseSize", model.NumberValue(float64(nonNegative(e.Response.HeadersSize)+nonNegative(e.Response.BodySize))))
		rec.Set("mimeType", model.StringValue(e.Response.Content.MimeType))
		records = append(records, rec)
	}
	return records, nil
}

// totalTime prefers the recorded entry time and falls back to the sum of the
// applicable phases. ssl is already included in connect per the HAR spec.
func (e harEntry) totalTime() float64 {
	if e.Time > 0 {
		return e.Time
	}
	var total float64
	for _, v := range []float64{e.Timings.Blocked, e.Timings.DNS, e.Timings.Connect, e.Timings.Send, e.Timings.Wait, e.Timings.Receive} {
		if v > 0 {
			total += v
		}
	}
	return total
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
