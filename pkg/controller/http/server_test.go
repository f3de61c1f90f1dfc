package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/secmon-lab/uxlens/pkg/controller/http"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/repository/memory"
	"github.com/secmon-lab/uxlens/pkg/service/classifier"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
	"github.com/secmon-lab/uxlens/pkg/usecase"
)

const slowNDJSON = `{"id":"a","timestamp":"2025-01-01T00:00:00Z","type":"performance","message":"slow","metadata":{"responseTime":6000,"endpoint":"/x"}}
{"id":"b","timestamp":"2025-01-01T00:00:01Z","type":"ui","message":"fine"}
`

type uploadResult struct {
	Files []struct {
		Filename string  `json:"filename"`
		Format   string  `json:"format"`
		Total    int     `json:"total"`
		Valid    int     `json:"valid"`
		Ratio    float64 `json:"ratio"`
		Error    string  `json:"error"`
	} `json:"files"`
	Issues  []*model.Issue `json:"issues"`
	Score   int            `json:"score"`
	Persist struct {
		Created []*model.Fixspec `json:"created"`
		Skipped []*model.Fixspec `json:"skipped"`
	} `json:"persist"`
}

func newServer(t *testing.T, opts ...usecase.Option) *server.Server {
	t.Helper()
	opts = append([]usecase.Option{
		usecase.WithClassifier(classifier.New(classifier.WithStableIDs())),
	}, opts...)
	return server.New(usecase.New(memory.New(), opts...))
}

func do(t *testing.T, s *server.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("file", name)
		gt.NoError(t, err).Required()
		_, err = fw.Write([]byte(content))
		gt.NoError(t, err).Required()
	}
	gt.NoError(t, mw.Close()).Required()
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	w := do(t, newServer(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"ok"`)
}

func TestUploadMultipart(t *testing.T) {
	s := newServer(t)
	body, contentType := multipartBody(t, map[string]string{"events.ndjson": slowNDJSON})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := do(t, s, req)
	gt.Value(t, w.Code).Equal(http.StatusOK).Required()
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

	var got uploadResult
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
	gt.Value(t, len(got.Files)).Equal(1).Required()
	gt.Value(t, got.Files[0].Format).Equal(string(types.FormatNDJSON))
	gt.Value(t, got.Files[0].Valid).Equal(2)
	gt.Value(t, got.Files[0].Ratio).Equal(1.0)
	gt.Value(t, len(got.Issues)).Equal(1).Required()
	gt.Value(t, got.Issues[0].Type).Equal(types.IssueTypeLatency)
	gt.Value(t, got.Score).Equal(85)
	gt.Array(t, got.Persist.Created).Length(1)

	t.Run("fixspec is listed and retrievable", func(t *testing.T) {
		w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs?status=pending", nil))
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var list struct {
			Fixspecs []*model.Fixspec `json:"fixspecs"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &list)).Required()
		gt.Value(t, len(list.Fixspecs)).Equal(1).Required()

		w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs/"+list.Fixspecs[0].IssueID, nil))
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Body.String()).Contains("6000ms")
	})

	t.Run("re-upload skips", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"events.ndjson": slowNDJSON})
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		w := do(t, s, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var got uploadResult
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
		gt.Array(t, got.Persist.Created).Length(0)
		gt.Array(t, got.Persist.Skipped).Length(1)
	})
}

func TestUploadRawBody(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads?filename=page.csv",
		strings.NewReader("type,category,message,contrastRatio\nui,contrast,faint,2.5\n"))
	w := do(t, s, req)
	gt.Value(t, w.Code).Equal(http.StatusOK).Required()

	var got uploadResult
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
	gt.Value(t, got.Files[0].Format).Equal(string(types.FormatCSV))
	gt.Value(t, len(got.Issues)).Equal(1).Required()
	gt.Value(t, got.Issues[0].Type).Equal(types.IssueTypeContrast)
	gt.Value(t, got.Issues[0].Severity).Equal(types.SeverityHigh)
}

func TestUploadErrors(t *testing.T) {
	s := newServer(t)

	t.Run("empty body", func(t *testing.T) {
		w := do(t, s, httptest.NewRequest(http.MethodPost, "/api/uploads", nil))
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unparseable file", func(t *testing.T) {
		w := do(t, s, httptest.NewRequest(http.MethodPost, "/api/uploads?filename=a.ndjson", strings.NewReader(`{"x":`)))
		gt.Value(t, w.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("multipart without file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		gt.NoError(t, mw.WriteField("other", "x")).Required()
		gt.NoError(t, mw.Close()).Required()

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := do(t, s, req)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("partial failure still analyzes good files", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"events.ndjson": slowNDJSON,
			"broken.ndjson": `{"x":`,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		w := do(t, s, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)

		var got uploadResult
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
		gt.Array(t, got.Files).Length(2)
		failed := 0
		for _, f := range got.Files {
			if f.Error != "" {
				failed++
				gt.Value(t, f.Filename).Equal("broken.ndjson")
			}
		}
		gt.Value(t, failed).Equal(1)
	})
}

func TestFixspecErrors(t *testing.T) {
	s := newServer(t)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs/missing", nil))
	gt.Value(t, w.Code).Equal(http.StatusNotFound)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs/.hidden", nil))
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs?status=unknown", nil))
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/api/fixspecs", nil))
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains(`"fixspecs":[]`)
}

func TestLogs(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := do(t, newServer(t), httptest.NewRequest(http.MethodGet, "/api/logs", nil))
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})

	path := filepath.Join(t.TempDir(), "logs.json")
	gt.NoError(t, os.WriteFile(path, []byte(`[{"id":"1","timestamp":"t","type":"ui","message":"m"}]`), 0o600)).Required()
	s := newServer(t, usecase.WithLogStore(logstore.New(path)))

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/logs?refresh=true", nil))
	gt.Value(t, w.Code).Equal(http.StatusOK)

	var got struct {
		Entries []*model.LogEntry `json:"entries"`
	}
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
	gt.Array(t, got.Entries).Length(1)

	t.Run("invalid canonical log", func(t *testing.T) {
		gt.NoError(t, os.WriteFile(path, []byte(`{"id":"1"}`), 0o600)).Required()
		w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/logs?refresh=true", nil))
		gt.Value(t, w.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("invalid entry names its index and cause", func(t *testing.T) {
		body := `[{"id":"1","timestamp":"t","type":"ui","message":"m"},{"id":"2","timestamp":"t","type":"bogus","message":"m"}]`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0o600)).Required()
		w := do(t, s, httptest.NewRequest(http.MethodGet, "/api/logs?refresh=true", nil))
		gt.Value(t, w.Code).Equal(http.StatusUnprocessableEntity)
		gt.String(t, w.Body.String()).Contains("entry 1 failed validation")
		gt.String(t, w.Body.String()).Contains("type must be one of")
	})
}

func TestScoreReport(t *testing.T) {
	s := newServer(t)

	body := `{"issues":[{"type":"latency","severity":"high","description":"slow"}],"score":40}`
	w := do(t, s, httptest.NewRequest(http.MethodPost, "/api/reports/score", strings.NewReader(body)))
	gt.Value(t, w.Code).Equal(http.StatusOK).Required()

	var got model.ScoredReport
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &got)).Required()
	gt.Value(t, got.Score).Equal(85)
	gt.Bool(t, got.Mismatch).True()
	gt.Value(t, got.ReportedScore).NotNil().Required()
	gt.Value(t, *got.ReportedScore).Equal(40)

	w = do(t, s, httptest.NewRequest(http.MethodPost, "/api/reports/score", strings.NewReader(`{`)))
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
}
