package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/interfaces"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/domain/types"
	"github.com/secmon-lab/uxlens/pkg/service/ingest"
	"github.com/secmon-lab/uxlens/pkg/service/logstore"
	"github.com/secmon-lab/uxlens/pkg/usecase"
	"github.com/secmon-lab/uxlens/pkg/utils/errutil"
	"github.com/secmon-lab/uxlens/pkg/utils/safe"
)

var (
	errInvalidRequest = goerr.New("invalid request")
	errAllFilesFailed = goerr.New("no file could be ingested")
)

type fileResponse struct {
	Filename string       `json:"filename"`
	Format   types.Format `json:"format,omitempty"`
	Total    int          `json:"total"`
	Valid    int          `json:"valid"`
	Ratio    float64      `json:"ratio"`
	Error    string       `json:"error,omitempty"`
}

type uploadResponse struct {
	Files []fileResponse `json:"files"`
	*usecase.Report
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadHandler accepts one or more multipart "file" parts, or a raw body
// named by the filename query parameter
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	files, err := readUploads(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	results, err := s.uc.IngestFiles(ctx, files)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	resp := uploadResponse{Files: make([]fileResponse, 0, len(results))}
	var firstErr error
	for _, res := range results {
		fr := fileResponse{Filename: res.Filename}
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			fr.Error = res.Err.Error()
		} else {
			fr.Format = res.Result.Format
			fr.Total = res.Result.Stats.Total
			fr.Valid = res.Result.Stats.Valid
			fr.Ratio = res.Result.Stats.Ratio()
		}
		resp.Files = append(resp.Files, fr)
	}

	if allFailed(results) {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(errAllFilesFailed, firstErr.Error()), http.StatusUnprocessableEntity)
		return
	}

	resp.Report = s.uc.Run(ctx, usecase.MergeEntries(results))
	writeJSON(w, r, http.StatusOK, resp)
}

func allFailed(results []*usecase.FileResult) bool {
	for _, res := range results {
		if res.Err == nil {
			return false
		}
	}
	return true
}

func readUploads(r *http.Request) ([]usecase.FileInput, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(defaultMaxUploadBytes); err != nil {
			return nil, goerr.Wrap(errInvalidRequest, "failed to parse multipart form", goerr.V("error", err.Error()))
		}
		headers := r.MultipartForm.File["file"]
		if len(headers) == 0 {
			return nil, goerr.Wrap(errInvalidRequest, "multipart field \"file\" is required")
		}

		files := make([]usecase.FileInput, 0, len(headers))
		for _, h := range headers {
			data, err := readPart(r, h)
			if err != nil {
				return nil, err
			}
			files = append(files, usecase.FileInput{Filename: h.Filename, Data: data})
		}
		return files, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, goerr.Wrap(errInvalidRequest, "failed to read request body", goerr.V("error", err.Error()))
	}
	if len(data) == 0 {
		return nil, goerr.Wrap(usecase.ErrNoInput, "request body is empty")
	}
	return []usecase.FileInput{{Filename: r.URL.Query().Get("filename"), Data: data}}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

func readPart(r *http.Request, h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open uploaded file", goerr.V(usecase.FilenameKey, h.Filename))
	}
	defer safe.Close(r.Context(), f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read uploaded file", goerr.V(usecase.FilenameKey, h.Filename))
	}
	return data, nil
}

func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	entries, err := s.uc.ReadLogs(r.Context(), force)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) listFixspecsHandler(w http.ResponseWriter, r *http.Request) {
	var filter interfaces.FixspecFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := types.ParseFixspecStatus(raw)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(errInvalidRequest, err.Error()), http.StatusBadRequest)
			return
		}
		filter.Status = status
	}

	specs, err := s.uc.ListFixspecs(r.Context(), filter)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"fixspecs": specs})
}

func (s *Server) getFixspecHandler(w http.ResponseWriter, r *http.Request) {
	spec, err := s.uc.GetFixspec(r.Context(), chi.URLParam(r, "issueID"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, spec)
}

func (s *Server) scoreReportHandler(w http.ResponseWriter, r *http.Request) {
	var report model.ExternalReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(errInvalidRequest, "failed to decode report", goerr.V("error", err.Error())), http.StatusBadRequest)
		return
	}

	scored, err := s.uc.ScoreExternalReport(r.Context(), &report)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, scored)
}

// statusOf maps domain errors to HTTP status codes
func statusOf(err error) int {
	var pe *ingest.ParseError
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, usecase.ErrNoInput),
		errors.Is(err, model.ErrInvalidIssueID):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrFixspecNotFound),
		errors.Is(err, logstore.ErrLogFileNotFound),
		errors.Is(err, usecase.ErrLogStoreNotConfigured):
		return http.StatusNotFound
	case errors.As(err, &pe),
		errors.Is(err, logstore.ErrInvalidJSON),
		errors.Is(err, logstore.ErrNotArray),
		errors.Is(err, logstore.ErrInvalidLogFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.WriteJSON(r.Context(), w, v)
}
