package report

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/de-tools/medical-reports/pkg/models/api"
	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/serializers"
	"github.com/de-tools/medical-reports/pkg/store/filesystem"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	msgBackendWorking     = "Backend is working!"
	msgReportNotFound     = "report not found"
	msgReportInfoNotFound = "report info not found"
	msgInternalError      = "internal server error"
)

// Source exposes the current report. Handlers never trigger a generation.
type Source interface {
	Snapshot() domain.Snapshot
}

// Files opens reports by name inside the reports directory.
type Files interface {
	Open(name string) (*os.File, fs.FileInfo, error)
	Stat(name string) (fs.FileInfo, error)
}

type Handler struct {
	source Source
	files  Files
}

func NewHandler(source Source, files Files) *Handler {
	return &Handler{
		source: source,
		files:  files,
	}
}

func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	serializers.RespondJSON(w, r, http.StatusOK, api.Message{Message: msgBackendWorking})
}

func (h *Handler) LatestReport(w http.ResponseWriter, r *http.Request) {
	snapshot := h.source.Snapshot()
	if !snapshot.Available() {
		serializers.RespondError(w, r, http.StatusNotFound, msgReportNotFound)
		return
	}

	h.serveReport(w, r, filepath.Base(snapshot.Path))
}

func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		serializers.RespondError(w, r, http.StatusNotFound, msgReportNotFound)
		return
	}

	h.serveReport(w, r, name)
}

func (h *Handler) ReportInfo(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	snapshot := h.source.Snapshot()
	if !snapshot.Available() {
		serializers.RespondError(w, r, http.StatusNotFound, msgReportInfoNotFound)
		return
	}

	name := filepath.Base(snapshot.Path)
	info, err := h.files.Stat(name)
	if err != nil {
		if isNotFound(err) {
			logger.Warn().Str("filename", name).Msg("current report missing on disk")
			serializers.RespondError(w, r, http.StatusNotFound, msgReportInfoNotFound)
			return
		}
		logger.Error().Err(err).Str("filename", name).Msg("failed to stat report")
		serializers.RespondError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	serializers.RespondJSON(w, r, http.StatusOK, api.ReportInfo{
		LastUpdate: info.ModTime().UTC(),
		Filename:   info.Name(),
	})
}

// serveReport streams the named report. Invalid and missing names are
// reported the same way.
func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, name string) {
	logger := zerolog.Ctx(r.Context())

	f, info, err := h.files.Open(name)
	if err != nil {
		if isNotFound(err) {
			logger.Debug().Err(err).Str("filename", name).Msg("report not available")
			serializers.RespondError(w, r, http.StatusNotFound, msgReportNotFound)
			return
		}
		logger.Error().Err(err).Str("filename", name).Msg("failed to open report")
		serializers.RespondError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}
	defer f.Close()

	disposition := "inline"
	if r.URL.Query().Get("autoDownload") == "true" {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", domain.ReportContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": info.Name(),
	}))

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func isNotFound(err error) bool {
	return errors.Is(err, filesystem.ErrNotFound) || errors.Is(err, filesystem.ErrInvalidName)
}
