package server

import (
	"net/http"
	"path/filepath"

	handlers "github.com/de-tools/medical-reports/pkg/handlers/report"
	"github.com/de-tools/medical-reports/pkg/models/api"
	"github.com/de-tools/medical-reports/pkg/serializers"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	serializers.RespondJSON(w, r, http.StatusOK, api.Health{Status: "ok"})
}

// handleReady reports ready while the current report can be served.
func handleReady(reports handlers.Source, files handlers.Files) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := reports.Snapshot()
		if !snapshot.Available() {
			serializers.RespondJSON(w, r, http.StatusServiceUnavailable, api.Health{Status: "not ready"})
			return
		}
		if _, err := files.Stat(filepath.Base(snapshot.Path)); err != nil {
			serializers.RespondJSON(w, r, http.StatusServiceUnavailable, api.Health{Status: "not ready"})
			return
		}
		serializers.RespondJSON(w, r, http.StatusOK, api.Health{Status: "ok"})
	}
}
