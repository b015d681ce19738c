package serializers

import (
	"encoding/json"
	"net/http"

	"github.com/de-tools/medical-reports/pkg/models/api"
	"github.com/rs/zerolog"
)

// RespondJSON writes v as the JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Int("status", status).
			Msg("failed to encode response")
	}
}

// RespondError writes {"error": message}.
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondJSON(w, r, status, api.Error{Error: message})
}
