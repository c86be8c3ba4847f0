package server

import (
	"encoding/json"
	"net/http"

	"github.com/imshq/go-ims-server/internal/apierror"
	"github.com/rs/zerolog/log"
)

type responseBody struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type errorDetails struct {
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, statusCode int, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(responseBody{Message: message, Details: details}); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

// writeError maps operational errors to their status and description;
// everything else becomes an opaque 500, details only logged.
func writeError(w http.ResponseWriter, err error) {
	apiErr := apierror.From(err)
	if !apiErr.IsOperational {
		log.Error().Err(err).Msg("unexpected internal error")
	}
	writeJSON(w, apiErr.StatusCode, apiErr.Name, errorDetails{Description: apiErr.Description})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apierror.BadRequest("Invalid request body."))
		return false
	}
	return true
}
