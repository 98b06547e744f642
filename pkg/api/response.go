package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/fixes-world/tokenlist-api/pkg/tokenlist"
)

// ErrorBody is the error payload of a failed API call.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorEnvelope wraps every failed API response.
type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

const internalErrorMessage = "Internal Server Error"

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to encode response")
		writeErrorMessage(w, r, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write response")
	}
}

// writeError renders err in the error envelope. Service errors keep their
// status and message; anything else is an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *tokenlist.Error
	if errors.As(err, &e) {
		writeErrorMessage(w, r, e.Status, e.Message)
		return
	}

	hlog.FromRequest(r).Error().Err(err).Msg("Unhandled request error")
	writeErrorMessage(w, r, http.StatusInternalServerError, internalErrorMessage)
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data, _ := json.Marshal(ErrorEnvelope{
		Success: false,
		Error:   ErrorBody{Code: status, Message: message},
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write error response")
	}
}
