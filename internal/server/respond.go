package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperr "github.com/kindred-app/kindred-backend/internal/errors"
)

// RespondJSON writes v as the JSON response body.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps a service error to its transport status. Internal errors
// are logged with their cause and surfaced as a generic message; typed errors
// pass their reason through.
func RespondError(w http.ResponseWriter, log *slog.Logger, err error) {
	mapped := apperr.Map(err)

	var appErr *apperr.Error
	msg := "internal error"
	if errors.As(mapped, &appErr) {
		if appErr.Kind == apperr.KindInternal {
			log.Error("request failed", "err", err)
		} else {
			msg = appErr.Msg
		}
	} else {
		log.Error("request failed", "err", err)
	}

	RespondJSON(w, apperr.Status(mapped), map[string]string{"error": msg})
}

// DecodeJSON parses the request body into dst, rejecting malformed payloads.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}
