package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/obras/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// storeError maps a store error kind to a status code. Persistence failures
// are logged and answered with a generic message.
func storeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *store.Error
	msg := err.Error()
	if errors.As(err, &se) && se.Msg != "" {
		msg = se.Msg
	}

	switch {
	case errors.Is(err, store.ErrValidation):
		jsonError(w, http.StatusBadRequest, msg)
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, msg)
	case errors.Is(err, store.ErrUniquenessConflict):
		jsonError(w, http.StatusConflict, "conflicting concurrent change, retry")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}
