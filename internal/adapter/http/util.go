package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"streaks/internal/app"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// serviceError maps application errors onto HTTP responses. Validation
// failures carry their message back to the caller; everything else is
// logged and answered with an opaque 500.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if app.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
