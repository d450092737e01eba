package adapthttp

import (
	"net/http"
	"strconv"
)

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := q.Get("email")

	var id int64
	if raw := q.Get("id"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		id = n
	}

	stats, err := s.stats.GetUserStats(r.Context(), id, email)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
