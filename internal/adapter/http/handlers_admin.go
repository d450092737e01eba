package adapthttp

import "net/http"

func dateRange(r *http.Request) (start, end string) {
	q := r.URL.Query()
	return q.Get("start"), q.Get("end")
}

func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	start, end := dateRange(r)
	if admin := adminFromContext(r.Context()); admin != nil {
		s.logger.Debug("summary requested", "admin", admin.Username, "start", start, "end", end)
	}
	summary, err := s.admin.AdminSummary(r.Context(), start, end)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTopReaders(w http.ResponseWriter, r *http.Request) {
	start, end := dateRange(r)
	readers, err := s.admin.TopReaders(r.Context(), start, end)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_readers": readers})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start, end := dateRange(r)
	series, err := s.admin.DailySeries(r.Context(), start, end)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily_stats": series})
}
