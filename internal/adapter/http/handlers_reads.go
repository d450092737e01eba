package adapthttp

import (
	"net/http"

	"streaks/internal/domain"
)

func (s *Server) handleRecordRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		PostID      string `json:"post_id"`
		ReadDate    string `json:"read_date"`
		UTMSource   string `json:"utm_source"`
		UTMMedium   string `json:"utm_medium"`
		UTMCampaign string `json:"utm_campaign"`
		UTMChannel  string `json:"utm_channel"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	utm := domain.UTM{
		Source:   body.UTMSource,
		Medium:   body.UTMMedium,
		Campaign: body.UTMCampaign,
		Channel:  body.UTMChannel,
	}
	recorded, err := s.reads.RecordRead(r.Context(), body.Email, body.PostID, body.ReadDate, utm)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorded": recorded})
}
