package api

import (
	"net/http"

	"github.com/dgallion1/hnsum/internal/metrics"
)

type commentsResponse struct {
	Comments []string `json:"comments"`
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	const entry = "comments"
	target, err := ValidateTargetURL(r.URL.Query().Get("url"), s.cfg.AllowedURLPrefix)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}

	comments, err := s.orchestrator.Comments(r.Context(), target)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}
	metrics.RecordRequest(entry, "ok")
	writeJSON(w, commentsResponse{Comments: comments})
}
