package api

import (
	"net/http"
	"strconv"

	"github.com/dgallion1/hnsum/internal/metrics"
)

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	const entry = "image"
	target, err := ValidateTargetURL(r.URL.Query().Get("url"), s.cfg.AllowedURLPrefix)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}

	img, err := s.orchestrator.Image(r.Context(), target)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}
	metrics.RecordRequest(entry, "ok")
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Write(img)
}
