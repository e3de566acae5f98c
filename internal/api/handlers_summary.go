package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/hnsum/internal/metrics"
	"github.com/dgallion1/hnsum/internal/render"
	"github.com/dgallion1/hnsum/internal/stream"
)

type summaryResponse struct {
	Response string `json:"response"`
	HTML     string `json:"html,omitempty"`
}

// handleStreamSummary streams summary text to the caller as the model
// produces it.
func (s *Server) handleStreamSummary(w http.ResponseWriter, r *http.Request) {
	const entry = "stream"
	target, err := ValidateTargetURL(r.URL.Query().Get("url"), s.cfg.AllowedURLPrefix)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}

	ctx := r.Context()
	src, err := s.orchestrator.OpenSummaryStream(ctx, target)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}
	defer src.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	n, err := stream.Relay(ctx, src, &flushWriter{w: w, rc: http.NewResponseController(w)})
	metrics.RecordStreamedTokens(n)
	if err != nil {
		// Headers are already out; the caller sees a truncated body.
		s.log.Warn("summary stream interrupted", "url", target, "tokens", n, "error", err)
		metrics.RecordRequest(entry, "interrupted")
		return
	}
	metrics.RecordRequest(entry, "ok")
}

// handleSummary returns the complete summary as JSON.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const entry = "summary"
	target, err := ValidateTargetURL(r.URL.Query().Get("url"), s.cfg.AllowedURLPrefix)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}

	text, err := s.orchestrator.Summarize(r.Context(), target)
	if err != nil {
		s.writeError(w, r, entry, err)
		return
	}

	resp := summaryResponse{Response: text}
	if r.URL.Query().Get("format") == "html" {
		html, err := render.ToHTML(text)
		if err != nil {
			s.writeError(w, r, entry, err)
			return
		}
		resp.HTML = html
	}
	metrics.RecordRequest(entry, "ok")
	writeJSON(w, resp)
}

// flushWriter pushes each write to the client immediately.
type flushWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *flushWriter) Flush() error {
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
