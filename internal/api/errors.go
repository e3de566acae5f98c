package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/hnsum/internal/fetch"
	"github.com/dgallion1/hnsum/internal/metrics"
	"github.com/dgallion1/hnsum/internal/parser"
	"github.com/dgallion1/hnsum/internal/pipeline"
)

// classify maps a pipeline error to a status code, a caller-facing message
// and a metrics outcome label.
func classify(err error) (int, string, string) {
	var (
		ve *ValidationError
		nf *parser.ContentNotFoundError
		fe *fetch.Error
		ee *pipeline.ExhaustedError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Reason, "invalid"
	case errors.As(err, &nf):
		if nf.Missing == parser.MissingHeading {
			return http.StatusNotFound, "Title not found", "not_found"
		}
		return http.StatusNotFound, "Comments not found", "not_found"
	case errors.As(err, &fe):
		return http.StatusBadGateway, "Failed to fetch discussion page", "fetch_error"
	case errors.As(err, &ee):
		return http.StatusBadGateway, fmt.Sprintf("Inference failed after %d attempts", ee.Attempts), "inference_error"
	case errors.Is(err, pipeline.ErrInferenceUnavailable):
		return http.StatusServiceUnavailable, "Inference unavailable", "inference_error"
	case errors.Is(err, context.Canceled):
		return 0, "", "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out", "timeout"
	default:
		return http.StatusInternalServerError, "Internal error", "error"
	}
}

// writeError reports err to the caller as plain text. A cancelled request
// gets no body since nobody is listening.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, entry string, err error) {
	status, msg, outcome := classify(err)
	metrics.RecordRequest(entry, outcome)
	if status == 0 {
		s.log.Info("request cancelled", "entry", entry, "error", err)
		return
	}
	if status >= 500 {
		s.log.Error("pipeline failed", "entry", entry, "status", status, "error", err)
	} else {
		s.log.Info("request rejected", "entry", entry, "status", status, "error", err)
	}
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
