package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/helmcode/devdiag/pkg/analyzer"
	"github.com/helmcode/devdiag/pkg/catalog"
)

const (
	errInvalidJSON = "invalid JSON body"
	errMissingText = `Missing "text" in request body`
)

type classifyRequest struct {
	Text *string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type catalogResponse struct {
	Devices  []catalog.DeviceSummary `json:"devices"`
	Patterns int                     `json:"patterns"`
	Skipped  int                     `json:"skipped"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtract(strategy analyzer.Strategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.classify(w, r, strategy)
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	strategy := s.opts.Strategy
	if q := r.URL.Query().Get("strategy"); q != "" {
		parsed, err := analyzer.ParseStrategy(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		strategy = parsed
	}
	s.classify(w, r, strategy)
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request, strategy analyzer.Strategy) {
	text, status, msg := decodeText(w, r)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	result := s.classifier.Classify(r.Context(), text, strategy)
	if result.EnrichmentErr != nil {
		s.logger.Warn("responding without issue types",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(result.EnrichmentErr))
	}
	writeJSON(w, http.StatusOK, result.Response())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.classifier.Catalog()
	writeJSON(w, http.StatusOK, catalogResponse{
		Devices:  c.Summary(),
		Patterns: c.Len(),
		Skipped:  c.Skipped(),
	})
}

// decodeText reads {"text": "..."} and returns the validated text, or a
// non-zero status with the error message to send.
func decodeText(w http.ResponseWriter, r *http.Request) (string, int, string) {
	var req classifyRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req)
	switch {
	case errors.Is(err, io.EOF):
		return "", http.StatusBadRequest, errMissingText
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return "", http.StatusBadRequest, errInvalidJSON
	}
	if req.Text == nil {
		return "", http.StatusBadRequest, errMissingText
	}
	text, err := analyzer.ValidateText(*req.Text)
	if err != nil {
		return "", http.StatusBadRequest, errMissingText
	}
	return text, 0, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
