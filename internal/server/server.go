package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"threadlens/internal/model"
	"threadlens/internal/pipeline"
)

// AnalyzeRequest is the POST /analyze payload: the comment batch, the
// optional original post, and per-request config overrides (nil fields keep
// the server's base configuration).
type AnalyzeRequest struct {
	Comments     []model.Comment `json:"comments"`
	OriginalPost string          `json:"original_post,omitempty"`
	model.ConfigOverride
}

// Server exposes the analysis pipeline over HTTP
type Server struct {
	pipeline *pipeline.Pipeline
	baseCfg  model.Config
	verbose  bool
}

// New creates a server analyzing with the given base configuration
func New(p *pipeline.Pipeline, baseCfg model.Config, verbose bool) *Server {
	return &Server{pipeline: p, baseCfg: baseCfg, verbose: verbose}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	cfg := req.Override(s.baseCfg)
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.verbose {
		fmt.Fprintf(os.Stderr, "analyze: %d comments (topk=%d)\n", len(req.Comments), cfg.TopK)
	}

	result, err := s.pipeline.Analyze(r.Context(), req.Comments, req.OriginalPost, cfg)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
