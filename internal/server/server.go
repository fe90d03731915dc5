package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"meal-planner/internal/auth"
	"meal-planner/internal/document"
	"meal-planner/internal/gate"
	"meal-planner/internal/metrics"
)

// StateResponse is the body of a successful read or write.
type StateResponse struct {
	State   document.Document `json:"state"`
	Version int64             `json:"version"`
}

// ConflictResponse is the 409 body. State is the current authoritative
// document; callers must treat it as the rebase target.
type ConflictResponse struct {
	Error string            `json:"error"`
	State document.Document `json:"state"`
}

// writeRequest is the body of a write submission.
type writeRequest struct {
	State   document.Document `json:"state"`
	Version int64             `json:"version"`
}

// Server exposes the document over HTTP: GET /api/state returns the current
// document, POST /api/state submits a write through the gate.
type Server struct {
	gate    *gate.Gate
	metrics *metrics.Store
	secret  string
}

// New creates a Server. metricsStore may be nil, in which case submissions
// are not recorded.
func New(g *gate.Gate, metricsStore *metrics.Store, secret string) *Server {
	return &Server{gate: g, metrics: metricsStore, secret: secret}
}

// Handler returns the routed handler with auth applied to every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleRead)
	mux.HandleFunc("POST /api/state", s.handleWrite)

	outer := http.NewServeMux()
	outer.Handle("/api/", auth.Middleware(s.secret, mux))
	outer.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return outer
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	doc := s.gate.Current(r.Context())
	writeJSON(w, http.StatusOK, StateResponse{State: doc, Version: doc.Version})
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	// The queue reports its zero-based retry count per submission; absent or
	// garbage headers count as a first attempt.
	retries, _ := strconv.Atoi(r.Header.Get("X-Sync-Attempt"))

	start := time.Now()
	res, err := s.gate.Submit(r.Context(), req.State.Normalize(), req.Version)
	if err != nil {
		log.Printf("Failed to persist submission based on version %d: %v", req.Version, err)
		s.record(r.Context(), metrics.OutcomeError, retries, req.Version, req.Version, start)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to persist document"})
		return
	}

	if !res.Accepted {
		s.record(r.Context(), metrics.OutcomeConflict, retries, req.Version, res.Doc.Version, start)
		writeJSON(w, http.StatusConflict, ConflictResponse{
			Error: "version conflict",
			State: res.Doc,
		})
		return
	}

	s.record(r.Context(), metrics.OutcomeAccepted, retries, req.Version, res.Doc.Version, start)
	writeJSON(w, http.StatusOK, StateResponse{State: res.Doc, Version: res.Doc.Version})
}

func (s *Server) record(ctx context.Context, outcome string, retries int, base, result int64, start time.Time) {
	if s.metrics == nil {
		return
	}
	err := s.metrics.Record(ctx, metrics.SubmissionMetric{
		Outcome:       outcome,
		Retries:       retries,
		BaseVersion:   base,
		ResultVersion: result,
		LatencyMS:     time.Since(start).Milliseconds(),
	})
	if err != nil {
		log.Printf("Warning: failed to record sync metric: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
