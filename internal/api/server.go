package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"chat-reply-engine/internal/engine"
	"chat-reply-engine/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type Config struct {
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
}

// Server exposes a read-only engine over HTTP. The engine is never mutated
// after construction, so handlers share it without locking.
type Server struct {
	engine  *engine.Engine
	limiter *rate.Limiter
	started time.Time
}

func NewServer(e *engine.Engine, cfg Config) *Server {
	metrics.Register()
	s := &Server{engine: e, started: time.Now()}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}
	return s
}

type RespondRequest struct {
	Query *string `json:"query"`
}

type RespondResponse struct {
	Response  string `json:"response"`
	Request   string `json:"request"`
	Score     int    `json:"score"`
	Matched   bool   `json:"matched"`
	Position  int    `json:"position"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":    "chat-reply-engine",
		"ok":         true,
		"time_utc":   time.Now().UTC().Format(time.RFC3339),
		"endpoints":  []string{"/health", "/stats", "/respond", "/metrics"},
		"api_schema": 1,
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"time_utc": time.Now().UTC().Format(time.RFC3339),
		"entries":  s.engine.Len(),
	})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":        s.engine.Len(),
		"responses":      s.engine.ResponseCount(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) HandleRespond(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == nil {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	reqID := w.Header().Get(requestIDHeader)
	m, err := s.engine.Retrieve(*req.Query)
	if err != nil {
		log.Error().Err(err).Str("component", "api").Str("request_id", reqID).Msg("respond failed")
		http.Error(w, "retrieval failed", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("component", "api").
		Str("request_id", reqID).
		Int("position", m.Position).
		Int("score", m.Score).
		Msg("respond ok")

	writeJSON(w, http.StatusOK, RespondResponse{
		Response:  m.Response,
		Request:   m.Entry.Request,
		Score:     m.Score,
		Matched:   m.Matched,
		Position:  m.Position,
		RequestID: reqID,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument assigns a request id and counts the outcome per path. Limited
// paths are subject to the rate limiter.
func (s *Server) instrument(path string, limited bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() { metrics.IncHTTPRequest(path, strconv.Itoa(rec.status)) }()

		if limited && s.limiter != nil && !s.limiter.Allow() {
			log.Warn().Str("component", "api").Str("request_id", id).Str("path", path).Msg("rate limited")
			http.Error(rec, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(rec, r)
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.instrument("/", false, s.HandleRoot))
	mux.HandleFunc("/health", s.instrument("/health", false, s.HandleHealth))
	mux.HandleFunc("/stats", s.instrument("/stats", false, s.HandleStats))
	mux.HandleFunc("/respond", s.instrument("/respond", true, s.HandleRespond))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// NewHTTPServer wraps the router with the given timeouts.
func (s *Server) NewHTTPServer(addr string, readTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}
}
