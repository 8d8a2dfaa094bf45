// Package api serves the physiotherapy HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/catalog"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/events"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/progress"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/session"
)

// eventTimeout bounds a best-effort event publish.
const eventTimeout = 2 * time.Second

// #region server-struct
// Server holds the handlers' dependencies. It keeps no per-session state.
type Server struct {
	analyzer *session.Analyzer
	plans    PlanStore
	events   events.Publisher
	health   HealthReporter
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

// NewServer builds a server from deps.
func NewServer(deps Deps, opts Options) *Server {
	s := &Server{
		analyzer: deps.Analyzer,
		plans:    deps.Plans,
		events:   deps.Events,
		health:   deps.Health,
		logger:   deps.Logger,
		opts:     opts,
		now:      time.Now,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "api")
	return s
}

// Handler returns the routed handler with CORS and request IDs applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/analyze_frame", s.handleAnalyzeFrame)
	mux.HandleFunc("POST /api/get_plan", s.handleGetPlan)
	mux.HandleFunc("GET /api/progress/{user_id}", s.handleProgress)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return withRequestID(withCORS(mux))
}

// #endregion server-struct

// #region handlers
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{Message: "AI Physiotherapy API is running", Status: "healthy"})
}

func (s *Server) handleAnalyzeFrame(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	var req AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, decodeStatus(err), err.Error())
		return
	}
	if req.ExerciseName == "" {
		s.writeError(w, http.StatusBadRequest, "exercise_name is required")
		return
	}
	side, err := exercise.ParseSide(req.Side, s.opts.DefaultSide)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	frame, err := DecodeDataURL(req.Frame)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.DetectTimeout)
	defer cancel()

	res, err := s.analyzer.Analyze(ctx, frame, session.Request{
		Exercise: req.ExerciseName,
		Side:     side,
		Previous: req.PreviousState,
	})
	switch {
	case errors.Is(err, pose.ErrMissingLandmark):
		log.Error("frame processing failed", "exercise", req.ExerciseName, "error", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing frame: %v", err))
		return
	case err != nil:
		log.Error("pose detection failed", "exercise", req.ExerciseName, "error", err)
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("Pose detection failed: %v", err))
		return
	}

	log.Debug("frame analyzed",
		"exercise", req.ExerciseName,
		"side", side,
		"detected", res.Detected,
		"reps", res.Reps,
		"stage", res.State.Phase,
		"angle", res.State.Angle,
	)
	if res.RepCompleted {
		s.publishRep(r, req.ExerciseName, side, res)
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, decodeStatus(err), err.Error())
		return
	}

	plan, err := s.plans.GetPlan(r.Context(), req.Ailment)
	if errors.Is(err, catalog.ErrPlanNotFound) {
		available, lerr := s.plans.Ailments(r.Context())
		if lerr != nil {
			s.requestLogger(r).Error("list ailments failed", "error", lerr)
		}
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("Exercise plan not found for '%s'. Available plans: %s",
			strings.ToLower(strings.TrimSpace(req.Ailment)), quoteList(available)))
		return
	}
	if err != nil {
		s.requestLogger(r).Error("get plan failed", "ailment", req.Ailment, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Error loading exercise plan")
		return
	}
	s.writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, progress.Mock(r.PathValue("user_id")))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.health == nil {
		s.writeJSON(w, http.StatusOK, map[string]bool{"healthy": true})
		return
	}
	st := s.health.Status()
	code := http.StatusOK
	if !st.Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, st)
}

// #endregion handlers

// #region events
// publishRep sends the rep event in the background so a slow broker never
// delays the response.
func (s *Server) publishRep(r *http.Request, name string, side exercise.Side, res session.Result) {
	ev := events.RepCompleted{
		Exercise:  name,
		Side:      string(side),
		Reps:      res.Reps,
		Angle:     res.State.Angle,
		RequestID: requestID(r.Context()),
		At:        s.now().UTC(),
	}
	log := s.requestLogger(r)
	ctx := context.WithoutCancel(r.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, eventTimeout)
		defer cancel()
		if err := s.events.PublishRepCompleted(ctx, ev); err != nil {
			log.Warn("rep event not published", "error", err)
		}
	}()
}

// #endregion events

// #region helpers
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", requestID(r.Context()))
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "status", code, "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, detail string) {
	s.writeJSON(w, code, errorResponse{Detail: detail})
}

// decodeStatus maps a request decoding failure to its status code.
func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "'" + it + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// #endregion helpers

// #region middleware
type requestIDKey struct{}

// withRequestID tags each request with X-Request-ID, reusing the caller's.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withCORS allows any origin, with credentials, and answers preflights.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		if origin == "" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			}
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// #endregion middleware
