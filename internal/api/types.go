package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/catalog"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/events"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/exercise"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/monitor"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/repcount"
	"github.com/danielpatrickdp/physio-coach/go-controller/internal/session"
)

// #region dependencies
// PlanStore is the read side of the plan catalog.
type PlanStore interface {
	GetPlan(ctx context.Context, ailment string) (catalog.Plan, error)
	Ailments(ctx context.Context) ([]string, error)
}

// HealthReporter exposes the latest detector health probe.
type HealthReporter interface {
	Status() monitor.Status
}

// Deps wires the server. Events and Health may be nil.
type Deps struct {
	Analyzer *session.Analyzer
	Plans    PlanStore
	Events   events.Publisher
	Health   HealthReporter
	Logger   *slog.Logger
}

// Options are per-request limits and defaults.
type Options struct {
	DefaultSide   exercise.Side
	DetectTimeout time.Duration
	MaxBodyBytes  int64
}

// DefaultOptions matches config.Default.
func DefaultOptions() Options {
	return Options{
		DefaultSide:   exercise.Left,
		DetectTimeout: 5 * time.Second,
		MaxBodyBytes:  16 << 20,
	}
}

// #endregion dependencies

// #region wire-types
// AnalyzeRequest is the body of POST /api/analyze_frame.
type AnalyzeRequest struct {
	// Frame is a data URL such as "data:image/jpeg;base64,...".
	Frame         string          `json:"frame"`
	ExerciseName  string          `json:"exercise_name"`
	PreviousState *repcount.State `json:"previous_state,omitempty"`
	Side          string          `json:"side,omitempty"`
}

// PlanRequest is the body of POST /api/get_plan.
type PlanRequest struct {
	Ailment string `json:"ailment"`
}

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// #endregion wire-types
