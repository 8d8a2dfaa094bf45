// Package monitor polls the pose detector's health on a schedule and keeps
// the latest result for the /healthz endpoint.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// HealthChecker is anything that can report whether it is able to serve.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Status is the most recent health probe result.
type Status struct {
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
	// Failures counts consecutive failed probes.
	Failures int `json:"consecutive_failures"`
}

// Monitor runs HealthChecker.Check every interval.
type Monitor struct {
	checker   HealthChecker
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler
	logger    *slog.Logger

	mu     sync.RWMutex
	status Status
	now    func() time.Time
}

// New creates a monitor. Nothing runs until Start.
func New(checker HealthChecker, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Monitor{
		checker:   checker,
		interval:  interval,
		timeout:   timeout,
		scheduler: gocron.NewScheduler(time.UTC),
		logger:    logger.With("component", "monitor"),
		now:       time.Now,
	}
}

// Start schedules the probe and runs it once immediately.
func (m *Monitor) Start() error {
	if m.interval <= 0 {
		return fmt.Errorf("monitor: interval must be positive, got %s", m.interval)
	}
	if _, err := m.scheduler.Every(m.interval).Do(m.probe); err != nil {
		return fmt.Errorf("schedule health check: %w", err)
	}
	m.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (m *Monitor) Stop() {
	m.scheduler.Stop()
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	m.RunOnce(ctx)
}

// RunOnce performs a single probe and records it.
func (m *Monitor) RunOnce(ctx context.Context) Status {
	start := m.now()
	err := m.checker.Check(ctx)
	end := m.now()

	m.mu.Lock()
	prev := m.status
	s := Status{
		Healthy:   err == nil,
		LatencyMS: end.Sub(start).Milliseconds(),
		CheckedAt: end,
	}
	if err != nil {
		s.Error = err.Error()
		s.Failures = prev.Failures + 1
	}
	m.status = s
	m.mu.Unlock()

	switch {
	case err != nil && prev.Healthy, err != nil && prev.CheckedAt.IsZero():
		m.logger.Warn("detector unhealthy", "error", err)
	case err == nil && !prev.Healthy && !prev.CheckedAt.IsZero():
		m.logger.Info("detector recovered", "after_failures", prev.Failures)
	}
	return s
}

// Status returns the latest probe result. Before the first probe it reports
// unhealthy with a zero CheckedAt.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
