package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeChecker struct {
	calls atomic.Int32
	err   atomic.Value // error wrapper
}

type errBox struct{ err error }

func (f *fakeChecker) set(err error) { f.err.Store(errBox{err}) }

func (f *fakeChecker) Check(context.Context) error {
	f.calls.Add(1)
	if v, ok := f.err.Load().(errBox); ok {
		return v.err
	}
	return nil
}

func newTestMonitor(c HealthChecker, interval time.Duration) *Monitor {
	return New(c, interval, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStatusBeforeFirstProbe(t *testing.T) {
	m := newTestMonitor(&fakeChecker{}, time.Second)
	s := m.Status()
	if s.Healthy || !s.CheckedAt.IsZero() {
		t.Errorf("expected zero unhealthy status, got %+v", s)
	}
}

func TestRunOnce(t *testing.T) {
	c := &fakeChecker{}
	m := newTestMonitor(c, time.Second)

	tick := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		tick = tick.Add(15 * time.Millisecond)
		return tick
	}

	s := m.RunOnce(context.Background())
	if !s.Healthy || s.Error != "" || s.Failures != 0 {
		t.Fatalf("expected healthy, got %+v", s)
	}
	if s.LatencyMS != 15 {
		t.Errorf("expected 15ms latency, got %d", s.LatencyMS)
	}

	c.set(errors.New("sidecar down"))
	m.RunOnce(context.Background())
	s = m.RunOnce(context.Background())
	if s.Healthy || s.Error != "sidecar down" {
		t.Fatalf("expected unhealthy, got %+v", s)
	}
	if s.Failures != 2 {
		t.Errorf("expected 2 consecutive failures, got %d", s.Failures)
	}

	c.set(nil)
	s = m.RunOnce(context.Background())
	if !s.Healthy || s.Failures != 0 {
		t.Errorf("expected recovery, got %+v", s)
	}
	if m.Status() != s {
		t.Errorf("Status() does not match last probe")
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	c := &fakeChecker{}
	m := newTestMonitor(c, time.Hour)
	if err := m.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for c.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.calls.Load() == 0 {
		t.Fatal("expected an immediate probe")
	}
	if !m.Status().Healthy {
		t.Errorf("expected healthy status, got %+v", m.Status())
	}
}

func TestStartRejectsZeroInterval(t *testing.T) {
	m := newTestMonitor(&fakeChecker{}, 0)
	if err := m.Start(); err == nil {
		t.Fatal("expected error")
	}
}
