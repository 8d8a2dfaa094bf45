package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region pool-struct
// Pool owns a fixed set of backends. Each Detect call checks one out
// exclusively, so a backend never serves two requests at once.
type Pool struct {
	factory Factory
	logger  *slog.Logger
	idle    chan Backend

	mu       sync.RWMutex
	backends []Backend
	closed   bool
	done     chan struct{}
}

// #endregion pool-struct

// #region constructor
// NewPool builds size backends up front. If any fails, the ones already
// built are closed.
func NewPool(size int, factory Factory, logger *slog.Logger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("detector pool: size must be positive, got %d", size)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		factory: factory,
		logger:  logger,
		idle:    make(chan Backend, size),
		done:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		b, err := factory()
		if err != nil {
			for _, built := range p.backends {
				built.Close()
			}
			return nil, fmt.Errorf("detector pool: backend %d: %w", i, err)
		}
		p.backends = append(p.backends, b)
		p.idle <- b
	}
	return p, nil
}

// #endregion constructor

// #region detect
// Detect waits for an idle backend, or until ctx is done or the pool closes.
func (p *Pool) Detect(ctx context.Context, frame []byte) (pose.Skeleton, error) {
	b, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	sk, err := b.Detect(ctx, frame)
	p.release(b, err)
	return sk, err
}

func (p *Pool) acquire(ctx context.Context) (Backend, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}
	select {
	case b := <-p.idle:
		return b, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for detector: %w", ctx.Err())
	}
}

// release returns b to the idle set, swapping in a fresh backend when b's
// worker has exited.
func (p *Pool) release(b Backend, detectErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	if errors.Is(detectErr, ErrWorkerExited) {
		if nb, err := p.factory(); err != nil {
			p.logger.Error("replace pose worker failed", "error", err)
		} else {
			b.Close()
			p.replace(b, nb)
			p.logger.Warn("pose worker replaced", "cause", detectErr)
			b = nb
		}
	}
	p.idle <- b
}

func (p *Pool) replace(old, nb Backend) {
	for i, b := range p.backends {
		if b == old {
			p.backends[i] = nb
			return
		}
	}
}

// #endregion detect

// #region health
// Size reports how many backends the pool owns.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.backends)
}

// Check runs Check on every backend and joins the failures.
func (p *Pool) Check(ctx context.Context) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	backends := append([]Backend(nil), p.backends...)
	p.mu.RUnlock()

	var errs []error
	for i, b := range backends {
		if err := b.Check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("backend %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// #endregion health

// #region close
// Close closes every backend, including ones checked out. Waiting callers
// get ErrPoolClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	backends := p.backends
	p.mu.Unlock()

	var errs []error
	for _, b := range backends {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// #endregion close
