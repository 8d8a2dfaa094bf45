package detector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region fake-backend
type fakeBackend struct {
	id       int
	inUse    atomic.Int32
	overlap  atomic.Bool
	closed   atomic.Bool
	detectFn func(ctx context.Context) error
	checkErr error
}

func (f *fakeBackend) Detect(ctx context.Context, _ []byte) (pose.Skeleton, error) {
	if f.inUse.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inUse.Add(-1)
	if f.detectFn != nil {
		if err := f.detectFn(ctx); err != nil {
			return nil, err
		}
	}
	return make(pose.Skeleton, pose.LandmarkCount), nil
}

func (f *fakeBackend) Check(context.Context) error { return f.checkErr }

func (f *fakeBackend) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeFactory struct {
	mu      sync.Mutex
	built   []*fakeBackend
	failAt  int
	prepare func(*fakeBackend)
}

func (f *fakeFactory) New() (Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.built)+1 == f.failAt {
		return nil, errors.New("spawn failed")
	}
	b := &fakeBackend{id: len(f.built)}
	if f.prepare != nil {
		f.prepare(b)
	}
	f.built = append(f.built, b)
	return b, nil
}

// #endregion fake-backend

// #region constructor-tests
func TestNewPool_InvalidSize(t *testing.T) {
	f := &fakeFactory{}
	if _, err := NewPool(0, f.New, nil); err == nil {
		t.Fatal("expected error for size 0")
	}
}

func TestNewPool_FactoryFailureClosesBuilt(t *testing.T) {
	f := &fakeFactory{failAt: 3}
	if _, err := NewPool(4, f.New, nil); err == nil {
		t.Fatal("expected factory error")
	}
	if len(f.built) != 2 {
		t.Fatalf("expected 2 built, got %d", len(f.built))
	}
	for _, b := range f.built {
		if !b.closed.Load() {
			t.Errorf("backend %d not closed", b.id)
		}
	}
}

// #endregion constructor-tests

// #region detect-tests
func TestPool_ExclusiveCheckout(t *testing.T) {
	f := &fakeFactory{prepare: func(b *fakeBackend) {
		b.detectFn = func(context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		}
	}}
	p, err := NewPool(3, f.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Detect(context.Background(), nil); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	for _, b := range f.built {
		if b.overlap.Load() {
			t.Errorf("backend %d served two requests at once", b.id)
		}
	}
}

func TestPool_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	f := &fakeFactory{prepare: func(b *fakeBackend) {
		b.detectFn = func(context.Context) error {
			<-release
			return nil
		}
	}}
	p, err := NewPool(1, f.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	go p.Detect(context.Background(), nil)
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Detect(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded while waiting, got %v", err)
	}
	close(release)
}

func TestPool_ReplacesExitedWorker(t *testing.T) {
	first := true
	f := &fakeFactory{prepare: func(b *fakeBackend) {
		if first {
			first = false
			b.detectFn = func(context.Context) error { return ErrWorkerExited }
		}
	}}
	p, err := NewPool(1, f.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if _, err := p.Detect(context.Background(), nil); !errors.Is(err, ErrWorkerExited) {
		t.Fatalf("expected ErrWorkerExited, got %v", err)
	}
	if len(f.built) != 2 || !f.built[0].closed.Load() {
		t.Fatalf("expected dead worker closed and replaced, built=%d", len(f.built))
	}
	if _, err := p.Detect(context.Background(), nil); err != nil {
		t.Fatalf("replacement should serve, got %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("expected size 1, got %d", p.Size())
	}
}

// #endregion detect-tests

// #region lifecycle-tests
func TestPool_Check(t *testing.T) {
	sick := errors.New("not serving")
	n := 0
	f := &fakeFactory{prepare: func(b *fakeBackend) {
		if n == 1 {
			b.checkErr = sick
		}
		n++
	}}
	p, err := NewPool(2, f.New, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Check(context.Background()); !errors.Is(err, sick) {
		t.Errorf("expected joined backend error, got %v", err)
	}

	p.Close()
	if err := p.Check(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_Close(t *testing.T) {
	f := &fakeFactory{}
	p, err := NewPool(2, f.New, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	for _, b := range f.built {
		if !b.closed.Load() {
			t.Errorf("backend %d not closed", b.id)
		}
	}
	if _, err := p.Detect(context.Background(), nil); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

// #endregion lifecycle-tests
