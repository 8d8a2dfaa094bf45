package detector

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// #region backend
// Backend is one exclusively owned pose estimator instance. A nil skeleton
// with a nil error means the frame contained nobody.
type Backend interface {
	Detect(ctx context.Context, frame []byte) (pose.Skeleton, error)
	Check(ctx context.Context) error
	Close() error
}

// Factory builds a fresh backend. The pool calls it at startup and again to
// replace a worker that exited.
type Factory func() (Backend, error)

// #endregion backend

// #region errors
var (
	// ErrPoolClosed is returned by Pool operations after Close.
	ErrPoolClosed = errors.New("detector pool closed")
	// ErrNotServing is returned by Check when the sidecar reports anything
	// other than SERVING.
	ErrNotServing = errors.New("pose service not serving")
	// ErrWorkerExited marks a subprocess backend that can no longer serve.
	ErrWorkerExited = errors.New("pose worker exited")
)

// #endregion errors

// #region wire
// response is the detector reply shared by both transports.
type response struct {
	Detected  bool         `msgpack:"detected"`
	Landmarks []pose.Point `msgpack:"landmarks"`
	Error     string       `msgpack:"error,omitempty"`
}

// skeleton converts a reply into the core type. A detected pose with too few
// landmarks is passed through so evaluation can report which one is missing.
func (r response) skeleton() pose.Skeleton {
	if !r.Detected {
		return nil
	}
	sk := make(pose.Skeleton, len(r.Landmarks))
	copy(sk, r.Landmarks)
	return sk
}

// #endregion wire
