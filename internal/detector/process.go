package detector

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// maxMessageSize bounds a single framed message from the worker.
const maxMessageSize = 64 << 20

// stopGrace is how long Close waits for the worker to exit on its own after
// stdin is closed.
const stopGrace = 2 * time.Second

// #region config
// ProcessConfig describes how to launch a local pose worker.
type ProcessConfig struct {
	Command string
	Args    []string
	// Env is appended to the parent environment.
	Env []string
}

// #endregion config

// #region process-struct
// ProcessDetector runs pose estimation in a child process. Requests and
// replies are msgpack maps framed by a 4-byte big-endian length on the
// child's stdin and stdout. One request is in flight at a time.
type ProcessDetector struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdin  io.WriteCloser
	stdout io.ReadCloser
	logger *slog.Logger

	mu     sync.Mutex
	exited atomic.Bool
	done   chan struct{}
}

// request is what the worker reads for each frame.
type request struct {
	Frame []byte `msgpack:"frame"`
}

// #endregion process-struct

// #region constructor
// StartProcessDetector spawns the worker and returns once it is running.
func StartProcessDetector(cfg ProcessConfig, logger *slog.Logger) (*ProcessDetector, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("start pose worker: command is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = &stderrLogger{logger: logger}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start pose worker: %w", err)
	}

	p := &ProcessDetector{
		cmd:    cmd,
		cancel: cancel,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		done:   make(chan struct{}),
	}
	logger.Info("pose worker spawned", "command", cfg.Command, "pid", cmd.Process.Pid)

	go p.waitProcess()
	return p, nil
}

// #endregion constructor

// #region detect
// Detect sends one frame and waits for the reply. Cancelling ctx kills the
// worker, since the stream can no longer be resynchronized.
func (p *ProcessDetector) Detect(ctx context.Context, frame []byte) (pose.Skeleton, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exited.Load() {
		return nil, ErrWorkerExited
	}

	type result struct {
		r   response
		err error
	}
	ch := make(chan result, 1)
	go func() {
		r, err := p.roundTrip(frame)
		ch <- result{r, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			p.kill()
			return nil, fmt.Errorf("pose worker: %w: %w", ErrWorkerExited, res.err)
		}
		if res.r.Error != "" {
			return nil, fmt.Errorf("pose worker: %s", res.r.Error)
		}
		return res.r.skeleton(), nil
	case <-ctx.Done():
		p.kill()
		return nil, fmt.Errorf("pose worker: %w: %w", ErrWorkerExited, ctx.Err())
	}
}

func (p *ProcessDetector) roundTrip(frame []byte) (response, error) {
	var r response
	if err := writeFrame(p.stdin, request{Frame: frame}); err != nil {
		return r, err
	}
	if err := readFrame(p.stdout, &r); err != nil {
		return r, err
	}
	return r, nil
}

// #endregion detect

// #region framing
func writeFrame(w io.Writer, v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal msgpack: %w", err)
	}
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func readFrame(r io.Reader, v any) error {
	var lengthBuf [4]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return fmt.Errorf("read length prefix: %w", err)
	}
	n := binary.BigEndian.Uint32(lengthBuf[:])
	if n > maxMessageSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unmarshal msgpack: %w", err)
	}
	return nil
}

// #endregion framing

// #region lifecycle
// Check reports whether the worker process is still alive.
func (p *ProcessDetector) Check(_ context.Context) error {
	if p.exited.Load() {
		return ErrWorkerExited
	}
	return nil
}

// Close asks the worker to exit by closing stdin and kills it if it has not
// gone within the grace period.
func (p *ProcessDetector) Close() error {
	_ = p.stdin.Close()
	select {
	case <-p.done:
	case <-time.After(stopGrace):
		p.logger.Warn("pose worker did not exit, killing", "pid", p.cmd.Process.Pid)
		p.cancel()
		<-p.done
	}
	p.cancel()
	return nil
}

func (p *ProcessDetector) kill() {
	p.exited.Store(true)
	p.cancel()
}

// waitProcess reaps the child so it never lingers as a zombie.
func (p *ProcessDetector) waitProcess() {
	err := p.cmd.Wait()
	wasKilled := p.exited.Swap(true)
	close(p.done)
	switch {
	case err == nil:
		p.logger.Debug("pose worker exited", "pid", p.cmd.Process.Pid)
	case wasKilled:
		p.logger.Debug("pose worker stopped", "pid", p.cmd.Process.Pid, "error", err)
	default:
		p.logger.Error("pose worker crashed", "pid", p.cmd.Process.Pid, "error", err)
	}
}

// #endregion lifecycle

// #region stderr
// stderrLogger forwards the worker's stderr to the logger line by line.
type stderrLogger struct {
	logger *slog.Logger
	buf    bytes.Buffer
}

func (s *stderrLogger) Write(b []byte) (int, error) {
	s.buf.Write(b)
	for {
		i := bytes.IndexByte(s.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimSpace(string(s.buf.Next(i + 1))); line != "" {
			s.logger.Debug("pose worker", "stderr", line)
		}
	}
	return len(b), nil
}

// #endregion stderr
