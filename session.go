package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Observer receives run events. Calls arrive from the worker goroutine.
// Progress may fire more than once for the same coordinate during repair;
// consumers must deduplicate by coordinate, not count calls.
type Observer interface {
	Progress(x, y int)
	Status(text string)
	Paused(reason string)
	Stopped(reason string)
	Finished()
	PaintError(msg string)
}

// Mode selects the scheduling strategy for a run.
type Mode int

const (
	// ModeRow paints in raster order, switching shades as they change.
	ModeRow Mode = iota
	// ModeColor groups cells by shade and paints one shade at a time.
	ModeColor
)

func (m Mode) String() string {
	if m == ModeColor {
		return "by-color"
	}
	return "by-row"
}

// Control signal values. Written by the controller, polled by the worker.
const (
	signalNone int32 = iota
	signalPause
	signalStop
)

// signalPollMS bounds cancellation latency: every sleep is built from
// increments of this size with a signal check between them.
const signalPollMS = 20

// Control-flow sentinels returned up through the scheduler when a signal is
// observed. Not user-visible errors.
var (
	errPauseRequested = errors.New("pause requested")
	errStopRequested  = errors.New("stop requested")
)

// ErrResumeMismatch means the image, canvas rect or mode changed between
// pause and resume; the session must restart instead.
var ErrResumeMismatch = errors.New("session inputs changed since pause; cannot resume")

// VerifyError reports a batch whose mismatches persisted past the pass
// limit. The session turns it into a pause so the user can adjust timing or
// tolerance and resume.
type VerifyError struct {
	Scope     string
	Passes    int
	Remaining []cellTarget
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %d cell(s) still wrong after %d verify passes; try raising the tolerance or slowing the click timing",
		e.Scope, len(e.Remaining), e.Passes)
}

// Session owns one paint run: the worker goroutine, the pause/stop signal,
// the completed-cell set and the signature that guards resume. The completed
// set is written only by the worker and read only between runs.
type Session struct {
	cfg     *Config
	grid    *PixelGrid
	canvas  Rect
	mode    Mode
	in      Input
	sampler Sampler
	frames  FrameGrabber
	obs     Observer

	signal    atomic.Int32
	signature string
	done      map[Point]bool
	base      *RGB // blank-canvas color, sampled once on first run
}

// NewSession validates preconditions and prepares a run. No input is
// simulated until Start.
func NewSession(cfg *Config, grid *PixelGrid, canvas Rect, mode Mode, in Input, sampler Sampler, frames FrameGrabber, obs Observer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Options.BucketFill {
		if err := cfg.ValidateBucketTools(); err != nil {
			return nil, err
		}
	}
	if grid.W <= 0 || grid.H <= 0 {
		return nil, fmt.Errorf("empty grid")
	}
	return &Session{
		cfg:       cfg,
		grid:      grid,
		canvas:    canvas,
		mode:      mode,
		in:        in,
		sampler:   sampler,
		frames:    frames,
		obs:       &safeObserver{inner: obs},
		signature: sessionSignature(grid, canvas, mode),
		done:      make(map[Point]bool),
	}, nil
}

// sessionSignature derives the identity key guarding resume.
func sessionSignature(grid *PixelGrid, canvas Rect, mode Mode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d,%d,%d,%d|%d", grid.Hash(), canvas.X, canvas.Y, canvas.W, canvas.H, mode)
	return hex.EncodeToString(h.Sum(nil))
}

// Signature returns the session identity key.
func (s *Session) Signature() string {
	return s.signature
}

// Completed returns the number of cells finished so far. Valid to call only
// while the worker is not running.
func (s *Session) Completed() int {
	return len(s.done)
}

// Total returns the number of grid cells in the run.
func (s *Session) Total() int {
	return s.grid.W * s.grid.H
}

// Start launches the worker goroutine.
func (s *Session) Start() {
	s.signal.Store(signalNone)
	go s.run()
}

// Resume restarts a paused session. The supplied inputs must produce the
// same signature as the original run; otherwise the resume is refused.
func (s *Session) Resume(grid *PixelGrid, canvas Rect, mode Mode) error {
	if sessionSignature(grid, canvas, mode) != s.signature {
		return ErrResumeMismatch
	}
	s.Start()
	return nil
}

// Pause asks the worker to suspend, preserving completed cells for resume.
func (s *Session) Pause() {
	s.signal.Store(signalPause)
}

// Stop asks the worker to terminate, discarding progress.
func (s *Session) Stop() {
	s.signal.Store(signalStop)
}

// checkSignal converts a pending control signal into its sentinel error.
func (s *Session) checkSignal() error {
	switch s.signal.Load() {
	case signalPause:
		return errPauseRequested
	case signalStop:
		return errStopRequested
	}
	return nil
}

// sleep waits for the given duration in short increments, honoring a
// pause/stop signal promptly regardless of the configured delay length.
func (s *Session) sleep(ms int) error {
	for elapsed := 0; elapsed < ms; elapsed += signalPollMS {
		if err := s.checkSignal(); err != nil {
			return err
		}
		step := signalPollMS
		if remaining := ms - elapsed; remaining < step {
			step = remaining
		}
		time.Sleep(time.Duration(step) * time.Millisecond)
	}
	return s.checkSignal()
}

func (s *Session) markDone(cell Point) {
	s.done[cell] = true
	s.obs.Progress(cell.X, cell.Y)
}

// run executes the full paint operation and maps its outcome to observer
// events. Runs on the worker goroutine.
func (s *Session) run() {
	logger.Infow("paint run starting",
		"grid", fmt.Sprintf("%dx%d", s.grid.W, s.grid.H),
		"canvas", s.canvas.String(),
		"mode", s.mode.String(),
		"completed", len(s.done))

	err := s.paint()

	switch {
	case err == nil:
		logger.Infow("paint run finished", "cells", len(s.done))
		s.obs.Finished()
	case errors.Is(err, errStopRequested):
		logger.Infow("paint run stopped by user")
		s.done = make(map[Point]bool)
		s.obs.Stopped("stopped by user")
	case errors.Is(err, errPauseRequested):
		logger.Infow("paint run paused by user", "completed", len(s.done))
		s.obs.Paused("paused by user")
	default:
		var ve *VerifyError
		if errors.As(err, &ve) {
			// Give the still-wrong cells back to the next run so a resume
			// with adjusted settings retries them.
			for _, t := range ve.Remaining {
				delete(s.done, t.Cell)
			}
			logger.Warnw("verification did not converge", "scope", ve.Scope, "remaining", len(ve.Remaining))
			s.obs.PaintError(ve.Error())
			s.obs.Paused(ve.Error())
			return
		}
		logger.Errorw("paint run failed", "err", err)
		s.obs.PaintError(err.Error())
		s.obs.Stopped(err.Error())
	}
}

func (s *Session) paint() error {
	p, err := newPainter(s)
	if err != nil {
		return err
	}
	if err := p.prepare(); err != nil {
		return err
	}

	switch s.mode {
	case ModeColor:
		err = p.paintGrouped()
	default:
		err = p.paintRows()
	}
	if err != nil {
		return err
	}

	// Leave the game UI in a predictable state.
	p.closePanel()
	return nil
}

// safeObserver shields the worker from observer bugs: a panicking callback
// is logged and swallowed, never allowed to abort the run.
type safeObserver struct {
	inner Observer
}

func (o *safeObserver) call(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnw("observer panicked", "event", name, "panic", r)
		}
	}()
	fn()
}

func (o *safeObserver) Progress(x, y int) {
	o.call("progress", func() { o.inner.Progress(x, y) })
}

func (o *safeObserver) Status(text string) {
	o.call("status", func() { o.inner.Status(text) })
}

func (o *safeObserver) Paused(reason string) {
	o.call("paused", func() { o.inner.Paused(reason) })
}

func (o *safeObserver) Stopped(reason string) {
	o.call("stopped", func() { o.inner.Stopped(reason) })
}

func (o *safeObserver) Finished() {
	o.call("finished", func() { o.inner.Finished() })
}

func (o *safeObserver) PaintError(msg string) {
	o.call("error", func() { o.inner.PaintError(msg) })
}
