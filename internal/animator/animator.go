// Package animator drives an animation at a fixed frame rate and feeds every
// drawn frame into a capture stream and recorder.
package animator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ivlev/confclip/internal/animation"
	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/capture"
)

// FrameInterval is the tick budget at animation.FPS.
const FrameInterval = time.Second / animation.FPS

// Timeslice is how often the recorder is asked to flush encoded output.
const Timeslice = time.Second

// ErrNotStarted is returned by Step before a successful Start.
var ErrNotStarted = errors.New("animator not started")

// Surface is a drawing surface the animator can clear and size.
type Surface interface {
	animation.Surface
	ClearRect(x, y, w, h float64)
	Width() int
	Height() int
}

// Result describes a finished recording.
type Result struct {
	URL    string
	Frames int
	Size   int
	Type   string
}

type Animator struct {
	surface  Surface
	anim     animation.Animation
	stream   any
	recorder capture.Recorder

	clock   clock.Clock
	logger  *slog.Logger
	fetcher assets.Fetcher
	output  string

	frame    int
	started  bool
	stopped  bool
	sink     capture.Sink
	requests int
	result   Result

	done     chan struct{}
	doneOnce sync.Once
}

type Option func(*Animator)

func WithClock(c clock.Clock) Option {
	return func(a *Animator) { a.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Animator) { a.logger = l }
}

// WithOutput sets the file the finished recording is written to. Without it
// the result carries no URL.
func WithOutput(path string) Option {
	return func(a *Animator) { a.output = path }
}

func WithFetcher(f assets.Fetcher) Option {
	return func(a *Animator) { a.fetcher = f }
}

// New binds anim to a surface, the capture stream reading that surface and
// the recorder encoding the stream.
func New(surface Surface, anim animation.Animation, stream any, recorder capture.Recorder, opts ...Option) *Animator {
	a := &Animator{
		surface:  surface,
		anim:     anim,
		stream:   stream,
		recorder: recorder,
		clock:    clock.New(),
		logger:   slog.New(slog.DiscardHandler),
		fetcher:  assets.NewLoader(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "animator")
	return a
}

// Requests counts the frame requests issued so far.
func (a *Animator) Requests() int { return a.requests }

// Buffered is the number of encoded bytes waiting in the sink.
func (a *Animator) Buffered() int { return a.sink.Size() }

// Done is closed once the playback has ended.
func (a *Animator) Done() <-chan struct{} { return a.done }

// Result is valid after Done is closed.
func (a *Animator) Result() Result { return a.result }

// Start prepares the animation and begins recording. Nothing is drawn when
// preparation fails.
func (a *Animator) Start(ctx context.Context) error {
	if err := a.anim.Prepare(ctx, a.fetcher); err != nil {
		return fmt.Errorf("prepare animation: %w", err)
	}
	a.frame = 0
	if err := a.recorder.Start(Timeslice); err != nil {
		return fmt.Errorf("start recorder: %w", err)
	}
	a.started = true
	a.logger.Info("playback started",
		"duration", a.anim.Duration(),
		"frames", animation.MaxFrames(a.anim),
		"width", a.surface.Width(),
		"height", a.surface.Height())
	return nil
}

// Step draws the next frame and requests its capture. It reports true once
// the frame counter has passed the animation's length; the recording is
// then finished and Done is closed.
func (a *Animator) Step() (bool, error) {
	if !a.started {
		return false, ErrNotStarted
	}
	if a.stopped {
		return true, nil
	}

	a.frame++
	w, h := a.surface.Width(), a.surface.Height()
	a.surface.SetAlpha(1)
	a.surface.SetComposite(canvas.SourceOver)
	a.surface.ClearRect(0, 0, float64(w), float64(h))
	a.anim.Draw(a.surface, a.frame, w, h)

	a.requestFrame()
	a.drain()

	if float64(a.frame) > animation.MaxFrames(a.anim) {
		return true, a.finish(true)
	}
	return false, nil
}

func (a *Animator) requestFrame() {
	n, err := capture.Request(a.stream)
	a.requests += n
	switch {
	case errors.Is(err, capture.ErrNoFrameCapability):
		a.logger.Warn("stream can't request frames", "frame", a.frame)
	case err != nil:
		a.logger.Warn("frame request failed", "frame", a.frame, "error", err)
	}
}

func (a *Animator) drain() {
	for {
		select {
		case c, ok := <-a.recorder.Data():
			if !ok {
				return
			}
			a.sink.Push(c)
		default:
			return
		}
	}
}

// finish stops the recorder, collects what it still emits and assembles the
// recording. The blob is only written when write is set.
func (a *Animator) finish(write bool) error {
	a.stopped = true
	a.recorder.Stop()
	for c := range a.recorder.Data() {
		a.sink.Push(c)
	}
	if err := a.recorder.Err(); err != nil {
		a.logger.Error("recorder error", "error", err)
	}

	a.logger.Debug("assembling recording", "chunks", a.sink.Len(), "size", a.sink.Size())
	blob := a.sink.Assemble()
	a.result = Result{Frames: a.frame, Size: blob.Size(), Type: blob.Type}

	var err error
	if write && a.output != "" {
		a.result.URL, err = blob.WriteFile(a.output)
	}
	a.logger.Info("playback finished", "frames", a.frame, "size", blob.Size(), "url", a.result.URL)

	a.doneOnce.Do(func() { close(a.done) })
	return err
}

// Run starts the playback and steps it once per FrameInterval until it
// ends or ctx is cancelled. Frames that overrun their budget are logged and
// the next one is drawn immediately.
func (a *Animator) Run(ctx context.Context) (Result, error) {
	if err := a.Start(ctx); err != nil {
		return Result{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			a.finish(false)
			return a.result, err
		}

		begin := a.clock.Now()
		done, err := a.Step()
		if done {
			return a.result, err
		}

		remaining := FrameInterval - a.clock.Since(begin)
		if remaining < 0 {
			a.logger.Warn("slow frame", "frame", a.frame, "overrun", -remaining)
			continue
		}
		if remaining == 0 {
			continue
		}

		timer := a.clock.Timer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}
