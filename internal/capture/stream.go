package capture

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when a frame is requested from a closed stream.
var ErrClosed = errors.New("capture stream closed")

// Source is anything that renders into an RGBA image, such as a canvas.
type Source interface {
	Image() *image.RGBA
}

// FrameSource is the consuming side of a stream.
type FrameSource interface {
	Frames() <-chan *image.RGBA
	// Release hands a consumed frame back for reuse.
	Release(img *image.RGBA)
	Close()
}

// CanvasStream captures a Source on demand. No frame is produced unless
// RequestFrame is called. Frames are snapshots of the source; the consumer
// hands them back with Release so later snapshots reuse the buffers.
type CanvasStream struct {
	src       Source
	frames    chan *image.RGBA
	free      chan *image.RGBA
	allocated atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewCanvasStream opens a stream over src buffering up to depth frames.
// RequestFrame blocks while the buffer is full.
func NewCanvasStream(src Source, depth int) *CanvasStream {
	if depth < 1 {
		depth = 1
	}
	return &CanvasStream{
		src:    src,
		frames: make(chan *image.RGBA, depth),
		free:   make(chan *image.RGBA, depth+2),
	}
}

func (s *CanvasStream) RequestFrame() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	s.frames <- s.snapshot(s.src.Image())
	return nil
}

func (s *CanvasStream) snapshot(img *image.RGBA) *image.RGBA {
	var snap *image.RGBA
	select {
	case snap = <-s.free:
		if snap.Rect != img.Rect {
			snap = nil
		}
	default:
	}
	if snap == nil {
		snap = image.NewRGBA(img.Rect)
		s.allocated.Add(1)
	}
	copy(snap.Pix, img.Pix)
	return snap
}

// Release returns a delivered frame. Frames beyond what the stream can
// hold are dropped.
func (s *CanvasStream) Release(img *image.RGBA) {
	if img == nil {
		return
	}
	select {
	case s.free <- img:
	default:
	}
}

// Allocated counts the snapshot buffers created so far.
func (s *CanvasStream) Allocated() int64 {
	return s.allocated.Load()
}

// Frames delivers the requested frames in order. It is closed by Close.
func (s *CanvasStream) Frames() <-chan *image.RGBA {
	return s.frames
}

// Close ends the stream. Buffered frames stay readable.
func (s *CanvasStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.frames)
}

// VideoTracks exposes the stream as its single track.
func (s *CanvasStream) VideoTracks() []Track {
	return []Track{canvasTrack{s}}
}

type canvasTrack struct {
	s *CanvasStream
}

func (t canvasTrack) ID() string { return "canvas" }

func (t canvasTrack) RequestFrame() error { return t.s.RequestFrame() }
