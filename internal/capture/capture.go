// Package capture holds the media capture primitives shared by the animator
// and its recorders: timed chunks, the ordered sink they are collected in and
// the frame request capabilities of a capture stream.
package capture

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Chunk is one timed piece of encoded media as handed out by a Recorder.
type Chunk struct {
	Type string
	Data []byte
}

// Recorder turns requested frames into encoded chunks.
//
// Start begins recording and flushes buffered output every timeslice. Stop
// ends the recording; the recorder then emits what is left and closes
// Data. Err reports the first failure once Data is closed.
type Recorder interface {
	Start(timeslice time.Duration) error
	Data() <-chan Chunk
	Stop()
	Err() error
}

// Sink collects chunks in arrival order until they are assembled.
type Sink struct {
	chunks []Chunk
	size   int
}

// Push appends c. Empty chunks are ignored.
func (s *Sink) Push(c Chunk) {
	if len(c.Data) == 0 {
		return
	}
	s.chunks = append(s.chunks, c)
	s.size += len(c.Data)
}

// Len is the number of buffered chunks.
func (s *Sink) Len() int { return len(s.chunks) }

// Size is the number of buffered bytes. Diagnostic only.
func (s *Sink) Size() int { return s.size }

// Assemble concatenates the buffered chunks into a Blob typed by the first
// chunk and clears the sink.
func (s *Sink) Assemble() Blob {
	var b Blob
	if len(s.chunks) > 0 {
		b.Type = s.chunks[0].Type
	}
	b.Data = make([]byte, 0, s.size)
	for _, c := range s.chunks {
		b.Data = append(b.Data, c.Data...)
	}
	s.chunks = nil
	s.size = 0
	return b
}

// Blob is a finished recording.
type Blob struct {
	Type string
	Data []byte
}

func (b Blob) Size() int { return len(b.Data) }

// WriteFile stores the blob at path and returns a file:// URL for it.
func (b Blob) WriteFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("couldn't create output directory: %w", err)
	}
	if err := os.WriteFile(abs, b.Data, 0644); err != nil {
		return "", fmt.Errorf("couldn't write recording: %w", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// ErrNoFrameCapability is returned by Request for streams that can neither
// request a frame themselves nor through their tracks.
var ErrNoFrameCapability = errors.New("stream has no frame request capability")

// FrameRequester pushes the current frame into a stream opened with a zero
// frame rate.
type FrameRequester interface {
	RequestFrame() error
}

// Track is one video track of a stream.
type Track interface {
	ID() string
}

// TrackSource is a stream that exposes its video tracks.
type TrackSource interface {
	VideoTracks() []Track
}

// Request asks stream for a frame. Streams implementing FrameRequester are
// asked directly; otherwise every track implementing FrameRequester is. It
// returns the number of requests issued.
func Request(stream any) (int, error) {
	if fr, ok := stream.(FrameRequester); ok {
		return 1, fr.RequestFrame()
	}

	ts, ok := stream.(TrackSource)
	if !ok {
		return 0, ErrNoFrameCapability
	}
	var (
		n    int
		errs []error
	)
	for _, t := range ts.VideoTracks() {
		fr, ok := t.(FrameRequester)
		if !ok {
			continue
		}
		n++
		if err := fr.RequestFrame(); err != nil {
			errs = append(errs, fmt.Errorf("track %s: %w", t.ID(), err))
		}
	}
	if n == 0 {
		return 0, ErrNoFrameCapability
	}
	return n, errors.Join(errs...)
}
