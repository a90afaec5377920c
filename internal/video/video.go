// Package video records captured frames with ffmpeg. Frames are piped in as
// raw RGBA and the encoded stream is read back from stdout and handed out as
// timed chunks.
package video

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/confclip/internal/capture"
	"github.com/ivlev/confclip/internal/system"
)

// DefaultBitrate matches the browser recorder default of 5 Mbit/s.
const DefaultBitrate = "5M"

// FFmpegRecorder implements capture.Recorder on top of an ffmpeg process.
type FFmpegRecorder struct {
	Source  capture.FrameSource
	Width   int
	Height  int
	FPS     int
	Encoder system.Encoder
	Quality int
	Bitrate string

	Binary string
	// Command builds the process; exec.Command when nil.
	Command func(name string, args ...string) *exec.Cmd
	Clock   clock.Clock
	Logger  *slog.Logger

	data     chan capture.Chunk
	stopOnce sync.Once

	mu      sync.Mutex
	pending []byte
	err     error
}

func NewFFmpegRecorder(src capture.FrameSource, width, height int, enc system.Encoder) *FFmpegRecorder {
	return &FFmpegRecorder{
		Source:  src,
		Width:   width,
		Height:  height,
		FPS:     60,
		Encoder: enc,
		Bitrate: DefaultBitrate,
		Binary:  "ffmpeg",
		Clock:   clock.New(),
		Logger:  slog.New(slog.DiscardHandler),
	}
}

func (r *FFmpegRecorder) buildFFmpegArgs() []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", r.Width, r.Height),
		"-framerate", fmt.Sprintf("%d", r.FPS),
		"-i", "-",
		"-an",
		"-c:v", r.Encoder.Name,
		"-pix_fmt", "yuv420p",
	}

	quality := r.Quality
	bitrate := r.Bitrate
	if bitrate == "" {
		bitrate = DefaultBitrate
	}

	// Rate control depends on the encoder
	switch r.Encoder.Name {
	case "h264_videotoolbox":
		if quality > 0 {
			bitrate = fmt.Sprintf("%dk", quality*100)
		}
		args = append(args, "-b:v", bitrate)
	case "h264_nvenc":
		if quality <= 0 {
			quality = 23
		}
		args = append(args, "-cq", fmt.Sprintf("%d", quality), "-maxrate", bitrate)
	case "libvpx-vp9":
		args = append(args, "-b:v", bitrate, "-deadline", "realtime", "-row-mt", "1")
	default: // libx264
		if quality <= 0 {
			quality = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium", "-maxrate", bitrate, "-bufsize", bitrate)
	}

	args = append(args, "-f", r.Encoder.Container, "pipe:1")
	return args
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Start launches ffmpeg and the pumps around it.
func (r *FFmpegRecorder) Start(timeslice time.Duration) error {
	if r.Source == nil {
		return fmt.Errorf("recorder has no frame source")
	}
	if timeslice <= 0 {
		timeslice = time.Second
	}
	command := r.Command
	if command == nil {
		command = exec.Command
	}

	cmd := command(r.Binary, r.buildFFmpegArgs()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	r.data = make(chan capture.Chunk, 64)
	readDone := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		// Frames keep being drained after a write error so the producer
		// never blocks on a dead encoder.
		var werr error
		for img := range r.Source.Frames() {
			if werr == nil {
				if err := writeRawRGBA(stdin, img); err != nil {
					werr = fmt.Errorf("write raw error: %w", err)
				}
			}
			r.Source.Release(img)
		}
		if err := stdin.Close(); err != nil && werr == nil {
			werr = err
		}
		return werr
	})
	g.Go(func() error {
		defer close(readDone)
		buf := make([]byte, 64<<10)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				r.mu.Lock()
				r.pending = append(r.pending, buf[:n]...)
				r.mu.Unlock()
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read encoded output: %w", err)
			}
		}
	})
	g.Go(func() error {
		ticker := r.Clock.Ticker(timeslice)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.flush()
			case <-readDone:
				return nil
			}
		}
	})

	go func() {
		err := g.Wait()
		if werr := cmd.Wait(); werr != nil && err == nil {
			err = fmt.Errorf("ffmpeg wait error: %w, output: %s", werr, bytes.TrimSpace(stderr.Bytes()))
		}
		r.flush()

		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		if err != nil {
			r.Logger.Error("recorder failed", "error", err)
		}
		close(r.data)
	}()

	r.Logger.Debug("recorder started", "encoder", r.Encoder.Name, "size", fmt.Sprintf("%dx%d", r.Width, r.Height))
	return nil
}

func (r *FFmpegRecorder) flush() {
	r.mu.Lock()
	data := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(data) == 0 {
		return
	}
	r.data <- capture.Chunk{Type: r.Encoder.MediaType, Data: data}
}

func (r *FFmpegRecorder) Data() <-chan capture.Chunk {
	return r.data
}

// Stop closes the frame source. ffmpeg then sees end of input, and Data is
// closed once the remaining output has been emitted.
func (r *FFmpegRecorder) Stop() {
	r.stopOnce.Do(r.Source.Close)
}

func (r *FFmpegRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
