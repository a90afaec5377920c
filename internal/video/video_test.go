package video

import (
	"context"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ivlev/confclip/internal/capture"
	"github.com/ivlev/confclip/internal/system"
)

// TestHelperProcess stands in for ffmpeg. It echoes stdin to stdout, or
// fails when asked to.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		os.Exit(3)
	}
	io.Copy(os.Stdout, os.Stdin)
	os.Exit(0)
}

func helperCommand(fail bool) func(string, ...string) *exec.Cmd {
	return func(name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(context.Background(), os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		if fail {
			cmd.Env = append(cmd.Env, "HELPER_FAIL=1")
		}
		return cmd
	}
}

type imageSource struct{ img *image.RGBA }

func (s imageSource) Image() *image.RGBA { return s.img }

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		name    string
		enc     system.Encoder
		quality int
		want    []string
	}{
		{"x264", system.H264Software, 0, []string{"-crf", "23", "-preset", "medium", "-maxrate", "5M"}},
		{"x264 quality", system.H264Software, 18, []string{"-crf", "18"}},
		{"vp9", system.VP9, 0, []string{"-b:v", "5M", "-deadline", "realtime", "-row-mt", "1", "-f", "webm", "pipe:1"}},
		{"videotoolbox", system.Encoder{Name: "h264_videotoolbox", Container: "matroska"}, 75, []string{"-b:v", "7500k"}},
		{"nvenc", system.Encoder{Name: "h264_nvenc", Container: "matroska"}, 20, []string{"-cq", "20"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFFmpegRecorder(nil, 1920, 1080, tt.enc)
			r.Quality = tt.quality
			args := r.buildFFmpegArgs()
			joined := strings.Join(args, " ")

			for _, want := range []string{"-f rawvideo -pixel_format rgba", "-video_size 1920x1080", "-framerate 60", "-i -", "-pix_fmt yuv420p"} {
				if !strings.Contains(joined, want) {
					t.Errorf("args %q miss %q", joined, want)
				}
			}
			if !strings.Contains(joined, strings.Join(tt.want, " ")) {
				t.Errorf("args %q miss %q", joined, tt.want)
			}
			if args[len(args)-1] != "pipe:1" {
				t.Errorf("output must go to stdout, got %q", args[len(args)-1])
			}
		})
	}
}

func TestRecorderPipesFrames(t *testing.T) {
	src := imageSource{img: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	stream := capture.NewCanvasStream(src, 8)

	r := NewFFmpegRecorder(stream, 2, 2, system.VP9)
	r.Command = helperCommand(false)
	r.Clock = clock.NewMock()

	if err := r.Start(time.Second); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		src.img.Pix[0] = byte(i + 1)
		if err := stream.RequestFrame(); err != nil {
			t.Fatal(err)
		}
	}
	r.Stop()
	r.Stop()

	var sink capture.Sink
	for c := range r.Data() {
		sink.Push(c)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected recorder error: %v", err)
	}

	blob := sink.Assemble()
	if blob.Type != "video/webm" {
		t.Errorf("blob type %q", blob.Type)
	}
	if blob.Size() != 3*16 {
		t.Fatalf("expected 48 bytes of echoed frames, got %d", blob.Size())
	}
	for i := 0; i < 3; i++ {
		if blob.Data[i*16] != byte(i+1) {
			t.Errorf("frame %d out of order: %d", i, blob.Data[i*16])
		}
	}
}

func TestRecorderFlushesOnTick(t *testing.T) {
	src := imageSource{img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	stream := capture.NewCanvasStream(src, 1)
	mock := clock.NewMock()

	r := NewFFmpegRecorder(stream, 4, 4, system.H264Software)
	r.Command = helperCommand(false)
	r.Clock = mock

	if err := r.Start(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := stream.RequestFrame(); err != nil {
		t.Fatal(err)
	}

	var got int
	deadline := time.After(5 * time.Second)
	for got < 64 {
		mock.Add(time.Second)
		select {
		case c := <-r.Data():
			if c.Type != "video/x-matroska" {
				t.Errorf("chunk type %q", c.Type)
			}
			got += len(c.Data)
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no chunk flushed before stop, got %d bytes", got)
		}
	}

	r.Stop()
	for range r.Data() {
	}
}

func TestRecorderReportsFailure(t *testing.T) {
	src := imageSource{img: image.NewRGBA(image.Rect(0, 0, 8, 8))}
	stream := capture.NewCanvasStream(src, 2)

	r := NewFFmpegRecorder(stream, 8, 8, system.H264Software)
	r.Command = helperCommand(true)
	r.Clock = clock.NewMock()

	if err := r.Start(time.Second); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := stream.RequestFrame(); err != nil {
			t.Fatal(err)
		}
	}
	r.Stop()
	for range r.Data() {
	}
	if r.Err() == nil {
		t.Error("expected error from failing encoder")
	}
}
