// Package animation holds the slide variants rendered by the animator. Each
// variant loads its images once in Prepare and then draws any frame as a pure
// function of the frame number and those images.
package animation

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
)

// FPS is the fixed frame rate every animation is timed against.
const FPS = 60

const (
	defaultDuration = 7.0
	fadeSeconds     = 3.5
)

// ErrNoAssets is returned by Prepare when a required image reference is empty.
var ErrNoAssets = errors.New("animation has no image reference")

// Surface is the subset of the 2D drawing API the variants use.
type Surface interface {
	SetAlpha(a float64)
	SetFill(c color.Color)
	SetComposite(op canvas.CompositeOp)
	SetFont(family string, size float64)
	SetTextAlign(a canvas.Align)
	FillRect(x, y, w, h float64)
	DrawImage(img image.Image, x, y, w, h float64)
	MeasureText(s string) float64
	FillText(s string, x, y float64)
}

// Animation is one slide variant.
type Animation interface {
	// Prepare loads every image the animation draws. It must complete before
	// the first Draw.
	Prepare(ctx context.Context, f assets.Fetcher) error
	// Draw renders frame (starting at 1) onto s.
	Draw(s Surface, frame, width, height int)
	// Duration is the nominal length in seconds.
	Duration() float64
}

// MaxFrames is the number of frames in a's nominal duration.
func MaxFrames(a Animation) float64 {
	return a.Duration() * FPS
}

func elapsed(frame int) float64 {
	return float64(frame) / FPS
}

func fillBackground(s Surface, c color.Color, width, height int) {
	s.SetFill(c)
	s.SetAlpha(1)
	s.FillRect(0, 0, float64(width), float64(height))
}

func fetchOne(ctx context.Context, f assets.Fetcher, ref string) (image.Image, error) {
	if ref == "" {
		return nil, ErrNoAssets
	}
	return f.Fetch(ctx, ref)
}
