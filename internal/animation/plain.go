package animation

import (
	"context"
	"image"

	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/layout"
)

// Plain fades a single full-frame image in over 3.5s and holds it.
type Plain struct {
	ImageRef string

	image image.Image
}

func NewPlain(imageRef string) *Plain {
	return &Plain{ImageRef: imageRef}
}

func (p *Plain) Prepare(ctx context.Context, f assets.Fetcher) error {
	img, err := fetchOne(ctx, f, p.ImageRef)
	if err != nil {
		return err
	}
	p.image = img
	return nil
}

func (p *Plain) Duration() float64 { return defaultDuration }

func (p *Plain) Draw(s Surface, frame, width, height int) {
	fillBackground(s, canvas.White, width, height)

	s.SetAlpha(layout.FadeOpacity(frame, FPS, fadeSeconds))
	s.DrawImage(p.image, 0, 0, float64(width), float64(height))
}
