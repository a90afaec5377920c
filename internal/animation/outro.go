package animation

import (
	"context"
	"image"

	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/layout"
)

const (
	licenseFadeSeconds = 0.5
	licensePadding     = 15
)

// Outro fades in a full-frame image like Plain, then fades a license badge
// into the bottom-right corner at its natural size.
type Outro struct {
	ImageRef   string
	LicenseRef string

	image   image.Image
	license image.Image
}

func NewOutro(imageRef, licenseRef string) *Outro {
	return &Outro{ImageRef: imageRef, LicenseRef: licenseRef}
}

func (o *Outro) Prepare(ctx context.Context, f assets.Fetcher) error {
	if o.ImageRef == "" || o.LicenseRef == "" {
		return ErrNoAssets
	}
	images, err := assets.FetchAll(ctx, f, o.ImageRef, o.LicenseRef)
	if err != nil {
		return err
	}
	o.image, o.license = images[0], images[1]
	return nil
}

func (o *Outro) Duration() float64 { return defaultDuration }

// LicenseOpacity is zero until the background fade completes and then ramps
// to one over half a second.
func LicenseOpacity(frame int) float64 {
	fadeFrames := fadeSeconds * FPS
	if float64(frame) < fadeFrames {
		return 0
	}
	return layout.Clamp01((float64(frame) - fadeFrames) / (licenseFadeSeconds * FPS))
}

func (o *Outro) Draw(s Surface, frame, width, height int) {
	fillBackground(s, canvas.White, width, height)

	fade := layout.FadeOpacity(frame, FPS, fadeSeconds)
	s.SetAlpha(fade)
	s.DrawImage(o.image, 0, 0, float64(width), float64(height))

	if fade < 1 || o.license == nil {
		return
	}
	lw := float64(o.license.Bounds().Dx())
	lh := float64(o.license.Bounds().Dy())
	s.SetAlpha(LicenseOpacity(frame))
	s.DrawImage(o.license,
		float64(width)-lw-licensePadding,
		float64(height)-lh-licensePadding,
		lw, lh)
}
