package animation

import (
	"context"
	"image"
	"math"
	"math/rand"
	"time"

	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/layout"
	"github.com/ivlev/confclip/internal/sponsors"
)

const (
	pauseLeadIn      = 5.0
	pausePerSponsor  = 7.0
	pausePadding     = 280
	pauseFont        = "behrensschrift"
	pauseFontSize    = 60
	pauseCaption     = "We thank our sponsor"
	pauseQRSize      = 160
	pauseQRMargin    = 40
	pauseTextInset   = 60
	pauseQRPixelSize = 256
)

// Pause shows an intro image for a lead-in and then cycles through the
// sponsors, one fixed-length slot each. The sponsor order is shuffled once
// per Prepare and stays fixed for the playback.
type Pause struct {
	ImageRef   string
	Sponsors   sponsors.Config
	LeadIn     float64
	PerSponsor float64
	// Rand drives the shuffle. Nil means a time-seeded source.
	Rand *rand.Rand

	image   image.Image
	entries []sponsors.Entry
	logos   []image.Image
	codes   []image.Image
}

func NewPause(imageRef string, cfg sponsors.Config) *Pause {
	return &Pause{
		ImageRef:   imageRef,
		Sponsors:   cfg,
		LeadIn:     pauseLeadIn,
		PerSponsor: pausePerSponsor,
	}
}

func (p *Pause) Prepare(ctx context.Context, f assets.Fetcher) error {
	if p.ImageRef == "" {
		return ErrNoAssets
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	entries := sponsors.Shuffle(p.Sponsors.Flatten(), rng)
	refs := make([]string, 0, len(entries)+1)
	refs = append(refs, p.ImageRef)
	for _, e := range entries {
		refs = append(refs, p.Sponsors.ImageURL(e))
	}

	images, err := assets.FetchAll(ctx, f, refs...)
	if err != nil {
		return err
	}

	var codes []image.Image
	if p.Sponsors.QRCode {
		codes = make([]image.Image, len(entries))
		for i, e := range entries {
			if e.URL == "" {
				continue
			}
			code, err := sponsors.QRCode(e.URL, pauseQRPixelSize)
			if err != nil {
				return err
			}
			codes[i] = code
		}
	}

	p.image = images[0]
	p.logos = images[1:]
	p.entries = entries
	p.codes = codes
	return nil
}

// Duration depends on the number of sponsors loaded by Prepare.
func (p *Pause) Duration() float64 {
	return p.LeadIn + p.PerSponsor*float64(len(p.logos))
}

// Order returns the sponsor order of the current playback.
func (p *Pause) Order() []sponsors.Entry {
	return p.entries
}

// SponsorIndex is the slot shown at t seconds, or -1 while the intro image
// is shown (lead-in, no sponsors).
func (p *Pause) SponsorIndex(t float64) int {
	n := len(p.logos)
	if t < p.LeadIn || n == 0 || p.PerSponsor <= 0 {
		return -1
	}
	idx := int(math.Floor((t-p.LeadIn)/p.PerSponsor)) % n
	if idx < 0 || idx >= n {
		return -1
	}
	return idx
}

func (p *Pause) Draw(s Surface, frame, width, height int) {
	idx := p.SponsorIndex(elapsed(frame))
	if idx < 0 {
		fillBackground(s, canvas.White, width, height)
		s.DrawImage(p.image, 0, 0, float64(width), float64(height))
		return
	}

	w, h := float64(width), float64(height)
	fillBackground(s, canvas.LightGray, width, height)

	logo := p.logos[idx]
	size := layout.ScaleToBounds(
		float64(logo.Bounds().Dy()), float64(logo.Bounds().Dx()),
		h-pausePadding, w-2*pausePadding,
	)
	s.DrawImage(logo, w/2-size.Width/2, h/2-size.Height/2, size.Width, size.Height)

	s.SetFont(pauseFont, pauseFontSize)
	s.SetFill(canvas.Black)
	s.SetAlpha(1)
	s.SetTextAlign(canvas.AlignCenter)
	s.FillText(p.entries[idx].URL, w/2, h-pauseTextInset)
	s.FillText(pauseCaption, w/2, pauseTextInset)

	if idx < len(p.codes) {
		s.DrawImage(p.codes[idx], w-pauseQRSize-pauseQRMargin, h-pauseQRSize-pauseQRMargin, pauseQRSize, pauseQRSize)
	}
}
