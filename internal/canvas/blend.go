package canvas

import (
	"image"
	"math"

	"github.com/ivlev/confclip/internal/layout"
)

type rgb struct{ r, g, b float64 }

// blendHue applies the non-separable "hue" blend of the fill colour over r,
// mixed into the backdrop by the fill alpha times the global alpha.
func (c *Canvas) blendHue(r image.Rectangle) {
	src := rgb{float64(c.fill.R) / 255, float64(c.fill.G) / 255, float64(c.fill.B) / 255}
	mix := c.alpha * float64(c.fill.A) / 255

	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := c.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, off = x+1, off+4 {
			p := c.img.Pix[off : off+4 : off+4]
			a := float64(p[3]) / 255
			if a == 0 {
				continue
			}
			// Pix is premultiplied.
			back := rgb{float64(p[0]) / 255 / a, float64(p[1]) / 255 / a, float64(p[2]) / 255 / a}
			out := setLum(setSat(src, sat(back)), lum(back))

			p[0] = to8(layout.Lerp(back.r, out.r, mix) * a)
			p[1] = to8(layout.Lerp(back.g, out.g, mix) * a)
			p[2] = to8(layout.Lerp(back.b, out.b, mix) * a)
		}
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(layout.Clamp01(v) * 255))
}

func lum(c rgb) float64 {
	return 0.3*c.r + 0.59*c.g + 0.11*c.b
}

func clipColor(c rgb) rgb {
	l := lum(c)
	n := math.Min(c.r, math.Min(c.g, c.b))
	x := math.Max(c.r, math.Max(c.g, c.b))
	if n < 0 {
		c = rgb{l + (c.r-l)*l/(l-n), l + (c.g-l)*l/(l-n), l + (c.b-l)*l/(l-n)}
	}
	if x > 1 {
		c = rgb{l + (c.r-l)*(1-l)/(x-l), l + (c.g-l)*(1-l)/(x-l), l + (c.b-l)*(1-l)/(x-l)}
	}
	return c
}

func setLum(c rgb, l float64) rgb {
	d := l - lum(c)
	return clipColor(rgb{c.r + d, c.g + d, c.b + d})
}

func sat(c rgb) float64 {
	return math.Max(c.r, math.Max(c.g, c.b)) - math.Min(c.r, math.Min(c.g, c.b))
}

func setSat(c rgb, s float64) rgb {
	ch := []*float64{&c.r, &c.g, &c.b}
	// order channels: min, mid, max
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}
	if *ch[1] > *ch[2] {
		ch[1], ch[2] = ch[2], ch[1]
	}
	if *ch[0] > *ch[1] {
		ch[0], ch[1] = ch[1], ch[0]
	}

	lo, md, hi := ch[0], ch[1], ch[2]
	if *hi > *lo {
		*md = (*md - *lo) * s / (*hi - *lo)
		*hi = s
	} else {
		*md, *hi = 0, 0
	}
	*lo = 0
	return c
}
