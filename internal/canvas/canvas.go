package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// CompositeOp selects how fills are combined with what is already drawn.
type CompositeOp int

const (
	SourceOver CompositeOp = iota
	// Hue keeps the backdrop luminosity and saturation and takes the hue of
	// the fill colour.
	Hue
)

// Align is the horizontal anchor used by FillText.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

var (
	White     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Black     = color.NRGBA{A: 0xff}
	LightGray = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
)

// Canvas is a 2D drawing surface with a small amount of state (fill colour,
// global alpha, composite mode, font and alignment), backed by an RGBA image.
type Canvas struct {
	img   *image.RGBA
	fonts *FontBook
	// scratch holds the scaled image for translucent blits.
	scratch *image.RGBA

	alpha  float64
	fill   color.NRGBA
	op     CompositeOp
	family string
	size   float64
	align  Align
}

func New(width, height int, fonts *FontBook) *Canvas {
	if fonts == nil {
		fonts = NewFontBook()
	}
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		fonts:  fonts,
		alpha:  1,
		fill:   Black,
		family: DefaultFamily,
		size:   10,
	}
}

func (c *Canvas) Width() int             { return c.img.Rect.Dx() }
func (c *Canvas) Height() int            { return c.img.Rect.Dy() }
func (c *Canvas) Image() *image.RGBA     { return c.img }
func (c *Canvas) Alpha() float64         { return c.alpha }
func (c *Canvas) Fill() color.NRGBA      { return c.fill }
func (c *Canvas) Composite() CompositeOp { return c.op }

func (c *Canvas) SetAlpha(a float64) {
	if math.IsNaN(a) {
		a = 0
	}
	c.alpha = math.Max(0, math.Min(1, a))
}

func (c *Canvas) SetFill(col color.Color) {
	c.fill = color.NRGBAModel.Convert(col).(color.NRGBA)
}

func (c *Canvas) SetComposite(op CompositeOp) { c.op = op }

func (c *Canvas) SetFont(family string, size float64) {
	c.family = family
	c.size = size
}

func (c *Canvas) SetTextAlign(a Align) { c.align = a }

// ClearRect resets the area to transparent black, ignoring alpha and mode.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	r := rectOf(x, y, w, h).Intersect(c.img.Rect)
	draw.Draw(c.img, r, image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	r := rectOf(x, y, w, h).Intersect(c.img.Rect)
	if r.Empty() || c.alpha == 0 {
		return
	}

	switch c.op {
	case Hue:
		c.blendHue(r)
	default:
		draw.DrawMask(c.img, r, image.NewUniform(c.fill), image.Point{}, c.alphaMask(), image.Point{}, draw.Over)
	}
}

// DrawImage blits src scaled into the destination rectangle using the
// current global alpha.
func (c *Canvas) DrawImage(src image.Image, x, y, w, h float64) {
	if src == nil || c.alpha == 0 {
		return
	}
	r := rectOf(x, y, w, h)
	if r.Empty() {
		return
	}

	if c.alpha >= 1 {
		xdraw.ApproxBiLinear.Scale(c.img, r, src, src.Bounds(), xdraw.Over, nil)
		return
	}

	tmp := c.scratchFor(r.Dx(), r.Dy())
	xdraw.ApproxBiLinear.Scale(tmp, tmp.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	draw.DrawMask(c.img, r, tmp, image.Point{}, c.alphaMask(), image.Point{}, draw.Over)
}

func (c *Canvas) scratchFor(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if c.scratch == nil || c.scratch.Rect != rect {
		c.scratch = image.NewRGBA(rect)
	}
	return c.scratch
}

// MeasureText returns the advance width of s in the current font.
func (c *Canvas) MeasureText(s string) float64 {
	return float64(font.MeasureString(c.face(), s)) / 64
}

// FillText draws s with its baseline at y, anchored at x according to the
// current text alignment.
func (c *Canvas) FillText(s string, x, y float64) {
	if c.alpha == 0 || s == "" {
		return
	}
	face := c.face()

	switch c.align {
	case AlignCenter:
		x -= float64(font.MeasureString(face, s)) / 128
	case AlignRight:
		x -= float64(font.MeasureString(face, s)) / 64
	}

	col := c.fill
	col.A = uint8(math.Round(float64(col.A) * c.alpha))
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))},
	}
	d.DrawString(s)
}

func (c *Canvas) face() font.Face {
	return c.fonts.Face(c.family, c.size)
}

func (c *Canvas) alphaMask() image.Image {
	return image.NewUniform(color.Alpha16{A: uint16(math.Round(c.alpha * 0xffff))})
}

func rectOf(x, y, w, h float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
}
