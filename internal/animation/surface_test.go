package animation

import (
	"image"
	"image/color"

	"github.com/ivlev/confclip/internal/canvas"
)

type drawOp struct {
	kind       string
	alpha      float64
	composite  canvas.CompositeOp
	img        image.Image
	text       string
	x, y, w, h float64
	family     string
	size       float64
}

// recordingSurface logs every draw call with the state it ran under.
// Text is measured as 10px per byte.
type recordingSurface struct {
	alpha     float64
	composite canvas.CompositeOp
	fill      color.Color
	family    string
	size      float64
	ops       []drawOp
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{alpha: 1}
}

func (r *recordingSurface) SetAlpha(a float64)                  { r.alpha = a }
func (r *recordingSurface) SetFill(c color.Color)               { r.fill = c }
func (r *recordingSurface) SetComposite(op canvas.CompositeOp)  { r.composite = op }
func (r *recordingSurface) SetFont(family string, size float64) { r.family, r.size = family, size }
func (r *recordingSurface) SetTextAlign(canvas.Align)           {}
func (r *recordingSurface) MeasureText(s string) float64        { return float64(len(s)) * 10 }

func (r *recordingSurface) FillRect(x, y, w, h float64) {
	r.ops = append(r.ops, drawOp{kind: "rect", alpha: r.alpha, composite: r.composite, x: x, y: y, w: w, h: h})
}

func (r *recordingSurface) DrawImage(img image.Image, x, y, w, h float64) {
	r.ops = append(r.ops, drawOp{kind: "image", alpha: r.alpha, composite: r.composite, img: img, x: x, y: y, w: w, h: h})
}

func (r *recordingSurface) FillText(s string, x, y float64) {
	r.ops = append(r.ops, drawOp{kind: "text", alpha: r.alpha, text: s, x: x, y: y, family: r.family, size: r.size})
}

func (r *recordingSurface) find(kind string) []drawOp {
	var out []drawOp
	for _, op := range r.ops {
		if op.kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (r *recordingSurface) imageOp(img image.Image) (drawOp, bool) {
	for _, op := range r.ops {
		if op.kind == "image" && op.img == img {
			return op, true
		}
	}
	return drawOp{}, false
}

func (r *recordingSurface) texts() []string {
	var out []string
	for _, op := range r.find("text") {
		out = append(out, op.text)
	}
	return out
}

func testImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}
