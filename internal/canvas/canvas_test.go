package canvas

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFillRect(t *testing.T) {
	c := New(20, 10, nil)
	c.SetFill(White)
	c.FillRect(0, 0, 20, 10)

	if got := c.Image().RGBAAt(5, 5); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected white, got %v", got)
	}

	c.ClearRect(0, 0, 10, 10)
	if got := c.Image().RGBAAt(5, 5); got.A != 0 {
		t.Errorf("expected cleared pixel, got %v", got)
	}
	if got := c.Image().RGBAAt(15, 5); got.A != 255 {
		t.Errorf("pixel outside cleared area changed: %v", got)
	}
}

func TestDrawImageAlpha(t *testing.T) {
	c := New(10, 10, nil)
	c.SetFill(White)
	c.FillRect(0, 0, 10, 10)

	c.SetAlpha(0.5)
	c.DrawImage(solid(2, 2, color.Black), 0, 0, 10, 10)

	got := c.Image().RGBAAt(5, 5)
	if got.R < 120 || got.R > 135 || got.A != 255 {
		t.Errorf("expected mid gray, got %v", got)
	}

	c.SetAlpha(0)
	before := append([]byte(nil), c.Image().Pix...)
	c.DrawImage(solid(2, 2, color.Black), 0, 0, 10, 10)
	if !bytes.Equal(before, c.Image().Pix) {
		t.Error("zero alpha draw modified the canvas")
	}
}

func TestTranslucentDrawsReuseScratch(t *testing.T) {
	c := New(20, 20, nil)
	c.SetAlpha(0.5)

	c.DrawImage(solid(2, 2, color.Black), 0, 0, 10, 10)
	first := c.scratch
	c.DrawImage(solid(2, 2, color.Black), 10, 10, 10, 10)
	if c.scratch != first {
		t.Error("same sized blit allocated a new scratch buffer")
	}

	c.DrawImage(solid(2, 2, color.RGBA{255, 0, 0, 255}), 0, 10, 4, 4)
	if c.scratch.Rect.Dx() != 4 {
		t.Errorf("scratch not resized, got %v", c.scratch.Rect)
	}
	if got := c.Image().RGBAAt(2, 12); got.R < 120 || got.G != 0 {
		t.Errorf("expected half red, got %v", got)
	}
}

func TestDrawImageScales(t *testing.T) {
	c := New(40, 40, nil)
	c.DrawImage(solid(4, 4, color.RGBA{255, 0, 0, 255}), 10, 10, 20, 20)

	if got := c.Image().RGBAAt(20, 20); got.R != 255 || got.A != 255 {
		t.Errorf("expected red inside target rect, got %v", got)
	}
	if got := c.Image().RGBAAt(5, 5); got.A != 0 {
		t.Errorf("expected untouched pixel outside target rect, got %v", got)
	}
}

func TestHueWithBlackDesaturates(t *testing.T) {
	c := New(4, 4, nil)
	c.SetFill(color.RGBA{200, 40, 40, 255})
	c.FillRect(0, 0, 4, 4)

	c.SetComposite(Hue)
	c.SetFill(Black)
	c.FillRect(0, 0, 4, 4)

	got := c.Image().RGBAAt(1, 1)
	if got.R != got.G || got.G != got.B {
		t.Errorf("expected gray pixel, got %v", got)
	}
	want := to8(lum(rgb{200.0 / 255, 40.0 / 255, 40.0 / 255}))
	if diff := int(got.R) - int(want); diff < -1 || diff > 1 {
		t.Errorf("expected luminosity %d, got %d", want, got.R)
	}
}

func TestMeasureAndAlign(t *testing.T) {
	c := New(200, 50, nil)
	c.SetFont("unknown-family", 20)

	short := c.MeasureText("ab")
	long := c.MeasureText("abcdef")
	if short <= 0 || long <= short {
		t.Fatalf("unexpected widths: %f, %f", short, long)
	}

	c.SetTextAlign(AlignCenter)
	c.SetFill(Black)
	c.FillText("MMMM", 100, 30)

	left, right := 200, 0
	for y := 0; y < 50; y++ {
		for x := 0; x < 200; x++ {
			if c.Image().RGBAAt(x, y).A > 0 {
				if x < left {
					left = x
				}
				if x > right {
					right = x
				}
			}
		}
	}
	if right <= left {
		t.Fatal("no text drawn")
	}
	if mid := (left + right) / 2; mid < 95 || mid > 105 {
		t.Errorf("centered text midpoint %d, want about 100", mid)
	}
}

func TestFontBookFallback(t *testing.T) {
	b := NewFontBook()
	if b.Face("Oxanium", 12) != b.Face("go", 12) {
		t.Error("unregistered family should resolve to the default face")
	}
	if err := b.Register("broken", []byte("not a font")); err == nil {
		t.Error("expected parse error for invalid font data")
	}
}
