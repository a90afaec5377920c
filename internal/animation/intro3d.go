package animation

import (
	"fmt"
	"image"
	"strings"
)

const whiteFragmentShader = "void main() { gl_FragColor = vec4(1.0, 1.0, 1.0, 1.0); }"

// offscreen stands in for a GPU context: a render target plus a compiled
// fragment program. Nothing composites it into the frame yet.
type offscreen struct {
	target  *image.RGBA
	program string
}

func newOffscreen(fragment string) (*offscreen, error) {
	if err := compileFragment(fragment); err != nil {
		return nil, fmt.Errorf("couldn't compile fragment shader: %w", err)
	}
	return &offscreen{program: fragment}, nil
}

// compileFragment performs the structural checks a GLSL front end would
// reject first: an entry point, a colour write and balanced blocks.
func compileFragment(src string) error {
	if !strings.Contains(src, "void main()") {
		return fmt.Errorf("missing entry point")
	}
	if !strings.Contains(src, "gl_FragColor") {
		return fmt.Errorf("no fragment colour written")
	}
	depth := 0
	for _, r := range src {
		switch r {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
		if depth < 0 {
			return fmt.Errorf("unbalanced block")
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced block")
	}
	return nil
}

func (o *offscreen) resize(width, height int) {
	if o.target != nil && o.target.Rect.Dx() == width && o.target.Rect.Dy() == height {
		return
	}
	o.target = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Intro3D is a classic Intro that also keeps an offscreen GPU target sized
// to the frame. It draws exactly what the wrapped Intro draws.
type Intro3D struct {
	*Intro
	gpu *offscreen
}

func NewIntro3D(imageRef, title, person string) (*Intro3D, error) {
	gpu, err := newOffscreen(whiteFragmentShader)
	if err != nil {
		return nil, err
	}
	return &Intro3D{
		Intro: NewIntro(imageRef, title, person, LayoutClassic),
		gpu:   gpu,
	}, nil
}

func (d *Intro3D) Draw(s Surface, frame, width, height int) {
	d.gpu.resize(width, height)
	d.Intro.Draw(s, frame, width, height)
}
