package animation

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ivlev/confclip/internal/sponsors"
)

// Content is everything a variant may need from its caller.
type Content struct {
	Image    string
	License  string
	Title    string
	Person   string
	Layout   IntroLayout
	Sponsors sponsors.Config
	// Seed fixes the sponsor order when non-zero.
	Seed int64
}

// Kinds lists the variant names accepted by New.
var Kinds = []string{"plain", "intro", "intro3d", "outro", "pause"}

// New builds the variant named kind.
func New(kind string, c Content) (Animation, error) {
	switch strings.ToLower(kind) {
	case "plain", "":
		return NewPlain(c.Image), nil
	case "intro":
		return NewIntro(c.Image, c.Title, c.Person, c.Layout), nil
	case "intro3d":
		d, err := NewIntro3D(c.Image, c.Title, c.Person)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "outro":
		return NewOutro(c.Image, c.License), nil
	case "pause":
		p := NewPause(c.Image, c.Sponsors)
		if c.Seed != 0 {
			p.Rand = rand.New(rand.NewSource(c.Seed))
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown animation kind: %s", kind)
	}
}
