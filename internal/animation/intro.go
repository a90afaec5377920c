package animation

import (
	"context"
	"image"
	"strings"

	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/layout"
)

// IntroLayout selects how the speaker photo and texts are arranged.
type IntroLayout int

const (
	// LayoutSpeaker puts a 500px photo on the left, wraps a large title to
	// its right and slowly brings colour back into the photo.
	LayoutSpeaker IntroLayout = iota
	// LayoutClassic centres an 840px photo at the bottom and fades it in;
	// the texts appear after a quarter of the clip.
	LayoutClassic
)

func (l IntroLayout) String() string {
	if l == LayoutClassic {
		return "classic"
	}
	return "speaker"
}

// ParseIntroLayout accepts "speaker" (default) and "classic".
func ParseIntroLayout(s string) (IntroLayout, bool) {
	switch strings.ToLower(s) {
	case "", "speaker":
		return LayoutSpeaker, true
	case "classic":
		return LayoutClassic, true
	}
	return LayoutSpeaker, false
}

type introStyle struct {
	imageWidth   float64
	titleFamily  string
	titleSize    float64
	personFamily string
	personSize   float64
	lineSpacing  float64
	textStart    float64 // fraction of the duration
	fadeImage    bool
	hueFade      bool
	pushPersons  bool
}

var introStyles = map[IntroLayout]introStyle{
	LayoutSpeaker: {
		imageWidth:   500,
		titleFamily:  "oxanium",
		titleSize:    100,
		personFamily: "oxanium",
		personSize:   82,
		lineSpacing:  100,
		hueFade:      true,
		pushPersons:  true,
	},
	LayoutClassic: {
		imageWidth:   840,
		titleFamily:  "behrensschrift",
		titleSize:    48,
		personFamily: "behrensschrift",
		personSize:   32,
		lineSpacing:  50,
		textStart:    0.25,
		fadeImage:    true,
	},
}

type introGeometry struct {
	imageX, imageY float64
	imageW, imageH float64
	textX, textY   float64
	wrapWidth      float64
}

func (l IntroLayout) geometry(img image.Image, width, height float64) introGeometry {
	st := introStyles[l]
	nw := float64(img.Bounds().Dx())
	nh := float64(img.Bounds().Dy())

	g := introGeometry{imageW: st.imageWidth}
	if nw > 0 {
		g.imageH = st.imageWidth / nw * nh
	}

	switch l {
	case LayoutClassic:
		const padding = 15
		g.imageX = (width - st.imageWidth) / 2
		g.imageY = height - g.imageH - padding
		g.textX = g.imageX + st.imageWidth/2
		g.textY = height * 0.35
		g.wrapWidth = st.imageWidth
	default:
		const padding = 45
		g.imageX = width * 0.05
		g.imageY = nh - padding
		g.textX = (width-st.imageWidth)/2 + nw
		g.textY = height * 0.25
		g.wrapWidth = width - nw - 10
	}
	return g
}

// Intro shows a speaker photo, the talk title and its presenters.
type Intro struct {
	ImageRef string
	Title    string
	Person   string
	Layout   IntroLayout

	image image.Image
}

func NewIntro(imageRef, title, person string, l IntroLayout) *Intro {
	return &Intro{ImageRef: imageRef, Title: title, Person: person, Layout: l}
}

func (in *Intro) Prepare(ctx context.Context, f assets.Fetcher) error {
	img, err := fetchOne(ctx, f, in.ImageRef)
	if err != nil {
		return err
	}
	in.image = img
	return nil
}

func (in *Intro) Duration() float64 { return defaultDuration }

// Presenters splits a comma separated presenter list into one entry per
// line. A single presenter stays on one line.
func Presenters(person string) []string {
	people := strings.Split(person, ",")
	if len(people) == 1 {
		return []string{strings.Replace(person, ",", ", ", 1)}
	}
	for i := range people {
		people[i] = strings.TrimSpace(people[i])
	}
	return people
}

func (in *Intro) Draw(s Surface, frame, width, height int) {
	fillBackground(s, canvas.White, width, height)
	if in.image == nil {
		return
	}

	st := introStyles[in.Layout]
	g := in.Layout.geometry(in.image, float64(width), float64(height))
	maxFrames := in.Duration() * FPS

	if st.fadeImage {
		s.SetAlpha(layout.FadeOpacity(frame, FPS, fadeSeconds))
	}
	s.DrawImage(in.image, g.imageX, g.imageY, g.imageW, g.imageH)

	if st.hueFade {
		s.SetAlpha(layout.EaseInOutSine(float64(frame), maxFrames*0.8))
		s.SetComposite(canvas.Hue)
		s.SetFill(canvas.Black)
		s.FillRect(g.imageX, g.imageY, g.imageW, g.imageH)
		s.SetComposite(canvas.SourceOver)
	}

	if elapsed(frame) < in.Duration()*st.textStart {
		return
	}

	s.SetFill(canvas.Black)
	s.SetAlpha(1)
	s.SetTextAlign(canvas.AlignCenter)
	s.SetFont(st.titleFamily, st.titleSize)

	offset := 0.0
	for _, line := range layout.WrapLines(s.MeasureText, in.Title, g.wrapWidth) {
		s.FillText(line, g.textX, g.textY+offset)
		offset += st.lineSpacing
	}

	s.SetFont(st.personFamily, st.personSize)
	personY := g.textY + 4*st.lineSpacing
	if st.pushPersons && g.textY+offset-personY < st.lineSpacing {
		personY = g.textY + offset + 2*st.lineSpacing
	}
	for i, p := range Presenters(in.Person) {
		s.FillText(p, g.textX, personY+float64(i)*st.lineSpacing)
	}
}
