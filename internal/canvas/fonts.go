package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is used whenever a requested family has not been registered.
const DefaultFamily = "go"

type faceKey struct {
	family string
	size   float64
}

// FontBook maps font family names to parsed OpenType fonts and caches sized
// faces. Family names are case-insensitive.
type FontBook struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

// NewFontBook returns a book preloaded with the Go fonts ("go", "go-bold").
func NewFontBook() *FontBook {
	b := &FontBook{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
	// The embedded Go fonts are known to parse.
	_ = b.Register(DefaultFamily, goregular.TTF)
	_ = b.Register("go-bold", gobold.TTF)
	return b
}

func (b *FontBook) Register(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	b.mu.Lock()
	b.fonts[strings.ToLower(family)] = f
	b.mu.Unlock()
	return nil
}

// LoadDir registers every .ttf/.otf file in dir under its lower-cased base
// name, e.g. fonts/Oxanium.ttf becomes family "oxanium".
func (b *FontBook) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, err
		}
		family := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := b.Register(family, data); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Face returns a face for family at size pixels. Unknown families fall back
// to DefaultFamily, and a face that cannot be built falls back to a fixed
// bitmap font.
func (b *FontBook) Face(family string, size float64) font.Face {
	family = strings.ToLower(family)

	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.fonts[family]
	if !ok {
		family = DefaultFamily
		f = b.fonts[DefaultFamily]
	}
	key := faceKey{family, size}
	if face, ok := b.faces[key]; ok {
		return face
	}
	if f == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	b.faces[key] = face
	return face
}
