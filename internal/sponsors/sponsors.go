package sponsors

import (
	"fmt"
	"image"
	"math/rand"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"
	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://2023.nixcon.org"

// Entry is a single sponsor: a logo path relative to the sponsor asset root
// and the URL shown under it.
type Entry struct {
	Image string `yaml:"image"`
	URL   string `yaml:"url"`
}

// Tier groups sponsors by display level. Tier order is preserved.
type Tier struct {
	Name     string  `yaml:"name"`
	Sponsors []Entry `yaml:"sponsors"`
}

// Config is the sponsor data handed to the pause carousel.
type Config struct {
	BaseURL string `yaml:"base_url"`
	Tiers   []Tier `yaml:"tiers"`
	QRCode  bool   `yaml:"qr_code"`
}

// Flatten lists every sponsor, tier by tier.
func (c Config) Flatten() []Entry {
	var out []Entry
	for _, t := range c.Tiers {
		out = append(out, t.Sponsors...)
	}
	return out
}

// ImageURL resolves e.Image to <base>/sponsors/<image>. Absolute http(s)
// references are returned unchanged.
func (c Config) ImageURL(e Entry) string {
	if strings.HasPrefix(e.Image, "http://") || strings.HasPrefix(e.Image, "https://") {
		return e.Image
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/sponsors/" + strings.TrimLeft(e.Image, "/")
}

// Shuffle returns a randomly permuted copy of entries; the input is not
// modified.
func Shuffle(entries []Entry, r *rand.Rand) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// LoadFile reads a sponsor Config from YAML.
func LoadFile(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse sponsors %s: %w", path, err)
	}
	return c, nil
}

// QRCode renders url as a square QR code of size pixels.
func QRCode(url string, size int) (image.Image, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code for %q: %w", url, err)
	}
	return q.Image(size), nil
}
