// Package config holds the parameters of one render job. Values are layered
// as defaults < job file < command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ivlev/confclip/internal/animation"
	"github.com/ivlev/confclip/internal/schedule"
	"github.com/ivlev/confclip/internal/sponsors"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Kind        string `yaml:"kind"`
	Image       string `yaml:"image"`
	License     string `yaml:"license,omitempty"`
	Title       string `yaml:"title,omitempty"`
	Person      string `yaml:"person,omitempty"`
	Layout      string `yaml:"layout,omitempty"`
	Talk        string `yaml:"talk,omitempty"`
	ScheduleURL string `yaml:"schedule_url,omitempty"`

	OutputVideo string `yaml:"output,omitempty"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Codec       string `yaml:"codec"`
	Quality     int    `yaml:"quality,omitempty"`
	Bitrate     string `yaml:"bitrate,omitempty"`
	DPI         int    `yaml:"dpi"`
	FontDir     string `yaml:"font_dir,omitempty"`
	Seed        int64  `yaml:"seed,omitempty"`

	Sponsors     sponsors.Config `yaml:"sponsors,omitempty"`
	SponsorsFile string          `yaml:"sponsors_file,omitempty"`

	ShowStats    bool   `yaml:"show_stats,omitempty"`
	Verbose      bool   `yaml:"verbose,omitempty"`
	VideoEncoder string `yaml:"-"`
	BuildVersion string `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Kind:        "plain",
		Layout:      "speaker",
		ScheduleURL: schedule.DefaultURL,
		Width:       1920,
		Height:      1080,
		Codec:       "h264",
		Bitrate:     "5M",
		DPI:         150,
		Sponsors:    sponsors.Config{BaseURL: sponsors.DefaultBaseURL, QRCode: true},
	}
}

// Validate checks the job before anything is loaded or rendered.
func (c *Config) Validate() error {
	var problems []string

	if !isKind(c.Kind) {
		problems = append(problems, fmt.Sprintf("invalid kind '%s', must be one of: %s",
			c.Kind, strings.Join(animation.Kinds, ", ")))
	}
	if c.Image == "" {
		problems = append(problems, "image is required")
	}
	if strings.EqualFold(c.Kind, "outro") && c.License == "" {
		problems = append(problems, "outro needs a license image")
	}
	if _, ok := animation.ParseIntroLayout(c.Layout); !ok {
		problems = append(problems, fmt.Sprintf("invalid layout '%s', must be speaker or classic", c.Layout))
	}
	if c.Talk != "" && c.ScheduleURL == "" {
		problems = append(problems, "talk lookup needs a schedule url")
	}

	if c.Width <= 0 || c.Height <= 0 {
		problems = append(problems, "width and height must be positive")
	} else if c.Width%2 != 0 || c.Height%2 != 0 {
		problems = append(problems, "width and height must be even for yuv420p")
	}
	switch strings.ToLower(c.Codec) {
	case "h264", "vp9":
	default:
		problems = append(problems, fmt.Sprintf("invalid codec '%s', must be h264 or vp9", c.Codec))
	}
	if c.Quality < 0 {
		problems = append(problems, "quality cannot be negative (use 0 for auto)")
	}
	if c.DPI <= 0 {
		problems = append(problems, "dpi must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(problems, "\n  - "))
	}
	return nil
}

func isKind(kind string) bool {
	for _, k := range animation.Kinds {
		if strings.EqualFold(k, kind) {
			return true
		}
	}
	return false
}

// Content is what the animation variant is built from.
func (c *Config) Content() animation.Content {
	l, _ := animation.ParseIntroLayout(c.Layout)
	return animation.Content{
		Image:    c.Image,
		License:  c.License,
		Title:    c.Title,
		Person:   c.Person,
		Layout:   l,
		Sponsors: c.Sponsors,
		Seed:     c.Seed,
	}
}

// ApplyTalk copies title and presenters of t unless they are already set.
func (c *Config) ApplyTalk(t schedule.Talk) {
	if c.Title == "" {
		c.Title = t.Title()
	}
	if c.Person == "" {
		c.Person = t.Person()
	}
}
