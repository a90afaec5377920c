package config

import (
	"flag"
	"fmt"
	"io"
)

// LoadConfig builds the job from defaults, the job file named by -config (or
// found by FindConfigFile) and the flags in args. It does not validate.
func LoadConfig(args []string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := ""
	for i, arg := range args {
		if (arg == "-config" || arg == "--config") && i+1 < len(args) {
			configPath = args[i+1]
			break
		}
	}
	if configPath == "" {
		configPath = FindConfigFile()
	}

	if configPath != "" {
		fileCfg, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg = fileCfg
	}

	if err := cfg.MergeFromFlags(args, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFromFlags overrides the values whose flags appear in args. Usage and
// parse errors go to out (discarded when nil).
func (c *Config) MergeFromFlags(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("confclip", flag.ContinueOnError)
	if out == nil {
		out = io.Discard
	}
	fs.SetOutput(out)

	_ = fs.String("config", "", "Job file (default: ./confclip.yaml, ~/.confclip/config.yaml)")
	fs.StringVar(&c.Kind, "kind", c.Kind, "Clip kind: plain, intro, intro3d, outro, pause")
	fs.StringVar(&c.Image, "image", c.Image, "Main image: path, URL or deck.pdf#page (default: newest file in input/images/)")
	fs.StringVar(&c.License, "license", c.License, "License badge for the outro")
	fs.StringVar(&c.Title, "title", c.Title, "Talk title")
	fs.StringVar(&c.Person, "person", c.Person, "Presenters, comma separated")
	fs.StringVar(&c.Layout, "layout", c.Layout, "Intro layout: speaker, classic")
	fs.StringVar(&c.Talk, "talk", c.Talk, "Take title and presenters from this schedule talk id")
	fs.StringVar(&c.ScheduleURL, "schedule-url", c.ScheduleURL, "Schedule export URL")
	fs.StringVar(&c.OutputVideo, "output", c.OutputVideo, "Output file (default: generated in output/)")
	fs.IntVar(&c.Width, "width", c.Width, "Width")
	fs.IntVar(&c.Height, "height", c.Height, "Height")
	fs.StringVar(&c.Codec, "codec", c.Codec, "Codec: h264, vp9")
	fs.IntVar(&c.Quality, "quality", c.Quality, "Quality (0 = auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	fs.StringVar(&c.Bitrate, "bitrate", c.Bitrate, "Bitrate cap, e.g. 5M")
	fs.IntVar(&c.DPI, "dpi", c.DPI, "DPI for PDF pages")
	fs.StringVar(&c.FontDir, "font-dir", c.FontDir, "Directory with .ttf/.otf fonts")
	fs.StringVar(&c.SponsorsFile, "sponsors", c.SponsorsFile, "YAML file with sponsor tiers (replaces the job file's list)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Fixed sponsor order seed (0 = random)")
	fs.BoolVar(&c.ShowStats, "show-stats", c.ShowStats, "Print resource usage after rendering")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "Debug logging")

	return fs.Parse(args)
}
