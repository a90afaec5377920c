package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/confclip/internal/animation"
	"github.com/ivlev/confclip/internal/animator"
	"github.com/ivlev/confclip/internal/assets"
	"github.com/ivlev/confclip/internal/canvas"
	"github.com/ivlev/confclip/internal/capture"
	"github.com/ivlev/confclip/internal/config"
	"github.com/ivlev/confclip/internal/schedule"
	"github.com/ivlev/confclip/internal/sponsors"
	"github.com/ivlev/confclip/internal/system"
	"github.com/ivlev/confclip/internal/video"
)

var buildVersion = "dev"

func main() {
	// Create the working directories if they are missing
	for _, d := range []string{"input/images", "output"} {
		if err := os.MkdirAll(d, 0755); err != nil {
			log.Fatalf("[-] Couldn't create %s: %v", d, err)
		}
	}

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	cfg.BuildVersion = buildVersion

	if cfg.Image == "" {
		latest, err := system.FindLatest("input/images", system.ImageExtensions...)
		if err == nil {
			cfg.Image = latest
			fmt.Printf("[*] Using image: %s\n", cfg.Image)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Talk != "" {
		talks, err := schedule.Load(ctx, nil, cfg.ScheduleURL)
		if err != nil {
			log.Fatalf("[-] Schedule error: %v", err)
		}
		talk, ok := schedule.Find(talks, cfg.Talk)
		if !ok {
			log.Fatalf("[-] Talk %s not found in %s", cfg.Talk, cfg.ScheduleURL)
		}
		cfg.ApplyTalk(talk)
		fmt.Printf("[*] Talk %s: %s (%s)\n", cfg.Talk, cfg.Title, cfg.Person)
	}

	if cfg.SponsorsFile != "" {
		sp, err := sponsors.LoadFile(cfg.SponsorsFile)
		if err != nil {
			log.Fatalf("[-] Sponsors error: %v", err)
		}
		cfg.Sponsors = sp
		fmt.Printf("[*] Loaded %d sponsors from %s\n", len(sp.Flatten()), cfg.SponsorsFile)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	enc := system.BestEncoder(cfg.Codec)
	cfg.VideoEncoder = enc.Name
	fmt.Printf("[*] confclip %s, encoder %s\n", cfg.BuildVersion, cfg.VideoEncoder)
	if enc.Name != system.H264Software.Name && enc.Name != system.VP9.Name {
		fmt.Printf("[*] Hardware encoder detected: %s\n", enc.Name)
	}

	if cfg.OutputVideo == "" {
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.%s", strings.ToLower(cfg.Kind), timestamp, extension(enc)))
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	fonts := canvas.NewFontBook()
	if cfg.FontDir != "" {
		n, err := fonts.LoadDir(cfg.FontDir)
		if err != nil {
			log.Printf("[!] Couldn't load fonts from %s: %v", cfg.FontDir, err)
		} else {
			fmt.Printf("[*] Loaded %d fonts\n", n)
		}
	}

	anim, err := animation.New(cfg.Kind, cfg.Content())
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	surface := canvas.New(cfg.Width, cfg.Height, fonts)
	stream := capture.NewCanvasStream(surface, 8)

	rec := video.NewFFmpegRecorder(stream, cfg.Width, cfg.Height, enc)
	rec.Quality = cfg.Quality
	rec.Bitrate = cfg.Bitrate
	rec.Logger = logger

	loader := assets.NewLoader()
	loader.DPI = float64(cfg.DPI)

	a := animator.New(surface, anim, stream, rec,
		animator.WithLogger(logger),
		animator.WithOutput(cfg.OutputVideo),
		animator.WithFetcher(loader),
	)

	fmt.Printf("[*] Rendering %s clip %dx%d\n", cfg.Kind, cfg.Width, cfg.Height)
	start := time.Now()
	res, err := a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Fatalf("[-] Interrupted after %d frames", res.Frames)
	}
	if err != nil {
		log.Fatalf("[-] Render error: %v", err)
	}

	if cfg.ShowStats {
		snap, err := system.TakeSnapshot()
		if err != nil {
			log.Printf("[!] Couldn't read resource usage: %v", err)
		} else {
			fmt.Printf("[*] %s\n", snap)
		}
		fmt.Printf("[*] %d frames in %s (%.1f fps)\n", res.Frames, time.Since(start).Round(time.Millisecond),
			float64(res.Frames)/time.Since(start).Seconds())
	}

	fmt.Printf("[+++] Done! %s (%d frames, %.1fs, %d bytes, %s)\n", res.URL, res.Frames,
		float64(res.Frames)/animation.FPS, res.Size, res.Type)
}

func extension(enc system.Encoder) string {
	if enc.Container == "webm" {
		return "webm"
	}
	return "mkv"
}
