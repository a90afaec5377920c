package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ivlev/confclip/internal/schedule"
	"github.com/ivlev/confclip/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	scheduleURL := flag.String("schedule-url", schedule.DefaultURL, "Schedule export URL")
	ttl := flag.Duration("ttl", schedule.DefaultTTL, "Schedule cache lifetime")
	fontDir := flag.String("font-dir", "", "Directory served under /fonts")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cache := schedule.NewCache(*scheduleURL)
	cache.TTL = *ttl

	srv := server.New(cache, server.Options{FontDir: *fontDir}, logger)
	e := srv.Echo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[-] Server error: %v", err)
		}
	}()
	logger.Info("server started", "addr", *addr, "schedule", *scheduleURL)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[!] Shutdown error: %v", err)
	}
}
