// Package server serves the cached conference schedule and relays talk
// selections between the control page and the players.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/ivlev/confclip/internal/schedule"
)

var defaultCORSConfig = middleware.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
	AllowHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
	MaxAge:       86400,
}

type Options struct {
	// FontDir is served under /fonts when set.
	FontDir string
	// RefreshEvery limits forced schedule refreshes.
	RefreshEvery time.Duration
}

type Server struct {
	cache   *schedule.Cache
	hub     *Hub
	refresh *rate.Limiter
	opts    Options
	logger  *slog.Logger
}

func New(cache *schedule.Cache, opts Options, logger *slog.Logger) *Server {
	if opts.RefreshEvery <= 0 {
		opts.RefreshEvery = 5 * time.Second
	}
	return &Server{
		cache:   cache,
		hub:     NewHub(logger),
		refresh: rate.NewLimiter(rate.Every(opts.RefreshEvery), 1),
		opts:    opts,
		logger:  logger.With("component", "server"),
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Echo builds the HTTP server with every route registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(defaultCORSConfig))

	e.GET("/healthz", s.handleHealth)
	e.GET("/schedule.json", s.handleSchedule)
	e.GET("/talks", s.handleTalks)
	e.POST("/talk", s.handleTalk)
	e.GET("/ws", s.handleWS)
	if s.opts.FontDir != "" {
		e.Static("/fonts", s.opts.FontDir)
	}
	return e
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.Clients()})
}

// force reports whether the request may bypass the cache.
func (s *Server) force(c echo.Context) bool {
	if c.QueryParam("force") == "" {
		return false
	}
	if !s.refresh.Allow() {
		s.logger.Warn("forced refresh limited, serving cache")
		return false
	}
	return true
}

func (s *Server) handleSchedule(c echo.Context) error {
	raw, err := s.cache.Raw(c.Request().Context(), s.force(c))
	if err != nil {
		s.logger.Error("schedule fetch failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "schedule unavailable")
	}
	return c.JSONBlob(http.StatusOK, raw)
}

type talkView struct {
	ID      string   `json:"id"`
	Room    string   `json:"room"`
	Time    string   `json:"time"`
	Title   string   `json:"title"`
	Persons []string `json:"persons"`
}

func (s *Server) handleTalks(c echo.Context) error {
	talks, err := s.cache.Talks(c.Request().Context(), s.force(c))
	if err != nil {
		s.logger.Error("schedule fetch failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "schedule unavailable")
	}

	out := make([]talkView, 0, len(talks))
	for _, t := range talks {
		out = append(out, talkView{ID: t.ID(), Room: t.Room, Time: t.Time, Title: t.Title(), Persons: t.Persons()})
	}
	return c.JSON(http.StatusOK, out)
}

type talkRequest struct {
	ID string `json:"id" form:"id" query:"id"`
}

func (s *Server) handleTalk(c echo.Context) error {
	var req talkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing talk id")
	}

	s.hub.Broadcast(Event{Type: "talk", Talk: req.ID})
	s.logger.Info("talk selected", "talk", req.ID)
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleWS(c echo.Context) error {
	return s.hub.Serve(c.Response(), c.Request())
}
