package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/karantza/scrumpoker/internal/app"
	"github.com/karantza/scrumpoker/internal/config"
	apperrors "github.com/karantza/scrumpoker/internal/errors"
)

const sessionMaxAgeDays = 30

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          *app.Service
	clock        clockwork.Clock
	sessionStore *sessions.CookieStore
	names        *nameGenerator
	streamLimit  *GlobalConnectionLimiter
	streamRate   *ConnectionRateLimiter
	upgrader     websocket.Upgrader
}

func NewServer(cfg *config.Config, appSvc *app.Service, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          appSvc,
		clock:        clock,
		sessionStore: sessionStore,
		names:        newNameGenerator(time.Now().UnixNano()),
		streamLimit:  NewGlobalConnectionLimiter(cfg.MaxConcurrentStreams),
		streamRate:   NewConnectionRateLimiter(cfg.StreamOpensPerSecond, cfg.StreamOpenBurst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	e.HTTPErrorHandler = srv.handleError
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleError renders structured errors as JSON with the mapped status.
// Validation and not-found outcomes are normal request rejections;
// only internal faults are logged as errors.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, map[string]any{"error": fmt.Sprint(httpErr.Message)})
		return
	}

	structured := apperrors.AsStructuredError(err)
	if structured.Type == apperrors.TypeInternal {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	_ = c.JSON(structured.HTTPStatus(), structured.ToResponse())
}
