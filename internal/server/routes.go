package server

import (
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Single-page app: the index and every room page serve the same
	// document; the client routes from the URL.
	s.echo.Static("/static", s.config.StaticDir)
	s.echo.GET("/", s.handleIndexPage)
	s.echo.GET("/r/:room", s.handleIndexPage)

	// Identity
	s.echo.GET("/name", s.handleGetName)
	s.echo.POST("/name", s.handleSetName)

	// Event streams
	s.echo.GET("/stream", s.handleIndexStream)
	s.echo.GET("/r/:room/stream", s.handleRoomStream)
	s.echo.GET("/ws/r/:room", s.handleRoomWebSocket)

	// Room actions
	s.echo.POST("/r/:room/vote", s.handleVote)
	s.echo.POST("/r/:room/reveal", s.handleReveal)
	s.echo.POST("/r/:room/reset", s.handleReset)
	s.echo.POST("/r/:room/keepalive", s.handleKeepalive)
}

func (s *Server) handleIndexPage(c echo.Context) error {
	return c.File(filepath.Join(s.config.StaticDir, "index.html"))
}
