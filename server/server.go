// Package server exposes the social network core over a JSON HTTP API. It is
// presentation plumbing only: every endpoint resolves the session to a user
// and delegates to the social package.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"

	"github.com/verity-social/verity/classify"
	"github.com/verity-social/verity/fame"
	"github.com/verity-social/verity/models"
	"github.com/verity-social/verity/social"
)

// serverListenerBootTimeout is how long to wait for the requested server
// socket to become available for use.
const serverListenerBootTimeout = 5 * time.Second

type Server struct {
	db            *gorm.DB
	net           *social.Network
	echo          *echo.Echo
	jwtSigningKey []byte

	log *slog.Logger
}

func NewServer(db *gorm.DB, classifier classify.Classifier, jwtkey []byte) (*Server, error) {
	if err := models.MigrateAll(db); err != nil {
		return nil, err
	}
	if err := fame.SeedLevels(db, fame.DefaultLevels()); err != nil {
		return nil, err
	}

	s := &Server{
		db:            db,
		net:           social.NewNetwork(db, classifier),
		jwtSigningKey: jwtkey,

		log: slog.Default().With("system", "server"),
	}
	return s, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) RunAPI(addr string) error {
	var lc net.ListenConfig
	ctx, cancel := context.WithTimeout(context.Background(), serverListenerBootTimeout)
	defer cancel()

	li, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.RunAPIWithListener(li)
}

func (s *Server) RunAPIWithListener(listen net.Listener) error {
	e := echo.New()
	s.echo = e
	e.HideBanner = true
	e.Use(slogecho.New(s.log))
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		switch {
		case errors.Is(err, social.ErrPermission):
			c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidEmailOrPassword):
			c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			var he *echo.HTTPError
			if errors.As(err, &he) {
				c.JSON(he.Code, map[string]any{"error": he.Message})
				return
			}
			s.log.Error("handler error", "path", c.Path(), "err", err)
			c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
	}

	e.GET("/_health", s.handleHealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/signup", s.handleSignup)
	e.POST("/login", s.handleLogin)

	authed := e.Group("", s.sessionMiddleware)
	authed.POST("/posts", s.handleSubmitPost)
	authed.POST("/posts/:id/rate", s.handleRatePost)
	authed.GET("/timeline", s.handleTimeline)
	authed.GET("/search", s.handleSearch)
	authed.GET("/fame", s.handleFame)
	authed.GET("/experts", s.handleExperts)
	authed.GET("/bullshitters", s.handleBullshitters)
	authed.POST("/follow/:id", s.handleFollow)
	authed.DELETE("/follow/:id", s.handleUnfollow)
	authed.GET("/follows", s.handleFollows)
	authed.GET("/followers", s.handleFollowers)

	e.Listener = listen
	srv := &http.Server{}
	return e.StartServer(srv)
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	if err := s.db.Exec("SELECT 1").Error; err != nil {
		s.log.Error("healthcheck can't connect to database", "err", err)
		return c.JSON(500, map[string]string{"status": "error", "msg": "can't connect to database"})
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}
