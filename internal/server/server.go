package server

import (
	"context"
	"errors"
	"net/http"

	"chefconnect/internal/config"
	"chefconnect/internal/metrics"
	"chefconnect/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	echo    *echo.Echo
	cfg     config.Config
	users   repository.UserRepository
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

func New(cfg config.Config, users repository.UserRepository, m *metrics.Metrics, logger *logrus.Logger, h Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))

	s := &Server{echo: e, cfg: cfg, users: users, metrics: m, logger: logger}
	s.registerRoutes(h)
	return s
}

// Start はShutdownされるまでブロックする
func (s *Server) Start() error {
	s.logger.WithField("addr", s.cfg.Addr()).Info("http server listening")
	if err := s.echo.Start(s.cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
