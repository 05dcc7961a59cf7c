// Package relay forwards chat requests to the upstream LLM messages API so
// that the API key never leaves the server.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	DefaultUpstreamURL = "https://api.anthropic.com/v1/messages"
	DefaultAPIVersion  = "2023-06-01"
)

type Config struct {
	Host        string
	Port        int
	UpstreamURL string
	APIKey      string
	APIVersion  string
}

type Option func(*Server)

// WithHTTPClient replaces the client used for upstream calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.client = c }
}

type Server struct {
	echo    *echo.Echo
	client  *http.Client
	config  Config
	logger  *zap.Logger
	metrics *metrics
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(cfg Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstreamURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3001
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:    e,
		client:  http.DefaultClient,
		config:  cfg,
		logger:  logger,
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", s.metrics.handler())
	e.POST("/api/chat", s.handleChat, s.metrics.middleware())
	return s, nil
}

// ServeHTTP lets the relay be mounted on another server or driven by tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleChat passes the body through untouched and answers with whatever the
// upstream answered, status code included. Only a failed round trip is
// reported as our own error.
func (s *Server) handleChat(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return s.fail(c, fmt.Errorf("reading request: %w", err))
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, s.config.UpstreamURL, bytes.NewReader(body))
	if err != nil {
		return s.fail(c, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)
	req.Header.Set("anthropic-version", s.config.APIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fail(c, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.fail(c, fmt.Errorf("reading upstream response: %w", err))
	}
	if resp.StatusCode >= 300 {
		s.logger.Warn("upstream rejected chat request",
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
	}

	contentType := resp.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	return c.Blob(resp.StatusCode, contentType, out)
}

func (s *Server) fail(c echo.Context, err error) error {
	s.logger.Error("relaying chat request", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func (s *Server) Start() error {
	s.logger.Info("starting relay", zap.String("addr", s.Addr()), zap.String("upstream", s.config.UpstreamURL))
	return s.echo.Start(s.Addr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down relay")
	return s.echo.Shutdown(ctx)
}
