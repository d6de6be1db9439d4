package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bz888/parley/internal/api/server/client"
	"github.com/bz888/parley/internal/api/server/handlers"
	"github.com/bz888/parley/internal/config"
	"github.com/bz888/parley/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server is the chat proxy: a gin engine in front of the upstream API.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	log    *logger.Logger
}

// New builds the proxy. A nil upstream is replaced by an OpenAI compatible
// client configured from cfg.
func New(cfg *config.Config, upstream client.CompletionClient) *Server {
	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	if upstream == nil {
		upstream = client.NewOpenAIClient(client.ClientConfig{
			BaseURL: cfg.UpstreamURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	}

	engine := gin.New()
	engine.Use(
		gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, _ any) {
			handlers.AbortWithError(c, http.StatusInternalServerError, "Internal server error.")
		}),
		RequestLogger(),
		MetricsRecorder(),
		CORS(),
		BodyLimit(config.MaxBodyBytes),
		RateLimit(cfg.RateLimitPerMinute),
	)
	registerRoutes(engine, handlers.NewHandler(upstream), cfg.StaticDir)

	return &Server{
		cfg:    cfg,
		engine: engine,
		log:    logger.NewLogger("Server"),
	}
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.APIKey == "" {
		s.log.Warn("Warning: GROQ_API_KEY is not set. Set it in your .env file before starting the server.")
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server running", "addr", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("context cancelled, shutting down proxy")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
