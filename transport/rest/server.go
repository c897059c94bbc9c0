package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-match/internal/i18n"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger   *slog.Logger
	catalog  *i18n.Catalog
	gatherer prometheus.Gatherer
}

func New(logger *slog.Logger, catalog *i18n.Catalog, gatherer prometheus.Gatherer) *Server {
	return &Server{
		logger:   logger.With("component", "rest"),
		catalog:  catalog,
		gatherer: gatherer,
	}
}

func (that *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), that.requestLogger())

	router.GET("/ping", pingHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(that.gatherer, promhttp.HandlerOpts{})))
	router.GET("/translations", that.handleTranslations)
	router.GET("/translations/:lang", that.handleLanguage)

	return router
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		that.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
