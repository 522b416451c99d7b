package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/telematch/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewMetricsRouter serves the prometheus registry and a liveness probe.
func NewMetricsRouter(m *telemetry.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

// RunMetricsServer exposes /metrics when a listen address is configured.
func RunMetricsServer(lc fx.Lifecycle, cfg Config, m *telemetry.Metrics, log *zap.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           NewMetricsRouter(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
			log.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
