// Package server exposes the operational HTTP surface: health, metrics
// and the order intake webhook. The full management API lives with the
// external collaborators.
package server

import (
	"context"
	"net/http"

	"github.com/ecomprotect/sentinel/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Orders  *OrderHandler
	Context *ContextMiddleware
	Limits  *RateLimitMiddleware
	Usage   *UsageMiddleware
}

func NewEngine(p Params) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": p.Config.AppName,
			"version": p.Config.AppVersion,
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	api.Use(p.Context.Handle(), p.Limits.Handle(), p.Usage.Handle())
	{
		api.POST("/orders", p.Orders.Create)
		api.GET("/orders", p.Orders.List)
		api.GET("/orders/:id", p.Orders.Get)
	}

	return engine
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewOrderHandler),
	fx.Provide(NewContextMiddleware),
	fx.Provide(NewRateLimitMiddleware),
	fx.Provide(NewUsageMiddleware),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
