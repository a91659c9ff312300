package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newschat-ai/newschat/config"
	redis_session "github.com/newschat-ai/newschat/internal/session/redis"
)

// Run wires the pipeline together, makes sure the vector index is populated,
// and serves the chat API.
func Run(cfg *config.Config) error {
	ctx := context.Background()

	rdb, err := redis_session.Conn(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Pass, cfg.Redis.DB, cfg.Redis.Timeout)
	if err != nil {
		return fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Redis.Host, cfg.Redis.Port, err)
	}
	sessions := redis_session.NewStore(rdb)

	pipeline, err := BuildPipeline(cfg, sessions)
	if err != nil {
		return err
	}

	// Startup-time, explicit and idempotent: builds the index only when the
	// configured index name does not exist yet.
	if err := pipeline.EnsureIndexReady(ctx, cfg.Feed.Limit); err != nil {
		return fmt.Errorf("ensuring index ready: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := &ChatHandler{Sessions: sessions, Pipeline: pipeline}
	h.Register(e)

	return e.Start(cfg.Server.Address)
}
