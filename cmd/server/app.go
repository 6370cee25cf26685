package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go-gemini/internal/answer"
	"go-gemini/internal/config"
	"go-gemini/internal/db"
	"go-gemini/internal/llm"
	"go-gemini/internal/logging"
	redisdb "go-gemini/internal/redis"
)

// app holds the process-wide dependencies shared by both variants.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *llm.Client

	rdb *redis.Client
	db  *gorm.DB
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	client, err := llm.NewFromConfig(ctx, cfg.LLM, logging.Component(logger, "llm"))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, client: client}, nil
}

func (a *app) answerer(opts llm.GenerateOptions) *answer.Answerer {
	service := llm.ServiceName(a.cfg.LLM.Provider)
	return answer.New(a.client, service, opts, logging.Component(a.log, "answer"))
}

func (a *app) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.rdb != nil {
		return a.rdb, nil
	}
	rdb, err := redisdb.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.rdb = rdb
	return rdb, nil
}

func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	conn, err := db.Open(a.cfg.Database, logging.Component(a.log, "db"))
	if err != nil {
		return nil, err
	}
	a.db = conn
	return conn, nil
}

func (a *app) close() {
	if err := a.client.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close llm client")
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
}

// serve runs handler until ctx is canceled, then drains in-flight requests.
func (a *app) serve(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("subpath", a.cfg.Server.Subpath).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
