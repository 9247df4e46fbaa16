package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pooldesk/internal/auth"
	"pooldesk/internal/config"
	"pooldesk/internal/database"
	"pooldesk/internal/events"
	"pooldesk/internal/handlers"
	"pooldesk/internal/lifecycle"
	"pooldesk/internal/logger"
	"pooldesk/internal/redislock"
	"pooldesk/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	db, err := database.Open(cfg.DB, zl)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedUsers(db, cfg.Admin, cfg.IsDevelopment(), zl); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	store := database.NewStore(db)

	items := lifecycle.DefaultTemplate()
	if cfg.TodoTemplateFile != "" {
		if items, err = lifecycle.LoadTemplateFile(cfg.TodoTemplateFile); err != nil {
			return fmt.Errorf("todo template: %w", err)
		}
		zl.Info("loaded todo template", zap.String("file", cfg.TodoTemplateFile), zap.Int("steps", len(items)))
	}
	templates := lifecycle.NewTemplateProvider(store, items)

	var locks lifecycle.Locker = lifecycle.NewKeyedMutex()
	if cfg.Redis.Addr != "" {
		rdb := redislock.NewClient(cfg.Redis)
		defer rdb.Close()
		locks = redislock.New(rdb, 30*time.Second, zl.Named("redislock"))
		zl.Info("using redis customer lock", zap.String("addr", cfg.Redis.Addr))
	}

	publisher, closePublisher := events.Connect(cfg.MQ.URL, cfg.MQ.Exchange, zl.Named("events"))
	defer closePublisher()

	orch := lifecycle.NewOrchestrator(store, templates, locks, publisher, zl.Named("lifecycle"))
	tracker := lifecycle.NewTracker(store, publisher, zl.Named("tracker"))
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	h := handlers.New(store, orch, tracker, templates, issuer, zl)
	r := server.NewRouter(cfg, h, store, issuer, zl.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
