package main

import (
	"attendance-service/internal/analysis"
	"attendance-service/internal/attendance"
	"attendance-service/internal/config"
	"attendance-service/internal/http-server/router"
	"attendance-service/internal/lock"
	svc "attendance-service/internal/service"
	"attendance-service/internal/session"
	"attendance-service/internal/storage/memory"
	"attendance-service/internal/storage/postgres"
	"attendance-service/internal/storage/records"
	"attendance-service/internal/storage/rediskv"
	"attendance-service/internal/storage/sqlite"
	slogpretty "attendance-service/pkg/handlers/slogpretty"
	"attendance-service/pkg/sl"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// store is the record store plus its shutdown hook.
type store interface {
	svc.Store
	Init(ctx context.Context) error
	Close() error
}

func openStore(cfg config.Storage, redisAddr string) (store, error) {
	switch cfg.Driver {
	case "memory":
		return records.New(memory.New()), nil
	case "sqlite":
		backend, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return records.New(backend), nil
	case "redis":
		backend, err := rediskv.New(redisAddr, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return records.New(backend), nil
	case "postgres":
		pg, err := postgres.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))
	log.Debug("Debug messages are enabled")

	storage, err := openStore(cfg.Storage, cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err := storage.Init(context.Background()); err != nil {
		log.Error("Failed to seed storage", sl.Err(err))
		os.Exit(1)
	}

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		locker, err = lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
	} else {
		log.Info("Redis is not configured, using in-process lock")
		locker = lock.NewLocalLock()
	}

	policy, err := attendance.ParsePolicy(cfg.Attendance.DefaultUnmarked)
	if err != nil {
		log.Error("Invalid attendance policy", sl.Err(err))
		os.Exit(1)
	}

	var generator analysis.Generator
	if gemini, err := analysis.NewGemini(context.Background(), cfg.Analysis.APIKey, cfg.Analysis.Model); err != nil {
		log.Warn("Analysis is disabled", sl.Err(err))
	} else {
		generator = gemini
	}

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)

	service := svc.NewService(
		log,
		storage,
		locker,
		sessions,
		analysis.New(log, generator, cfg.Analysis.Timeout),
		svc.Options{
			Policy:        policy,
			CascadeDelete: cfg.Storage.CascadeDelete,
			RiskThreshold: cfg.Risk.Threshold,
			RiskLimit:     cfg.Risk.Limit,
		},
	)

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router.New(log, service, sessions),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
		log.Warn("Unknown env, using local logger", slog.String("env", env))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
