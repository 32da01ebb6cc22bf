package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"

	"github.com/sahkoseuranta/spothinta-service/internal/app"
	"github.com/sahkoseuranta/spothinta-service/internal/config"
	"github.com/sahkoseuranta/spothinta-service/internal/infra/db"
	"github.com/sahkoseuranta/spothinta-service/internal/migrate"
	"github.com/sahkoseuranta/spothinta-service/pkg/logger"
)

func main() {

	// context + signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lg := logger.New(&cfg.Logger)

	if cfg.Postgres.AutoMigrate {
		if err := migrate.Up(ctx, cfg.Postgres.DSN()); err != nil {
			lg.Error("migrations failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		lg.Info("migrations applied")
	}

	pool, err := db.NewPool(&cfg.Postgres)
	if err != nil {
		lg.Error("database connect failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// build application
	application, err := app.NewApp(*cfg, lg, pool)
	if err != nil {
		lg.Error("app init failed", slog.String("error", err.Error()))
		pool.Close()
		os.Exit(1)
	}

	// run application
	if err := application.Run(ctx); err != nil {
		lg.Error("application stopped with error", slog.String("error", err.Error()))
	}

	lg.Info("spothinta-service stopped")
}
