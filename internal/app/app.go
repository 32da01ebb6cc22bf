package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	botpkg "github.com/sahkoseuranta/spothinta-service/internal/bot"
	"github.com/sahkoseuranta/spothinta-service/internal/bot/adapter"
	"github.com/sahkoseuranta/spothinta-service/internal/config"
	"github.com/sahkoseuranta/spothinta-service/internal/infra/demo"
	"github.com/sahkoseuranta/spothinta-service/internal/infra/spotapi"
	"github.com/sahkoseuranta/spothinta-service/internal/metrics"
	repopg "github.com/sahkoseuranta/spothinta-service/internal/repository/postgres"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/scheduler"
	ingestsvc "github.com/sahkoseuranta/spothinta-service/internal/service/ingest"
	pricesvc "github.com/sahkoseuranta/spothinta-service/internal/service/prices"
	"github.com/sahkoseuranta/spothinta-service/internal/transport/httptransport"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db   *pgxpool.Pool
	e    *echo.Echo
	serv *http.Server

	priceRepo *repopg.PriceRepo
	subsRepo  *repopg.SubscriptionRepo

	requests *request.Manager
	ingest   ingestsvc.Service
	prices   pricesvc.Service

	updater *scheduler.Scheduler

	bot *botpkg.Bot
}

func NewApp(cfg config.Config, log *slog.Logger, db *pgxpool.Pool) (*App, error) {
	app := &App{cfg: cfg, log: log, db: db}

	loc, err := time.LoadLocation(cfg.SpotAPI.Timezone)
	if err != nil {
		log.Error("unknown market timezone", slog.String("tz", cfg.SpotAPI.Timezone))
		return nil, err
	}

	app.priceRepo = repopg.NewPriceRepository(db)
	app.subsRepo = repopg.NewSubscriptionRepo(db)

	e := echo.New()
	app.e = e

	var source ingestsvc.Source
	if cfg.SpotAPI.Demo {
		log.Info("using demo price source", slog.Duration("delay", cfg.SpotAPI.DemoDelay))
		source = demo.NewGenerator(cfg.SpotAPI.DemoDelay, loc, log)
	} else {
		source = spotapi.NewClient(cfg.SpotAPI)
	}

	app.requests = request.NewManager(log)
	app.ingest = ingestsvc.NewService(source, app.priceRepo, app.requests, log)
	app.prices = pricesvc.NewService(app.requests, app.priceRepo, loc, log)

	ph := httptransport.NewPricesHandler(log, app.prices, cfg.Server.ReadTimeout)
	ph.RegisterRoutes(e)

	hh := httptransport.NewHealthHandler(log, db)
	hh.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	app.serv = &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Handler:      e,
	}

	if cfg.Scheduler.Enabled {
		app.updater = scheduler.NewScheduler(app.ingest, cfg.Scheduler.Interval, cfg.Scheduler.DailyCron, loc, log)
	}

	if cfg.Telegram.Enabled {
		// Если бот включён, отсутствие токена — ошибка конфигурации
		token := strings.TrimSpace(cfg.Telegram.Token)
		if token == "" {
			log.Error("telegram enabled but TELEGRAM_BOT_TOKEN is empty")
			return nil, errors.New("telegram token is empty")
		}

		botApp, err := botpkg.New(
			botpkg.Config{
				Token:           token,
				LongPollTimeout: cfg.Telegram.PollTimeout,
				DispatchPeriod:  cfg.Telegram.DispatchPeriod,
				DefaultInterval: cfg.Telegram.DefaultAutoInterval,
			},
			adapter.NewPricesReader(app.prices, loc),
			app.subsRepo,
			log,
		)
		if err != nil {
			log.Error("telegram init failed", slog.String("error", err.Error()))
			return nil, err
		}
		app.bot = botApp
	}
	log.Info("app initialized",
		slog.Bool("demo_source", cfg.SpotAPI.Demo),
		slog.Bool("telegram_enabled", cfg.Telegram.Enabled),
		slog.Bool("bot_attached", app.bot != nil),
		slog.String("http_addr", cfg.Server.Addr),
	)
	return app, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.updater != nil {
		a.log.Info("starting updater")
		go a.updater.Start(ctx)
	}

	if a.bot != nil {
		a.log.Info("starting bot")
		go a.bot.Start(ctx)
	}

	go a.pollDBStats(ctx)

	a.log.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
	go func() {
		if err := a.e.StartServer(a.serv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", slog.String("error", err.Error()))
		}
	}()
	<-ctx.Done()
	return a.Shutdown(context.Background())
}

// pollDBStats периодически снимает метрики пула соединений.
func (a *App) pollDBStats(ctx context.Context) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			metrics.UpdateDBPoolMetrics(a.db.Stat())
		}
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	shCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.e != nil {
		if err := a.e.Shutdown(shCtx); err != nil {
			a.log.Error("http shutdown error", slog.String("error", err.Error()))
		}
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	if a.db != nil {
		a.db.Close()
	}

	a.log.Info("application stopped")
	return nil
}
