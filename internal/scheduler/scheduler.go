package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sahkoseuranta/spothinta-service/internal/metrics"
	"github.com/sahkoseuranta/spothinta-service/internal/service/ingest"
)

type Scheduler struct {
	ingestService ingest.Service
	interval      time.Duration
	dailyCron     string
	loc           *time.Location
	logger        *slog.Logger
}

// NewScheduler — конструктор планировщика фонового обновления цен
func NewScheduler(ingestService ingest.Service, interval time.Duration, dailyCron string, loc *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingestService: ingestService,
		interval:      interval,
		dailyCron:     dailyCron,
		loc:           loc,
		logger:        logger,
	}
}

// Start — запускает периодическое выполнение задачи до остановки контекста.
// Кроме обычного интервала есть ежедневный cron-прогон под публикацию
// завтрашних цен (биржа открывает их раз в сутки после клиринга).
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started")
	s.logger.Debug("scheduler interval configured", slog.Duration("interval", s.interval))

	if s.dailyCron != "" {
		c := cron.New(cron.WithLocation(s.loc))
		if _, err := c.AddFunc(s.dailyCron, func() { s.runOnce(ctx) }); err != nil {
			s.logger.Error("bad daily cron spec, skipping", slog.String("spec", s.dailyCron), slog.Any("err", err))
		} else {
			c.Start()
			defer c.Stop()
			s.logger.Debug("daily cron armed", slog.String("spec", s.dailyCron))
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// первый запуск сразу
	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// runOnce — одна итерация: обновить обе серии и записать их в БД
func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	s.logger.Debug("tick: running refresh cycle")

	err := s.ingestService.RefreshAll(ctx)
	metrics.UpdateJobMetrics("refresh_prices", started, err)
	if err != nil {
		s.logger.Error("tick: refresh failed", slog.Any("err", err))
		return
	}
	s.logger.Debug("tick: refresh cycle completed")
}
