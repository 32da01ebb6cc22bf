package bot

import (
	"context"
	"time"

	"log/slog"

	"gopkg.in/telebot.v4"
)

// dispatcher - рассыльщик автосводок для Telegram-бота.
type dispatcher struct {
	bot         *telebot.Bot
	prices      PricesReader
	subs        SubscriptionStore
	checkPeriod time.Duration
	logger      *slog.Logger
}

func newDispatcher(bot *telebot.Bot, p PricesReader, s SubscriptionStore, period time.Duration, logger *slog.Logger) *dispatcher {
	if period <= 0 {
		period = time.Minute
	}
	logger.Debug("bot dispatcher configured", slog.Duration("period", period))
	return &dispatcher{bot: bot, prices: p, subs: s, checkPeriod: period, logger: logger}
}

// run - основной цикл: раз в checkPeriod проверяем, кому пора отправить сводку.
func (d *dispatcher) run(ctx context.Context) {
	d.logger.Info("bot dispatcher started", slog.Duration("period", d.checkPeriod))
	t := time.NewTicker(d.checkPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("bot dispatcher stopped")
			return
		case now := <-t.C:
			d.logger.Debug("dispatch tick started", slog.Time("now", now))
			started := time.Now()
			d.tick(ctx, now)
			d.logger.Debug("dispatch tick completed", slog.Duration("duration", time.Since(started)))
		}
	}
}

// tick - одна итерация рассылки: находим чаты, собираем сводку и отправляем.
func (d *dispatcher) tick(ctx context.Context, now time.Time) {
	chatIDs, err := d.subs.FindDue(ctx, now)
	if err != nil {
		d.logger.Error("failed to fetch due subscriptions", slog.Any("err", err))
		return
	}
	d.logger.Debug("tick: due subscriptions loaded", slog.Int("count", len(chatIDs)))
	if len(chatIDs) == 0 {
		return
	}

	// Сводка одна на всех. Небольшой timeout, чтобы не блокировать цикл.
	pCtx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	ov, err := d.prices.Overview(pCtx)
	if err != nil {
		// Подписки не помечаем отправленными: чат получит сводку на следующем тике.
		d.logger.Warn("tick: overview unavailable", slog.Any("err", err))
		return
	}

	msg := formatOverview(ov)

	for _, id := range chatIDs {
		d.logger.Debug("tick: sending summary", slog.Int64("chat_id", id))
		if _, err := d.bot.Send(&telebot.Chat{ID: id}, msg); err != nil {
			d.logger.Error("tick: send failed", slog.Int64("chat_id", id), slog.Any("err", err))
			continue
		}
		if err := d.subs.MarkSent(ctx, id, now); err != nil {
			d.logger.Error("tick: mark sent failed", slog.Int64("chat_id", id), slog.Any("err", err))
		} else {
			d.logger.Debug("tick: marked subscription sent", slog.Int64("chat_id", id))
		}
	}
}
