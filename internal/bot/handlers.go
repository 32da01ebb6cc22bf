package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/telebot.v4"
)

var ErrInvalidInterval = errors.New("invalid interval")

// handleStart — отправляет справку по доступным командам бота
func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send("Привет! Я слежу за биржевой ценой электричества в Финляндии.\n" +
		"Доступные команды:\n" +
		"/price - текущая цена и мин/макс за сегодня\n" +
		"/today - цены по часам на сегодня\n" +
		"/startauto {минуты} - включить автосводку\n" +
		"/stopauto - отключить автосводку")
}

// handlePrice — выводит текущую цену и дневной диапазон
func (b *Bot) handlePrice(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ov, err := b.prices.Overview(ctx)
	if err != nil {
		return c.Send(translateBotError(err))
	}
	return c.Send(formatOverview(ov))
}

// handleToday — выводит список часовых цен на сегодня
func (b *Bot) handleToday(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	points, err := b.prices.TodayPrices(ctx)
	if err != nil {
		return c.Send(translateBotError(err))
	}
	if len(points) == 0 {
		return c.Send(translateBotError(ErrPricesNotFound))
	}
	return c.Send(buildTodayMessage(points))
}

// handleStartAuto — включает автосводку цен для чата; интервал в минутах опционален
func (b *Bot) handleStartAuto(c telebot.Context) error {
	b.logger.Debug("bot: /startauto received",
		slog.Int64("chat_id", c.Chat().ID),
		slog.String("text", c.Text()),
		slog.Int("args_len", len(c.Args())),
	)

	args := c.Args()
	chatID := c.Chat().ID
	if len(args) > 1 {
		b.logger.Warn("bot: /startauto wrong args",
			slog.Int64("chat_id", chatID),
			slog.Int("args_len", len(args)),
			slog.String("text", c.Text()),
		)
		return c.Send("Укажи интервал в минутах: /startauto 30")
	}

	mins := b.defaultInterval
	if len(args) == 1 {
		m, err := parseMinutes(args[0])
		if err != nil {
			b.logger.Warn("bot: /startauto invalid interval",
				slog.Int64("chat_id", chatID),
				slog.String("arg", args[0]),
			)
			return c.Send("Некорректный интервал. Пример: /startauto 30")
		}
		mins = m
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.subs.Enable(ctx, chatID, mins); err != nil {
		return c.Send(translateBotError(err))
	}
	b.logger.Debug("bot: startauto enabled",
		slog.Int64("chat_id", chatID),
		slog.Int("interval_min", mins),
	)
	if err := c.Send(fmt.Sprintf("Автосводка включена! (каждые %d мин.)", mins)); err != nil {
		b.logger.Error("bot: /startauto confirm send failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// handleStopAuto — отключает автосводку цен для текущего чата
func (b *Bot) handleStopAuto(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.subs.Disable(ctx, c.Chat().ID); err != nil {
		return c.Send(translateBotError(err))
	}
	return c.Send("Автосводка отключена!")
}

// parseMinutes — парсит строку с минутами и валидирует значение (> 0)
func parseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	m, err := strconv.Atoi(s)
	if err != nil || m <= 0 {
		return 0, ErrInvalidInterval
	}
	return m, nil
}
