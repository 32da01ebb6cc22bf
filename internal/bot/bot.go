package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gopkg.in/telebot.v4"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

// Ошибки чтения цен в словаре бота. Адаптер переводит ошибки сервиса в эти значения.
var (
	ErrPricesPending  = errors.New("prices pending")
	ErrPricesFailed   = errors.New("prices failed")
	ErrPricesNotFound = errors.New("prices not found")
)

// Config — конфигурация бота
type Config struct {
	Token           string
	LongPollTimeout time.Duration
	DispatchPeriod  time.Duration
	DefaultInterval int // минуты между автосводками, если пользователь не указал свои
}

// Overview — сводка по текущей цене для сообщений бота
type Overview struct {
	Current    domain.PricePoint
	HasCurrent bool
	MinToday   float64 // EUR/MWh
	MaxToday   float64 // EUR/MWh
	HasRange   bool
	At         time.Time
}

// PricesReader — интерфейс для чтения цен
type PricesReader interface {
	Overview(ctx context.Context) (Overview, error)
	TodayPrices(ctx context.Context) ([]domain.PricePoint, error)
}

// SubscriptionStore — интерфейс для управления подписками
type SubscriptionStore interface {
	Enable(ctx context.Context, chatID int64, intervalMinutes int) error
	Disable(ctx context.Context, chatID int64) error
	FindDue(ctx context.Context, now time.Time) ([]int64, error)
	MarkSent(ctx context.Context, chatID int64, at time.Time) error
}

// Bot — телеграм-интерфейс сервиса цен
type Bot struct {
	bot             *telebot.Bot
	prices          PricesReader
	subs            SubscriptionStore
	dispatcher      *dispatcher
	defaultInterval int
	logger          *slog.Logger
}

// New создаёт бота и регистрирует команды
func New(cfg Config, prices PricesReader, subs SubscriptionStore, logger *slog.Logger) (*Bot, error) {
	if cfg.LongPollTimeout <= 0 {
		cfg.LongPollTimeout = 10 * time.Second
	}
	if cfg.DefaultInterval <= 0 {
		cfg.DefaultInterval = 60
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.LongPollTimeout},
	})
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		bot:             b,
		prices:          prices,
		subs:            subs,
		defaultInterval: cfg.DefaultInterval,
		logger:          logger,
	}

	// маршруты команд
	b.Handle("/start", bot.handleStart)
	b.Handle("/price", bot.handlePrice)
	b.Handle("/today", bot.handleToday)
	b.Handle("/startauto", bot.handleStartAuto)
	b.Handle("/stopauto", bot.handleStopAuto)
	bot.dispatcher = newDispatcher(b, prices, subs, cfg.DispatchPeriod, logger)
	return bot, nil
}

// Start запускает бота и рассыльщик автосводок
func (b *Bot) Start(ctx context.Context) {
	if b.dispatcher != nil {
		go b.dispatcher.run(ctx)
	}
	go b.bot.Start()
}

// Stop останавливает бота
func (b *Bot) Stop() {
	b.bot.Stop()
}
