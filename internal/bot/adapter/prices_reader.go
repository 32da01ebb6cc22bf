package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/sahkoseuranta/spothinta-service/internal/bot"
	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/service/prices"
)

// servicePricesReader — адаптер, который превращает сервис цен в интерфейс бота PricesReader.

type servicePricesReader struct {
	svc prices.Service
	loc *time.Location // зона рынка, по ней определяем границы "сегодня"
}

// NewPricesReader — конструктор адаптера над сервисом цен.
func NewPricesReader(svc prices.Service, loc *time.Location) bot.PricesReader {
	return servicePricesReader{svc: svc, loc: loc}
}

// Overview — возвращает сводку по текущей цене, преобразуя её в DTO бота.
func (a servicePricesReader) Overview(ctx context.Context) (bot.Overview, error) {
	ov, err := a.svc.Overview(ctx)
	if err != nil {
		return bot.Overview{}, translateErr(err)
	}
	return bot.Overview{
		Current:    ov.Current,
		HasCurrent: ov.HasCurrent,
		MinToday:   ov.MinToday,
		MaxToday:   ov.MaxToday,
		HasRange:   ov.HasRange,
		At:         ov.At,
	}, nil
}

// TodayPrices — возвращает часовые цены текущих суток в порядке времени.
func (a servicePricesReader) TodayPrices(ctx context.Context) ([]domain.PricePoint, error) {
	snap, err := a.svc.Snapshot(request.KindToday)
	if err != nil {
		return nil, translateErr(err)
	}

	switch snap.Result.Status {
	case request.StatusPending:
		return nil, bot.ErrPricesPending
	case request.StatusFailed:
		return nil, bot.ErrPricesFailed
	}

	// Серия "сегодня" после публикации содержит и завтрашние часы, боту отдаём только текущие сутки.
	day := time.Now().In(a.loc).YearDay()
	return snap.Result.Series.ForDay(day).SortedByTime().Points(), nil
}

// translateErr — переводит ошибки сервиса цен в словарь бота.
func translateErr(err error) error {
	switch {
	case errors.Is(err, prices.ErrSeriesPending), errors.Is(err, prices.ErrNoData):
		return bot.ErrPricesPending
	case errors.Is(err, prices.ErrSeriesFailed):
		return bot.ErrPricesFailed
	case errors.Is(err, prices.ErrPriceNotFound):
		return bot.ErrPricesNotFound
	default:
		return err
	}
}
