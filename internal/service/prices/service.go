package prices

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/repository"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
)

// Бизнес-логика чтения: состояние загрузок, сводка дня, выборки из истории

//go:generate mockgen -source=service.go -destination=mocks/mock_deps.go -package=mocks

type Service interface {
	// Snapshot — состояние последней загрузки вида kind как есть:
	// pending, ready с серией или failed с ошибкой
	Snapshot(kind request.Kind) (SeriesSnapshot, error)
	// Overview — сводка дня: текущая цена, мин/макс на сегодня
	Overview(ctx context.Context) (Overview, error)
	// Window — точки и мин/макс сохранённой истории за интервал
	Window(ctx context.Context, from, to time.Time) (WindowStats, error)
}

type PriceReader interface {
	History(ctx context.Context, from, to time.Time) ([]domain.PricePoint, error)
	MinMax(ctx context.Context, from, to time.Time) (min, max domain.PricePoint, err error)
}

// SeriesSnapshot - снимок ячейки запроса для отдачи наружу
type SeriesSnapshot struct {
	RequestID uuid.UUID
	Kind      request.Kind
	Result    request.Result
}

// Overview - сводка текущего дня
type Overview struct {
	Current    domain.PricePoint // точка текущего часа
	HasCurrent bool
	MinToday   float64
	MaxToday   float64
	HasRange   bool
	Points     int       // размер серии целиком, включая завтра после публикации
	At         time.Time // момент вычисления в зоне рынка
}

// WindowStats - выборка истории за интервал
type WindowStats struct {
	From   time.Time
	To     time.Time
	Points []domain.PricePoint
	Min    domain.PricePoint
	Max    domain.PricePoint
}

type service struct {
	requests  *request.Manager
	priceRepo PriceReader
	loc       *time.Location
	clock     Clock
	logger    *slog.Logger
}

func NewService(requests *request.Manager, priceRepo PriceReader, loc *time.Location, logger *slog.Logger) Service {
	return &service{
		requests:  requests,
		priceRepo: priceRepo,
		loc:       loc,
		clock:     NewRealClock(),
		logger:    logger,
	}
}

// NewServiceWithClock - конструктор для тестов: позволяет подставить фиксированные "часы".
func NewServiceWithClock(requests *request.Manager, priceRepo PriceReader, loc *time.Location, clk Clock, logger *slog.Logger) Service {
	return &service{
		requests:  requests,
		priceRepo: priceRepo,
		loc:       loc,
		clock:     clk,
		logger:    logger,
	}
}

func (s *service) Snapshot(kind request.Kind) (SeriesSnapshot, error) {
	if !kind.Valid() {
		return SeriesSnapshot{}, ErrUnknownKind
	}
	h, ok := s.requests.Handle(kind)
	if !ok {
		// до первого прогона планировщика ячеек ещё нет
		return SeriesSnapshot{}, ErrNoData
	}
	return SeriesSnapshot{
		RequestID: h.ID(),
		Kind:      kind,
		Result:    h.Result(),
	}, nil
}

func (s *service) Overview(ctx context.Context) (Overview, error) {
	snap, err := s.Snapshot(request.KindToday)
	if err != nil {
		return Overview{}, err
	}

	switch snap.Result.Status {
	case request.StatusPending:
		return Overview{}, ErrSeriesPending
	case request.StatusFailed:
		s.logger.Warn("today series unavailable", "err", snap.Result.Err)
		return Overview{}, ErrSeriesFailed
	}

	ser := snap.Result.Series
	if ser.Len() == 0 {
		s.logger.Warn("today series is empty")
		return Overview{}, ErrPriceNotFound
	}

	now := s.clock.Now().In(s.loc)
	ov := Overview{At: now, Points: ser.Len()}

	if p, ok := ser.CurrentPoint(now); ok {
		ov.Current = p
		ov.HasCurrent = true
	}

	// серия после публикации содержит и завтрашний день,
	// мин/макс считаем только по сегодняшним точкам
	today := ser.ForDay(now.YearDay())
	if min, ok := today.MinPrice(); ok {
		max, _ := today.MaxPrice()
		ov.MinToday = min
		ov.MaxToday = max
		ov.HasRange = true
	}

	s.logger.Debug("computed overview",
		"has_current", ov.HasCurrent,
		"points", ov.Points,
	)
	return ov, nil
}

func (s *service) Window(ctx context.Context, from, to time.Time) (WindowStats, error) {
	if !from.Before(to) {
		return WindowStats{}, ErrBadRange
	}

	points, err := s.priceRepo.History(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to read history", "from", from, "to", to, "err", err)
		return WindowStats{}, err
	}
	if len(points) == 0 {
		s.logger.Debug("no history within range", "from", from, "to", to)
		return WindowStats{}, ErrPriceNotFound
	}

	min, max, err := s.priceRepo.MinMax(ctx, from, to)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return WindowStats{}, ErrPriceNotFound
		}
		s.logger.Error("failed to read min/max", "from", from, "to", to, "err", err)
		return WindowStats{}, err
	}

	return WindowStats{
		From:   from,
		To:     to,
		Points: points,
		Min:    min,
		Max:    max,
	}, nil
}
