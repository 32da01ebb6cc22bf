package ingest

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/infra/spotapi"
	"github.com/sahkoseuranta/spothinta-service/internal/metrics"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/series"
)

//go:generate mockgen -source=ingest.go -destination=mocks/mock_deps.go -package=mocks

type Service interface {
	RefreshAll(ctx context.Context) error
}

// Source отдаёт ценовые серии внешнего рынка
type Source interface {
	FetchToday(ctx context.Context) (domain.PriceSeries, error)
	FetchWeek(ctx context.Context) (domain.PriceSeries, error)
}

// SeriesStore сохраняет точки серии в БД
type SeriesStore interface {
	UpsertPoints(ctx context.Context, points []domain.PricePoint) error
}

type ingestService struct {
	source   Source
	store    SeriesStore
	requests *request.Manager
	logger   *slog.Logger
}

// NewService — конструктор сервиса загрузки ценовых серий.
func NewService(source Source, store SeriesStore, requests *request.Manager, logger *slog.Logger) Service {
	return &ingestService{
		source:   source,
		store:    store,
		requests: requests,
		logger:   logger,
	}
}

// RefreshAll — запускает обе загрузки параллельно, дожидается итогов
// и сохраняет готовые серии в БД.
//
// Ошибка загрузки одного вида не мешает другому: виды независимы.
// Ошибка записи в БД не валит прогон, серия всё равно доступна из памяти.
func (s *ingestService) RefreshAll(ctx context.Context) error {
	handles := map[request.Kind]*request.Handle{
		request.KindToday: s.requests.Launch(ctx, request.KindToday, s.source.FetchToday),
		request.KindWeek:  s.requests.Launch(ctx, request.KindWeek, s.source.FetchWeek),
	}

	var firstErr error
	for _, kind := range request.Kinds() {
		h := handles[kind]
		metrics.FetchTotal.WithLabelValues(string(kind)).Inc()

		select {
		case <-h.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		// момент завершения берём из ячейки: ожидание соседнего вида
		// в длительность загрузки не входит
		metrics.FetchDurationSeconds.WithLabelValues(string(kind)).Observe(h.CompletedAt().Sub(h.StartedAt()).Seconds())

		res := h.Result()
		if res.Status == request.StatusFailed {
			metrics.FetchErrorsTotal.WithLabelValues(string(kind), reasonLabel(res.Err)).Inc()
			s.logger.Warn("refresh failed", "kind", kind, "err", res.Err)
			if firstErr == nil {
				firstErr = fmt.Errorf("refresh %s: %w", kind, res.Err)
			}
			continue
		}

		if n := res.Series.UnknownTimeCount(); n > 0 {
			s.logger.Warn("series has points with unparseable timestamps", "kind", kind, "count", n)
		}

		if err := s.store.UpsertPoints(ctx, res.Series.SortedByTime().Points()); err != nil {
			s.logger.Warn("save points to db failed", "kind", kind, "err", err)
		}
	}
	return firstErr
}

// reasonLabel сводит ошибку загрузки к метке для метрик
func reasonLabel(err error) string {
	var statusErr *spotapi.StatusError
	switch {
	case errors.Is(err, spotapi.ErrTimeout):
		return "timeout"
	case errors.Is(err, spotapi.ErrTransport):
		return "transport"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.Is(err, series.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, series.ErrMalformedElement):
		return "malformed_element"
	default:
		return "other"
	}
}
