package ingest_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/service/ingest"
	ingestmocks "github.com/sahkoseuranta/spothinta-service/internal/service/ingest/mocks"
)

func seriesAt(hours ...int) domain.PriceSeries {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	points := make([]domain.PricePoint, 0, len(hours))
	for _, h := range hours {
		points = append(points, domain.PricePoint{
			Time:      base.Add(time.Duration(h) * time.Hour),
			TimeKnown: true,
			EurPerMWh: float64(h * 10),
		})
	}
	return domain.NewSeries(points)
}

// Success: обе серии загрузились, обе сохранились в БД,
// ячейки менеджера перешли в ready
func TestRefreshAll_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := ingestmocks.NewMockSource(ctrl)
	store := ingestmocks.NewMockSeriesStore(ctrl)
	manager := request.NewManager(slog.Default())

	source.EXPECT().FetchToday(gomock.Any()).Return(seriesAt(14, 12), nil).Times(1)
	source.EXPECT().FetchWeek(gomock.Any()).Return(seriesAt(1, 2, 3), nil).Times(1)

	// сохраняем отсортированные точки: для "today" первой идёт 12:00
	store.EXPECT().
		UpsertPoints(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, points []domain.PricePoint) error {
			if len(points) == 2 && points[0].HourOfDay() != 12 {
				t.Errorf("expected sorted points, first hour = %d", points[0].HourOfDay())
			}
			return nil
		}).
		Times(2)

	svc := ingest.NewService(source, store, manager, slog.Default())

	if err := svc.RefreshAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, kind := range request.Kinds() {
		h, ok := manager.Handle(kind)
		if !ok {
			t.Fatalf("no handle for %s", kind)
		}
		if got := h.Result().Status; got != request.StatusReady {
			t.Fatalf("%s: expected ready, got %s", kind, got)
		}
	}
}

// TodayFails: падение одной загрузки не мешает другой,
// сервис возвращает ошибку упавшего вида
func TestRefreshAll_TodayFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := ingestmocks.NewMockSource(ctrl)
	store := ingestmocks.NewMockSeriesStore(ctrl)
	manager := request.NewManager(slog.Default())

	apiErr := errors.New("status 503")
	source.EXPECT().FetchToday(gomock.Any()).Return(domain.PriceSeries{}, apiErr).Times(1)
	source.EXPECT().FetchWeek(gomock.Any()).Return(seriesAt(1), nil).Times(1)

	// сохраняется только недельная серия
	store.EXPECT().UpsertPoints(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	svc := ingest.NewService(source, store, manager, slog.Default())

	err := svc.RefreshAll(ctx)
	if err == nil || !errors.Is(err, apiErr) {
		t.Fatalf("expected the today error, got %v", err)
	}

	hToday, _ := manager.Handle(request.KindToday)
	if got := hToday.Result().Status; got != request.StatusFailed {
		t.Fatalf("today: expected failed, got %s", got)
	}
	hWeek, _ := manager.Handle(request.KindWeek)
	if got := hWeek.Result().Status; got != request.StatusReady {
		t.Fatalf("week: expected ready, got %s", got)
	}
}

// StoreError: ошибка записи в БД не валит прогон,
// серии остаются доступными из памяти
func TestRefreshAll_StoreError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := ingestmocks.NewMockSource(ctrl)
	store := ingestmocks.NewMockSeriesStore(ctrl)
	manager := request.NewManager(slog.Default())

	source.EXPECT().FetchToday(gomock.Any()).Return(seriesAt(10), nil).Times(1)
	source.EXPECT().FetchWeek(gomock.Any()).Return(seriesAt(11), nil).Times(1)
	store.EXPECT().UpsertPoints(gomock.Any(), gomock.Any()).Return(errors.New("insert failed")).Times(2)

	svc := ingest.NewService(source, store, manager, slog.Default())

	if err := svc.RefreshAll(ctx); err != nil {
		t.Fatalf("db write failure must not fail the run, got %v", err)
	}
}

// BothFail: возвращается ошибка первого по порядку вида,
// обе ячейки остаются в failed
func TestRefreshAll_BothFail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := ingestmocks.NewMockSource(ctrl)
	store := ingestmocks.NewMockSeriesStore(ctrl)
	manager := request.NewManager(slog.Default())

	source.EXPECT().FetchToday(gomock.Any()).Return(domain.PriceSeries{}, errors.New("down")).Times(1)
	source.EXPECT().FetchWeek(gomock.Any()).Return(domain.PriceSeries{}, errors.New("down")).Times(1)
	store.EXPECT().UpsertPoints(gomock.Any(), gomock.Any()).Times(0)

	svc := ingest.NewService(source, store, manager, slog.Default())

	if err := svc.RefreshAll(ctx); err == nil {
		t.Fatalf("expected error when all fetches fail")
	}

	for _, kind := range request.Kinds() {
		h, _ := manager.Handle(kind)
		if got := h.Result().Status; got != request.StatusFailed {
			t.Fatalf("%s: expected failed, got %s", kind, got)
		}
	}
}
