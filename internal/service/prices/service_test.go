package prices_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/repository"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/service/prices"
	pricesmocks "github.com/sahkoseuranta/spothinta-service/internal/service/prices/mocks"
)

// фиксированный момент "сейчас" для всех сценариев: 10 марта 2024, 13:30 UTC
var testNow = time.Date(2024, 3, 10, 13, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// helper to build service with mocks and an in-memory request manager
func setupSvc(t *testing.T) (context.Context, *gomock.Controller, *pricesmocks.MockPriceReader, *request.Manager, prices.Service) {
	t.Helper()
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := pricesmocks.NewMockPriceReader(ctrl)
	manager := request.NewManager(slog.Default())
	svc := prices.NewServiceWithClock(manager, repo, time.UTC, fixedClock{testNow}, slog.Default())
	return ctx, ctrl, repo, manager, svc
}

func launchReady(t *testing.T, m *request.Manager, kind request.Kind, s domain.PriceSeries) {
	t.Helper()
	h := m.Launch(context.Background(), kind, func(ctx context.Context) (domain.PriceSeries, error) {
		return s, nil
	})
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("launch never finished")
	}
}

func launchFailed(t *testing.T, m *request.Manager, kind request.Kind, err error) {
	t.Helper()
	h := m.Launch(context.Background(), kind, func(ctx context.Context) (domain.PriceSeries, error) {
		return domain.PriceSeries{}, err
	})
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("launch never finished")
	}
}

func launchPending(t *testing.T, m *request.Manager, kind request.Kind) {
	t.Helper()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	m.Launch(context.Background(), kind, func(ctx context.Context) (domain.PriceSeries, error) {
		<-release
		return domain.PriceSeries{}, nil
	})
}

// todaySeries - полные сутки testNow с ценой час*10 плюс одна завтрашняя
// точка с экстремальной ценой, которая не должна попадать в сводку дня
func todaySeries() domain.PriceSeries {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	points := make([]domain.PricePoint, 0, 25)
	for h := 0; h < 24; h++ {
		points = append(points, domain.PricePoint{
			Time:      day.Add(time.Duration(h) * time.Hour),
			TimeKnown: true,
			EurPerMWh: float64(h * 10),
		})
	}
	points = append(points, domain.PricePoint{
		Time:      day.Add(24 * time.Hour),
		TimeKnown: true,
		EurPerMWh: -999,
	})
	return domain.NewSeries(points)
}

// -------------------------
// Snapshot
// -------------------------

func TestSnapshot_UnknownKind(t *testing.T) {
	_, ctrl, _, _, svc := setupSvc(t)
	defer ctrl.Finish()

	if _, err := svc.Snapshot(request.Kind("year")); !errors.Is(err, prices.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestSnapshot_NoDataBeforeFirstLaunch(t *testing.T) {
	_, ctrl, _, _, svc := setupSvc(t)
	defer ctrl.Finish()

	if _, err := svc.Snapshot(request.KindToday); !errors.Is(err, prices.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestSnapshot_ReflectsCellState(t *testing.T) {
	_, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	launchPending(t, manager, request.KindToday)

	snap, err := svc.Snapshot(request.KindToday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Result.Status != request.StatusPending {
		t.Fatalf("expected pending, got %s", snap.Result.Status)
	}
	if snap.RequestID == uuid.Nil {
		t.Fatalf("snapshot must carry the request id")
	}
	if snap.Kind != request.KindToday {
		t.Fatalf("unexpected kind: %s", snap.Kind)
	}
}

// -------------------------
// Overview
// -------------------------

func TestOverview_Pending(t *testing.T) {
	ctx, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	launchPending(t, manager, request.KindToday)

	if _, err := svc.Overview(ctx); !errors.Is(err, prices.ErrSeriesPending) {
		t.Fatalf("expected ErrSeriesPending, got %v", err)
	}
}

func TestOverview_Failed(t *testing.T) {
	ctx, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	launchFailed(t, manager, request.KindToday, errors.New("api down"))

	if _, err := svc.Overview(ctx); !errors.Is(err, prices.ErrSeriesFailed) {
		t.Fatalf("expected ErrSeriesFailed, got %v", err)
	}
}

func TestOverview_EmptySeries(t *testing.T) {
	ctx, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	launchReady(t, manager, request.KindToday, domain.NewSeries(nil))

	if _, err := svc.Overview(ctx); !errors.Is(err, prices.ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestOverview_Success(t *testing.T) {
	ctx, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	launchReady(t, manager, request.KindToday, todaySeries())

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ov.HasCurrent || ov.Current.EurPerMWh != 130 {
		t.Fatalf("expected current price 130 at 13:00, got %+v", ov)
	}
	if !ov.HasRange || ov.MinToday != 0 || ov.MaxToday != 230 {
		t.Fatalf("unexpected day range: %+v", ov)
	}
	if ov.Points != 25 {
		t.Fatalf("expected 25 points in the series, got %d", ov.Points)
	}
}

func TestOverview_OnlyTomorrowPoints(t *testing.T) {
	ctx, ctrl, _, manager, svc := setupSvc(t)
	defer ctrl.Finish()

	tomorrow := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	launchReady(t, manager, request.KindToday, domain.NewSeries([]domain.PricePoint{
		{Time: tomorrow, TimeKnown: true, EurPerMWh: 55},
	}))

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.HasCurrent || ov.HasRange {
		t.Fatalf("tomorrow-only series must not yield current price or day range: %+v", ov)
	}
}

// -------------------------
// Window
// -------------------------

func TestWindow_BadRange(t *testing.T) {
	ctx, ctrl, _, _, svc := setupSvc(t)
	defer ctrl.Finish()

	from := testNow
	if _, err := svc.Window(ctx, from, from); !errors.Is(err, prices.ErrBadRange) {
		t.Fatalf("expected ErrBadRange, got %v", err)
	}
}

func TestWindow_Empty(t *testing.T) {
	ctx, ctrl, repo, _, svc := setupSvc(t)
	defer ctrl.Finish()

	from := testNow.Add(-24 * time.Hour)
	repo.EXPECT().History(gomock.Any(), from, testNow).Return(nil, nil)

	if _, err := svc.Window(ctx, from, testNow); !errors.Is(err, prices.ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestWindow_HistoryError(t *testing.T) {
	ctx, ctrl, repo, _, svc := setupSvc(t)
	defer ctrl.Finish()

	from := testNow.Add(-24 * time.Hour)
	repo.EXPECT().History(gomock.Any(), from, testNow).Return(nil, errors.New("db down"))

	if _, err := svc.Window(ctx, from, testNow); err == nil {
		t.Fatalf("expected error from repo")
	}
}

func TestWindow_MinMaxNotFound(t *testing.T) {
	ctx, ctrl, repo, _, svc := setupSvc(t)
	defer ctrl.Finish()

	from := testNow.Add(-24 * time.Hour)
	points := []domain.PricePoint{{Time: testNow.Add(-time.Hour), TimeKnown: true, EurPerMWh: 10}}
	repo.EXPECT().History(gomock.Any(), from, testNow).Return(points, nil)
	repo.EXPECT().MinMax(gomock.Any(), from, testNow).
		Return(domain.PricePoint{}, domain.PricePoint{}, repository.ErrNotFound)

	if _, err := svc.Window(ctx, from, testNow); !errors.Is(err, prices.ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestWindow_Success(t *testing.T) {
	ctx, ctrl, repo, _, svc := setupSvc(t)
	defer ctrl.Finish()

	from := testNow.Add(-24 * time.Hour)
	points := []domain.PricePoint{
		{Time: testNow.Add(-3 * time.Hour), TimeKnown: true, EurPerMWh: 20},
		{Time: testNow.Add(-2 * time.Hour), TimeKnown: true, EurPerMWh: 80},
	}
	repo.EXPECT().History(gomock.Any(), from, testNow).Return(points, nil)
	repo.EXPECT().MinMax(gomock.Any(), from, testNow).
		Return(points[0], points[1], nil)

	stats, err := svc.Window(ctx, from, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(stats.Points))
	}
	if stats.Min.EurPerMWh != 20 || stats.Max.EurPerMWh != 80 {
		t.Fatalf("unexpected min/max: %+v / %+v", stats.Min, stats.Max)
	}
}
