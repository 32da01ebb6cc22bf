package request

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("handle never reached a terminal state")
	}
}

func TestKind_Valid(t *testing.T) {
	if !KindToday.Valid() || !KindWeek.Valid() {
		t.Fatalf("known kinds must be valid")
	}
	if Kind("year").Valid() {
		t.Fatalf("unknown kind must be invalid")
	}
}

// -------------------------
// Handle lifecycle
// -------------------------

func TestManager_LaunchStartsPending(t *testing.T) {
	m := NewManager(slog.Default())

	release := make(chan struct{})
	h := m.Launch(context.Background(), KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		<-release
		return domain.PriceSeries{}, nil
	})

	if got := h.Result().Status; got != StatusPending {
		t.Fatalf("expected pending right after launch, got %s", got)
	}

	close(release)
	waitDone(t, h)

	if got := h.Result().Status; got != StatusReady {
		t.Fatalf("expected ready after fetch, got %s", got)
	}
}

func TestManager_FailedCarriesError(t *testing.T) {
	m := NewManager(slog.Default())
	boom := errors.New("boom")

	h := m.Launch(context.Background(), KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		return domain.PriceSeries{}, boom
	})
	waitDone(t, h)

	res := h.Result()
	if res.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if !errors.Is(res.Err, boom) {
		t.Fatalf("expected the fetch error in the result, got %v", res.Err)
	}
}

func TestHandle_CompleteIsWriteOnce(t *testing.T) {
	h := newHandle(KindToday)

	if !h.complete(Result{Status: StatusReady}) {
		t.Fatalf("first terminal write must succeed")
	}
	if h.complete(Result{Status: StatusFailed, Err: errors.New("late")}) {
		t.Fatalf("second terminal write must be rejected")
	}
	if got := h.Result().Status; got != StatusReady {
		t.Fatalf("late write must not overwrite the result, got %s", got)
	}
}

func TestHandle_CompletedAtFixedAtTerminal(t *testing.T) {
	h := newHandle(KindToday)

	if !h.CompletedAt().IsZero() {
		t.Fatalf("pending handle must have zero completion time")
	}

	h.complete(Result{Status: StatusReady})

	at := h.CompletedAt()
	if at.IsZero() {
		t.Fatalf("terminal handle must carry its completion time")
	}
	if at.Before(h.StartedAt()) {
		t.Fatalf("completion %v precedes start %v", at, h.StartedAt())
	}

	// the duration a reader derives later must not include its own waiting
	time.Sleep(20 * time.Millisecond)
	if got := h.CompletedAt(); !got.Equal(at) {
		t.Fatalf("completion time drifted after the terminal write: %v vs %v", got, at)
	}
}

// -------------------------
// Independence of kinds
// -------------------------

func TestManager_KindsDoNotShareState(t *testing.T) {
	m := NewManager(slog.Default())

	ready := domain.NewSeries([]domain.PricePoint{{TimeKnown: true, EurPerMWh: 42}})
	hToday := m.Launch(context.Background(), KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		return ready, nil
	})
	hWeek := m.Launch(context.Background(), KindWeek, func(ctx context.Context) (domain.PriceSeries, error) {
		return domain.PriceSeries{}, errors.New("week is down")
	})

	waitDone(t, hToday)
	waitDone(t, hWeek)

	if hToday == hWeek {
		t.Fatalf("kinds must get distinct handles")
	}
	if got := hToday.Result().Status; got != StatusReady {
		t.Fatalf("today: expected ready, got %s", got)
	}
	if got := hWeek.Result().Status; got != StatusFailed {
		t.Fatalf("week: expected failed, got %s", got)
	}
	if hToday.ID() == hWeek.ID() {
		t.Fatalf("handles must have distinct ids")
	}
}

func TestManager_RelaunchReplacesHandle(t *testing.T) {
	m := NewManager(slog.Default())

	first := m.Launch(context.Background(), KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		return domain.PriceSeries{}, errors.New("flaky network")
	})
	waitDone(t, first)

	release := make(chan struct{})
	second := m.Launch(context.Background(), KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		<-release
		return domain.PriceSeries{}, nil
	})
	defer close(release)

	// the retry starts over from pending, the old handle keeps its outcome
	if got := second.Result().Status; got != StatusPending {
		t.Fatalf("relaunch must start pending, got %s", got)
	}
	if got := first.Result().Status; got != StatusFailed {
		t.Fatalf("old handle must keep its result, got %s", got)
	}

	cur, ok := m.Handle(KindToday)
	if !ok || cur != second {
		t.Fatalf("manager must publish the newest handle")
	}
}

// -------------------------
// Cancellation
// -------------------------

func TestManager_CancelledRunWritesNothing(t *testing.T) {
	m := NewManager(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	fetchReturned := make(chan struct{})
	h := m.Launch(ctx, KindToday, func(ctx context.Context) (domain.PriceSeries, error) {
		<-ctx.Done()
		close(fetchReturned)
		return domain.PriceSeries{}, ctx.Err()
	})

	cancel()
	<-fetchReturned

	// give the manager goroutine a moment to run its discard path
	time.Sleep(50 * time.Millisecond)

	if got := h.Result().Status; got != StatusPending {
		t.Fatalf("cancelled run must not touch the cell, got %s", got)
	}
	select {
	case <-h.Done():
		t.Fatalf("done channel must stay open after a discarded run")
	default:
	}
}
