// Package request ведёт учёт фоновых загрузок ценовых серий.
//
// Каждый запуск получает собственную ячейку результата: она рождается
// в состоянии pending и ровно один раз переходит в ready либо failed.
// Повторная загрузка того же вида создаёт новую ячейку, старая остаётся
// у тех, кто её уже держит.
package request

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

// Kind - вид логического запроса
type Kind string

const (
	KindToday Kind = "today" // сегодня и опубликованное завтра
	KindWeek  Kind = "week"  // последние семь дней
)

// Kinds перечисляет все виды запросов в фиксированном порядке
func Kinds() []Kind {
	return []Kind{KindToday, KindWeek}
}

// Valid сообщает, известен ли такой вид запроса
func (k Kind) Valid() bool {
	return k == KindToday || k == KindWeek
}

// Status - состояние ячейки результата
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Result - снимок состояния загрузки.
// Series заполнена только в ready, Err - только в failed.
type Result struct {
	Status Status
	Series domain.PriceSeries
	Err    error
}

// Handle - ячейка результата одного запуска
type Handle struct {
	id        uuid.UUID
	kind      Kind
	startedAt time.Time

	mu          sync.RWMutex
	res         Result
	completedAt time.Time
	done        chan struct{}
}

func newHandle(kind Kind) *Handle {
	return &Handle{
		id:        uuid.New(),
		kind:      kind,
		startedAt: time.Now(),
		res:       Result{Status: StatusPending},
		done:      make(chan struct{}),
	}
}

// ID возвращает идентификатор запуска для логов и ответов API
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Kind возвращает вид запроса, породивший ячейку
func (h *Handle) Kind() Kind {
	return h.kind
}

// StartedAt возвращает момент запуска
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// CompletedAt возвращает момент терминального перехода,
// нулевое время - пока ячейка pending
func (h *Handle) CompletedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.completedAt
}

// Result возвращает снимок текущего состояния
func (h *Handle) Result() Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.res
}

// Done закрывается при переходе ячейки в терминальное состояние
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// complete записывает терминальное состояние. Запись возможна ровно один раз:
// повторный вызов ничего не меняет и возвращает false.
func (h *Handle) complete(res Result) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.res.Status != StatusPending {
		return false
	}
	h.res = res
	h.completedAt = time.Now()
	close(h.done)
	return true
}

// FetchFunc загружает серию. Обязана уважать ctx.
type FetchFunc func(ctx context.Context) (domain.PriceSeries, error)

// Manager запускает загрузки и хранит последнюю ячейку каждого вида.
// Виды независимы: "today" и "week" идут параллельно и не делят состояние.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	handles map[Kind]*Handle
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		handles: make(map[Kind]*Handle),
	}
}

// Launch создаёт свежую pending-ячейку вида kind и уводит загрузку в горутину.
// Возвращённая ячейка сразу опубликована как текущая для этого вида.
func (m *Manager) Launch(ctx context.Context, kind Kind, fetch FetchFunc) *Handle {
	h := newHandle(kind)

	m.mu.Lock()
	m.handles[kind] = h
	m.mu.Unlock()

	go m.run(ctx, h, fetch)
	return h
}

// Handle возвращает текущую ячейку вида kind
func (m *Manager) Handle(kind Kind) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[kind]
	return h, ok
}

func (m *Manager) run(ctx context.Context, h *Handle, fetch FetchFunc) {
	s, err := fetch(ctx)

	// владелец контекста уже всё свернул: результат никому не нужен,
	// в выброшенную ячейку не пишем
	if ctx.Err() != nil {
		m.logger.Debug("request cancelled, result discarded",
			slog.String("kind", string(h.kind)),
			slog.String("request_id", h.id.String()),
		)
		return
	}

	if err != nil {
		h.complete(Result{Status: StatusFailed, Err: err})
		m.logger.Warn("fetch failed",
			slog.String("kind", string(h.kind)),
			slog.String("request_id", h.id.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	h.complete(Result{Status: StatusReady, Series: s})
	m.logger.Info("fetch completed",
		slog.String("kind", string(h.kind)),
		slog.String("request_id", h.id.String()),
		slog.Int("points", s.Len()),
	)
}
