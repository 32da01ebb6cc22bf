package httptransport

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/ports/errcode"
	"github.com/sahkoseuranta/spothinta-service/internal/request"
	"github.com/sahkoseuranta/spothinta-service/internal/service/prices"
)

// Price — цена в JSON с двумя знаками после запятой.
type Price float64

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(p), 'f', 2, 64)), nil
}

// PricesService — абстракция для работы с ценами.
type PricesService interface {
	Snapshot(kind request.Kind) (prices.SeriesSnapshot, error)
	Overview(ctx context.Context) (prices.Overview, error)
	Window(ctx context.Context, from, to time.Time) (prices.WindowStats, error)
}

// Point — DTO одной часовой точки.
type Point struct {
	Time      *time.Time `json:"time,omitempty"` // отсутствует у точек без метки времени
	Label     string     `json:"label"`
	EurPerMWh Price      `json:"eur_per_mwh"`
	SntPerKWh Price      `json:"snt_per_kwh"`
}

func makePoint(p domain.PricePoint) Point {
	out := Point{
		Label:     p.Label(),
		EurPerMWh: Price(p.EurPerMWh),
		SntPerKWh: Price(p.SntPerKWh()),
	}
	if p.TimeKnown {
		t := p.Time
		out.Time = &t
	}
	return out
}

// SeriesResponse — ответ по серии целиком вместе с состоянием загрузки.
// При status=pending и status=failed точек нет.
type SeriesResponse struct {
	Status    string  `json:"status"`
	Kind      string  `json:"kind"`
	RequestID string  `json:"request_id"`
	Error     string  `json:"error,omitempty"`
	Points    []Point `json:"points,omitempty"`
	Min       *Price  `json:"min_eur_per_mwh,omitempty"`
	Max       *Price  `json:"max_eur_per_mwh,omitempty"`
}

// CurrentResponse — точка текущего часа и границы дня.
type CurrentResponse struct {
	Point    Point  `json:"point"`
	MinToday *Price `json:"min_today,omitempty"`
	MaxToday *Price `json:"max_today,omitempty"`
}

// HistoryResponse — сохранённая история за интервал.
type HistoryResponse struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Points []Point   `json:"points"`
	Min    Point     `json:"min"`
	Max    Point     `json:"max"`
}

// PricesHandler — HTTP-handler спотовых цен.
type PricesHandler struct {
	logger  *slog.Logger
	svc     PricesService
	timeout time.Duration
}

func NewPricesHandler(logger *slog.Logger, svc PricesService, timeout time.Duration) *PricesHandler {
	if logger == nil {
		log.Fatal("nil logger")
	}
	if svc == nil {
		log.Fatal("nil service")
	}
	// Задаём таймаут по умолчанию, если он не задан
	if timeout <= 0 {
		timeout = time.Second * 3
	}
	return &PricesHandler{
		logger:  logger,
		svc:     svc,
		timeout: timeout,
	}
}

func (h *PricesHandler) RegisterRoutes(r interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}) {
	// Регистрируем маршруты
	r.GET("/prices/today", h.GetToday)
	r.GET("/prices/week", h.GetWeek)
	r.GET("/prices/current", h.GetCurrent)
	r.GET("/prices/history", h.GetHistory)
}

func (h *PricesHandler) GetToday(c echo.Context) error {
	return h.serveSeries(c, request.KindToday)
}

func (h *PricesHandler) GetWeek(c echo.Context) error {
	return h.serveSeries(c, request.KindWeek)
}

// serveSeries отдаёт состояние загрузки как есть: pending — 202,
// failed — 502 с текстом ошибки, ready — 200 с отсортированной серией.
func (h *PricesHandler) serveSeries(c echo.Context, kind request.Kind) error {
	snap, err := h.svc.Snapshot(kind)
	if err != nil {
		code := FromServiceError(err)
		switch code {
		case errcode.NotFoundSeries:
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "series_not_requested",
			})
		default:
			h.logger.Error("Snapshot failed",
				slog.String("op", "serveSeries"),
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "internal_server_error",
			})
		}
	}

	resp := SeriesResponse{
		Status:    string(snap.Result.Status),
		Kind:      string(snap.Kind),
		RequestID: snap.RequestID.String(),
	}

	switch snap.Result.Status {
	case request.StatusPending:
		return c.JSON(http.StatusAccepted, resp)
	case request.StatusFailed:
		resp.Error = snap.Result.Err.Error()
		return c.JSON(http.StatusBadGateway, resp)
	}

	sorted := snap.Result.Series.SortedByTime()
	points := sorted.Points()
	resp.Points = make([]Point, 0, len(points))
	for _, p := range points {
		resp.Points = append(resp.Points, makePoint(p))
	}
	if min, ok := sorted.MinPrice(); ok {
		v := Price(min)
		resp.Min = &v
	}
	if max, ok := sorted.MaxPrice(); ok {
		v := Price(max)
		resp.Max = &v
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PricesHandler) GetCurrent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ov, err := h.svc.Overview(ctx)
	if err != nil {
		code := FromServiceError(err)
		switch code {
		case errcode.SeriesPending:
			return c.JSON(http.StatusAccepted, echo.Map{
				"status": "pending",
			})
		case errcode.SeriesFailed:
			return c.JSON(http.StatusBadGateway, echo.Map{
				"error": "spot_api_unavailable",
			})
		case errcode.NotFoundSeries, errcode.NotFoundPrices:
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "prices_not_found",
			})
		default:
			h.logger.Error("Overview failed",
				slog.String("op", "GetCurrent"),
				slog.String("error", err.Error()),
			)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "internal_server_error",
			})
		}
	}

	if !ov.HasCurrent {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "no_current_price",
		})
	}

	resp := CurrentResponse{Point: makePoint(ov.Current)}
	if ov.HasRange {
		min := Price(ov.MinToday)
		max := Price(ov.MaxToday)
		resp.MinToday = &min
		resp.MaxToday = &max
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PricesHandler) GetHistory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	// по умолчанию — последние сутки
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "bad_time_format",
				"param": "from",
			})
		}
		from = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "bad_time_format",
				"param": "to",
			})
		}
		to = t
	}

	stats, err := h.svc.Window(ctx, from, to)
	if err != nil {
		code := FromServiceError(err)
		switch code {
		case errcode.BadRequest:
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "invalid_range",
			})
		case errcode.NotFoundPrices:
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "prices_not_found",
			})
		default:
			h.logger.Error("Window failed",
				slog.String("op", "GetHistory"),
				slog.String("error", err.Error()),
			)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "internal_server_error",
			})
		}
	}

	resp := HistoryResponse{
		From:   stats.From,
		To:     stats.To,
		Min:    makePoint(stats.Min),
		Max:    makePoint(stats.Max),
		Points: make([]Point, 0, len(stats.Points)),
	}
	for _, p := range stats.Points {
		resp.Points = append(resp.Points, makePoint(p))
	}
	return c.JSON(http.StatusOK, resp)
}
