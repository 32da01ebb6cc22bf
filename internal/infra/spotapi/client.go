package spotapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/sahkoseuranta/spothinta-service/internal/config"
	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/series"
)

// Client ходит в открытый API spot-hinta.fi за спотовыми ценами
type Client struct {
	cfg        config.SpotAPIConfig
	httpClient *http.Client
}

// NewClient - создаёт клиента с раздельными тайм-аутами на соединение и чтение
func NewClient(cfg config.SpotAPIConfig) *Client {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
			Transport: transport,
		},
	}
}

// FetchToday — цены сегодняшнего дня и, после публикации, завтрашнего
func (c *Client) FetchToday(ctx context.Context) (domain.PriceSeries, error) {
	raw, err := c.get(ctx, c.cfg.TodayPath)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	return series.Build(raw)
}

// FetchWeek — цены последних семи дней
func (c *Client) FetchWeek(ctx context.Context) (domain.PriceSeries, error) {
	raw, err := c.get(ctx, c.cfg.WeekPath)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	return series.Build(raw)
}

// get выполняет GET и возвращает сырое тело ответа.
// Успехом считается ровно статус 200, любой другой - StatusError.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path, _ = url.JoinPath(u.Path, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	ua := c.cfg.UserAgent
	if ua == "" {
		ua = "spothinta-service/1.0 (+https://github.com/sahkoseuranta/spothinta-service)"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}
	return body, nil
}

// classify разводит сетевые сбои по двум ведрам: тайм-аут и всё остальное
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
