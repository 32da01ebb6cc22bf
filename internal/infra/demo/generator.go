// Package demo подменяет spot-hinta.fi синтетическими ценами.
// Полезен для локальной разработки без сети и для выходных API.
package demo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"log/slog"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

type Generator struct {
	delay time.Duration
	loc   *time.Location
	log   *slog.Logger

	mu  sync.Mutex // rand.Rand не потокобезопасен, а today и week идут параллельно
	rnd *rand.Rand
}

// NewGenerator - delay имитирует сетевую задержку реального API
func NewGenerator(delay time.Duration, loc *time.Location, log *slog.Logger) *Generator {
	return &Generator{
		delay: delay,
		loc:   loc,
		log:   log,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchToday — сутки текущего дня плюс 12 "опубликованных" завтрашних часов
func (g *Generator) FetchToday(ctx context.Context) (domain.PriceSeries, error) {
	if err := g.sleep(ctx); err != nil {
		return domain.PriceSeries{}, err
	}
	now := time.Now().In(g.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc)
	g.log.Debug("demo: generated today series")
	return g.series(start, 36), nil
}

// FetchWeek — прошедшие семь суток по часам
func (g *Generator) FetchWeek(ctx context.Context) (domain.PriceSeries, error) {
	if err := g.sleep(ctx); err != nil {
		return domain.PriceSeries{}, err
	}
	now := time.Now().In(g.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc).AddDate(0, 0, -7)
	g.log.Debug("demo: generated week series")
	return g.series(start, 7*24), nil
}

func (g *Generator) sleep(ctx context.Context) error {
	if g.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.delay):
		return nil
	}
}

func (g *Generator) series(start time.Time, hours int) domain.PriceSeries {
	g.mu.Lock()
	defer g.mu.Unlock()

	points := make([]domain.PricePoint, 0, hours)
	for i := 0; i < hours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		jitter := g.rnd.Float64()*30 - 15
		points = append(points, domain.PricePoint{
			Time:      ts,
			TimeKnown: true,
			EurPerMWh: basePrice(ts.Hour()) + jitter,
		})
	}
	return domain.NewSeries(points)
}

// basePrice — суточный профиль в EUR/MWh: дешёвая ночь, утренний и вечерний пики
func basePrice(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 10:
		return 90
	case hour >= 17 && hour <= 20:
		return 110
	case hour >= 23 || hour <= 5:
		return 25
	default:
		return 55
	}
}
