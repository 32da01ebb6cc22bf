package domain

import (
	"fmt"
	"sort"
	"time"
)

// PricePoint - цена одного часа на спотовом рынке электроэнергии
type PricePoint struct {
	Time      time.Time `json:"time"`        // Начало часа (с зоной рынка)
	TimeKnown bool      `json:"time_known"`  // false, если метка времени не распозналась
	EurPerMWh float64   `json:"eur_per_mwh"` // Цена с налогом, EUR за мегаватт-час
}

// HourOfDay возвращает час точки (0-23). Для точки без метки времени - 0.
func (p PricePoint) HourOfDay() int {
	if !p.TimeKnown {
		return 0
	}
	return p.Time.Hour()
}

// DayOfYear возвращает порядковый день года (1-366).
// Для точки без метки времени - сигнальное значение -1.
func (p PricePoint) DayOfYear() int {
	if !p.TimeKnown {
		return -1
	}
	return p.Time.YearDay()
}

// Label - короткая подпись точки для вывода: день недели и время
func (p PricePoint) Label() string {
	if !p.TimeKnown {
		return "unknown"
	}
	return p.Time.Format("Mon 15:04")
}

// SntPerKWh переводит цену в центы за киловатт-час (как в счетах)
func (p PricePoint) SntPerKWh() float64 {
	return p.EurPerMWh / 10
}

// String реализует fmt.Stringer для логов
func (p PricePoint) String() string {
	return fmt.Sprintf("%s %.2f EUR/MWh", p.Label(), p.EurPerMWh)
}

// PriceSeries - набор часовых точек одного запроса.
// Серия владеет своими точками: наружу отдаются только копии,
// поэтому сортировка и статистики не влияют на чужие срезы.
type PriceSeries struct {
	points []PricePoint
}

// NewSeries создаёт серию из копии переданных точек
func NewSeries(points []PricePoint) PriceSeries {
	cp := make([]PricePoint, len(points))
	copy(cp, points)
	return PriceSeries{points: cp}
}

// Len возвращает количество точек в серии
func (s PriceSeries) Len() int {
	return len(s.points)
}

// Points возвращает копию точек серии
func (s PriceSeries) Points() []PricePoint {
	cp := make([]PricePoint, len(s.points))
	copy(cp, s.points)
	return cp
}

// SortedByTime возвращает новую серию, отсортированную по времени по возрастанию.
// Сортировка устойчивая: равные метки (в том числе нераспознанные) сохраняют
// исходный порядок, повторный вызов даёт тот же результат.
func (s PriceSeries) SortedByTime() PriceSeries {
	cp := s.Points()
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].Time.Before(cp[j].Time)
	})
	return PriceSeries{points: cp}
}

// MinPrice возвращает минимальную цену серии. Второй результат false для пустой серии.
func (s PriceSeries) MinPrice() (float64, bool) {
	if len(s.points) == 0 {
		return 0, false
	}
	min := s.points[0].EurPerMWh
	for _, p := range s.points[1:] {
		if p.EurPerMWh < min {
			min = p.EurPerMWh
		}
	}
	return min, true
}

// MaxPrice возвращает максимальную цену серии. Второй результат false для пустой серии.
func (s PriceSeries) MaxPrice() (float64, bool) {
	if len(s.points) == 0 {
		return 0, false
	}
	max := s.points[0].EurPerMWh
	for _, p := range s.points[1:] {
		if p.EurPerMWh > max {
			max = p.EurPerMWh
		}
	}
	return max, true
}

// CurrentPoint ищет точку текущего часа: совпадать должны и час, и день года.
// Точки без метки времени (день года -1) никогда не совпадают с настоящим моментом.
func (s PriceSeries) CurrentPoint(now time.Time) (PricePoint, bool) {
	for _, p := range s.points {
		if p.DayOfYear() == now.YearDay() && p.HourOfDay() == now.Hour() {
			return p, true
		}
	}
	return PricePoint{}, false
}

// ForDay возвращает точки указанного дня года (например, для сводки "сегодня")
func (s PriceSeries) ForDay(dayOfYear int) PriceSeries {
	var out []PricePoint
	for _, p := range s.points {
		if p.TimeKnown && p.DayOfYear() == dayOfYear {
			out = append(out, p)
		}
	}
	return PriceSeries{points: out}
}

// UnknownTimeCount возвращает число точек с нераспознанной меткой времени
func (s PriceSeries) UnknownTimeCount() int {
	n := 0
	for _, p := range s.points {
		if !p.TimeKnown {
			n++
		}
	}
	return n
}
