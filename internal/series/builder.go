// Package series превращает сырой ответ spot-hinta.fi в доменную серию цен.
package series

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

var (
	// ErrMalformedPayload - ответ целиком не является JSON-массивом
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMalformedElement - отдельный элемент массива не читается как точка цены
	ErrMalformedElement = errors.New("malformed element")
)

// apiPoint — структура для парсинга одного элемента ответа spot-hinta.fi.
// Поля указательные: так отличаем отсутствующее поле от нулевого значения.
type apiPoint struct {
	DateTime     *string  `json:"DateTime"`
	PriceWithTax *float64 `json:"PriceWithTax"`
}

// Цена API приходит в центах за кВт·ч, домен считает в EUR за МВт·ч
const centsPerKWhToEurPerMWh = 10.0

// Build разбирает тело ответа API в серию часовых цен.
//
// Ошибка формата любого элемента прерывает разбор целиком: частичных серий
// не бывает. Единственное исключение - нечитаемая метка времени, такая точка
// попадает в серию с TimeKnown=false и сигнальными часом/днём года.
func Build(raw []byte) (domain.PriceSeries, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	// документ "null" декодируется в nil-срез без ошибки, но массивом не является
	if elems == nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: top-level null", ErrMalformedPayload)
	}

	points := make([]domain.PricePoint, 0, len(elems))
	for i, el := range elems {
		var ap apiPoint
		if err := json.Unmarshal(el, &ap); err != nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: index %d: %v", ErrMalformedElement, i, err)
		}
		if ap.DateTime == nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: index %d: missing DateTime", ErrMalformedElement, i)
		}
		if ap.PriceWithTax == nil {
			return domain.PriceSeries{}, fmt.Errorf("%w: index %d: missing PriceWithTax", ErrMalformedElement, i)
		}

		price := *ap.PriceWithTax * centsPerKWhToEurPerMWh
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return domain.PriceSeries{}, fmt.Errorf("%w: index %d: price is not finite", ErrMalformedElement, i)
		}

		point := domain.PricePoint{EurPerMWh: price}
		if ts, err := time.Parse(time.RFC3339, *ap.DateTime); err == nil {
			point.Time = ts
			point.TimeKnown = true
		}
		points = append(points, point)
	}

	return domain.NewSeries(points), nil
}
