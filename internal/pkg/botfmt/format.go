package botfmt

import (
	"fmt"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
)

// FormatPriceLine — строка по одной часовой точке для списков /today
func FormatPriceLine(p domain.PricePoint) string {
	if !p.TimeKnown {
		return fmt.Sprintf("??:?? | %s snt/kWh (%s EUR/MWh)",
			humanPrice(p.SntPerKWh()),
			humanPrice(p.EurPerMWh),
		)
	}
	return fmt.Sprintf("%s | %s snt/kWh (%s EUR/MWh)",
		p.Time.Format("Mon 15:04"),
		humanPrice(p.SntPerKWh()),
		humanPrice(p.EurPerMWh),
	)
}

// humanPrice — форматирование числа с двумя знаками после запятой.
func humanPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
