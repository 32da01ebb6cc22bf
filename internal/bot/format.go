package bot

import (
	"fmt"
	"strings"

	"github.com/sahkoseuranta/spothinta-service/internal/domain"
	"github.com/sahkoseuranta/spothinta-service/internal/pkg/botfmt"
)

// formatOverview — сообщение о текущей цене для /price и автосводок
func formatOverview(ov Overview) string {
	var b strings.Builder
	if ov.HasCurrent {
		b.WriteString(fmt.Sprintf("Сейчас: %s snt/kWh (%s EUR/MWh)\n",
			humanPrice(ov.Current.SntPerKWh()),
			humanPrice(ov.Current.EurPerMWh),
		))
	} else {
		b.WriteString("Текущая цена недоступна\n")
	}
	if ov.HasRange {
		// MinToday/MaxToday хранятся в EUR/MWh, пользователю показываем snt/kWh
		b.WriteString(fmt.Sprintf("Минимальная за сегодня: %s snt/kWh\n", humanPrice(ov.MinToday/10)))
		b.WriteString(fmt.Sprintf("Максимальная за сегодня: %s snt/kWh\n", humanPrice(ov.MaxToday/10)))
	}
	b.WriteString("Обновлено: " + ov.At.Format("15:04:05"))
	return b.String()
}

// buildTodayMessage — список часовых цен на сегодня для /today
func buildTodayMessage(points []domain.PricePoint) string {
	var b strings.Builder
	b.WriteString("Цены на сегодня:\n")
	for _, p := range points {
		b.WriteString(botfmt.FormatPriceLine(p))
		b.WriteByte('\n')
	}
	return b.String()
}

// humanPrice — форматирование числа с двумя знаками после запятой.
func humanPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
