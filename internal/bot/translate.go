package bot

import "errors"

// translateBotError — подбирает текст ответа пользователю по ошибке чтения цен.
func translateBotError(err error) string {
	switch {
	case errors.Is(err, ErrPricesPending):
		return "Цены ещё загружаются, попробуйте через минуту"
	case errors.Is(err, ErrPricesFailed):
		return "Не удалось получить цены от биржи, попробуйте позже"
	case errors.Is(err, ErrPricesNotFound):
		return "Данные о ценах не найдены"
	default:
		return "Внутренняя ошибка сервиса, попробуйте позже"
	}
}
