package errcode

type Code string

const (
	SeriesPending  Code = "SERIES_PENDING"
	SeriesFailed   Code = "SERIES_FAILED"
	NotFoundSeries Code = "NOT_FOUND_SERIES"
	NotFoundPrices Code = "NOT_FOUND_PRICES"

	BadRequest Code = "BAD_REQUEST"
	Internal   Code = "INTERNAL_ERROR"
)
