package httptransport

import (
	"errors"

	"github.com/sahkoseuranta/spothinta-service/internal/ports/errcode"
	"github.com/sahkoseuranta/spothinta-service/internal/service/prices"
)

func FromServiceError(err error) errcode.Code {
	switch {
	case errors.Is(err, prices.ErrSeriesPending):
		return errcode.SeriesPending
	case errors.Is(err, prices.ErrSeriesFailed):
		return errcode.SeriesFailed
	case errors.Is(err, prices.ErrUnknownKind),
		errors.Is(err, prices.ErrNoData):
		return errcode.NotFoundSeries
	case errors.Is(err, prices.ErrPriceNotFound):
		return errcode.NotFoundPrices
	case errors.Is(err, prices.ErrBadRange):
		return errcode.BadRequest
	default:
		return errcode.Internal
	}
}
