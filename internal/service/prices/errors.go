package prices

import "errors"

var (
	ErrUnknownKind   = errors.New("unknown series kind")
	ErrNoData        = errors.New("series not requested yet")
	ErrSeriesPending = errors.New("series is still loading")
	ErrSeriesFailed  = errors.New("series fetch failed")
	ErrPriceNotFound = errors.New("price not found")
	ErrBadRange      = errors.New("invalid time range")
)
