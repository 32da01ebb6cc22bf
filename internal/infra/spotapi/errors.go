package spotapi

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout - запрос не уложился в настроенные тайм-ауты
	ErrTimeout = errors.New("spot api timeout")
	// ErrTransport - сетевой сбой: DNS, отказ соединения, обрыв
	ErrTransport = errors.New("spot api transport failure")
)

// StatusError - API ответил, но не кодом 200
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spot api returned status %d", e.Code)
}
