package repository

import "errors"

// ErrNotFound - в хранилище нет подходящих строк
var ErrNotFound = errors.New("not found")
