package store

import (
	"context"
	"errors"
)

// Keys persisted by the client.
const (
	KeyToken   = "token"
	KeyIsShown = "@is_shown"
)

var ErrorNotFound = errors.New("not found")

// KV определяет локальное хранилище ключ-значение
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
