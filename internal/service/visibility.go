package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-client/internal/store"
)

// Visibility is the persisted "show completed tasks" flag.
type Visibility struct {
	kv     store.KV
	logger *zap.Logger

	mu      sync.RWMutex
	isShown bool
}

func NewVisibility(kv store.KV, logger *zap.Logger) *Visibility {
	return &Visibility{kv: kv, logger: logger, isShown: true}
}

// Load reads the stored flag once at startup. Missing or unreadable values leave it true.
func (v *Visibility) Load(ctx context.Context) {
	raw, err := v.kv.Get(ctx, store.KeyIsShown)
	if err != nil {
		if !errors.Is(err, store.ErrorNotFound) {
			v.logger.Error("failed to load visibility", zap.Error(err))
		}
		return
	}

	var shown bool
	if err := json.Unmarshal([]byte(raw), &shown); err != nil {
		v.logger.Error("failed to parse visibility", zap.String("value", raw), zap.Error(err))
		return
	}

	v.mu.Lock()
	v.isShown = shown
	v.mu.Unlock()
}

func (v *Visibility) Get() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.isShown
}

// Toggle flips the flag, persists it and returns the new value.
func (v *Visibility) Toggle(ctx context.Context) bool {
	v.mu.Lock()
	v.isShown = !v.isShown
	shown := v.isShown
	v.mu.Unlock()

	v.persist(ctx, shown)
	return shown
}

func (v *Visibility) Set(ctx context.Context, shown bool) {
	v.mu.Lock()
	v.isShown = shown
	v.mu.Unlock()

	v.persist(ctx, shown)
}

// persist is best effort: failures are logged, never returned.
func (v *Visibility) persist(ctx context.Context, shown bool) {
	raw, _ := json.Marshal(shown)
	if err := v.kv.Set(ctx, store.KeyIsShown, string(raw)); err != nil {
		v.logger.Error("failed to save visibility", zap.Bool("is_shown", shown), zap.Error(err))
	}
}
