package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain"
)

var _ ledger.KeyLocker = (*KeyLocker)(nil)

// KeyLocker bloqueo distribuido sin espera sobre redislock.
type KeyLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewKeyLocker ttl acota cuánto puede quedar tomada una clave si el proceso muere.
func NewKeyLocker(client redislock.RedisClient, ttl time.Duration) *KeyLocker {
	return &KeyLocker{client: redislock.New(client), ttl: ttl}
}

// Obtain intenta una sola vez. Clave tomada: domain.ErrConflict.
func (l *KeyLocker) Obtain(ctx context.Context, key string) (ledger.Lock, error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("clave %s en uso: %w", key, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lock, nil
}
