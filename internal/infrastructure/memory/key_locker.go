package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain"
)

var _ ledger.KeyLocker = (*KeyLocker)(nil)

// KeyLocker bloqueo por clave dentro del proceso (sin Redis).
type KeyLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewKeyLocker construye el locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{held: map[string]bool{}}
}

// Obtain toma la clave sin esperar; si ya está tomada devuelve domain.ErrConflict.
func (l *KeyLocker) Obtain(_ context.Context, key string) (ledger.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, fmt.Errorf("clave %s en uso: %w", key, domain.ErrConflict)
	}
	l.held[key] = true
	return &localLock{l: l, key: key}, nil
}

type localLock struct {
	l    *KeyLocker
	key  string
	once sync.Once
}

func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		k.l.mu.Lock()
		delete(k.l.held, k.key)
		k.l.mu.Unlock()
	})
	return nil
}
