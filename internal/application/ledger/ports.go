package ledger

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

// TxRunner ejecuta el borrado y la inserción del día en una sola transacción.
type TxRunner interface {
	RunLedger(ctx context.Context, fn func(sales repository.SaleRecordRepository) error) error
}

// Lock bloqueo obtenido con KeyLocker.
type Lock interface {
	Release(ctx context.Context) error
}

// KeyLocker bloqueo por clave sin espera. Clave tomada: domain.ErrConflict; cualquier otro error
// significa que el backend no está disponible y el guardado continúa sin bloqueo.
type KeyLocker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

// AccessChecker verificación de acceso por módulo; *domain.AccessDeniedError si se deniega.
type AccessChecker interface {
	Authorize(ctx context.Context, userID, photocopierID string, module entity.Module, minRole *entity.Role) error
}

// Deductor descuento de inventario posterior al guardado.
type Deductor interface {
	DeductForSales(ctx context.Context, in inventory.DeductionInput) (*inventory.DeductionResult, error)
}
