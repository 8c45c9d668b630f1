package inventory

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la transacción y el cambio de cantidad se apliquen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		txs repository.InventoryTransactionRepository,
	) error) error
}

// BusinessAuthorizer verifica el rol del usuario en un negocio.
// Devuelve *domain.AccessDeniedError si no alcanza minRole.
type BusinessAuthorizer interface {
	AuthorizeBusiness(ctx context.Context, userID, businessID string, minRole entity.Role) error
}
