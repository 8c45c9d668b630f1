package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// InventoryTransactionRepository log de movimientos de inventario (solo se agrega).
type InventoryTransactionRepository interface {
	// AppendAndApply inserta la transacción y suma QuantityChange a la cantidad del insumo
	// (quantity = quantity + change). Devuelve domain.ErrNotFound si el insumo no existe.
	AppendAndApply(ctx context.Context, tx *entity.InventoryTransaction) error
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.InventoryTransaction, error)
	// ListByItem ordena del más reciente al más antiguo.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryTransaction, error)
}
