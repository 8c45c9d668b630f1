package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia de insumos por negocio.
// La cantidad no se escribe aquí: solo cambia vía InventoryTransactionRepository.AppendAndApply.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// FindByName devuelve el insumo más antiguo con ese nombre, o nil.
	FindByName(ctx context.Context, businessID, supplyName string) (*entity.InventoryItem, error)
	// ListByBusiness ordena por fecha de creación ascendente.
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.InventoryItem, error)
	UpdateUnitCost(ctx context.Context, id string, unitCost decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}
