package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// PriceListRepository lista de precios por negocio.
type PriceListRepository interface {
	// Upsert inserta o sobrescribe por (business, kind, item_key).
	Upsert(ctx context.Context, entry *entity.PriceListEntry) error
	ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]*entity.PriceListEntry, error)
}
