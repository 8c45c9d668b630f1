package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)
var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryItemRepo insumos en memoria.
type InventoryItemRepo struct {
	s    *Store
	inTx bool
}

func (r *InventoryItemRepo) indexOf(id string) int {
	for i, it := range r.s.d.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Create persiste un insumo nuevo.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "inventory_items.create"); err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if r.indexOf(item.ID) >= 0 {
		return domain.ErrDuplicate
	}
	r.s.d.items = append(r.s.d.items, *item)
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "inventory_items.get_by_id"); err != nil {
		return nil, err
	}
	if i := r.indexOf(id); i >= 0 {
		it := r.s.d.items[i]
		return &it, nil
	}
	return nil, nil
}

// FindByName devuelve el insumo más antiguo con ese nombre.
func (r *InventoryItemRepo) FindByName(ctx context.Context, businessID, supplyName string) (*entity.InventoryItem, error) {
	items, err := r.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.SupplyName == supplyName {
			return it, nil
		}
	}
	return nil, nil
}

// ListByBusiness lista por fecha de creación ascendente (empates en orden de inserción).
func (r *InventoryItemRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "inventory_items.list_by_business"); err != nil {
		return nil, err
	}
	var out []*entity.InventoryItem
	for _, it := range r.s.d.items {
		if it.BusinessID == businessID {
			c := it
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateUnitCost actualiza el costo unitario.
func (r *InventoryItemRepo) UpdateUnitCost(ctx context.Context, id string, unitCost decimal.Decimal) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "inventory_items.update_unit_cost"); err != nil {
		return err
	}
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.s.d.items[i].UnitCost = unitCost
	r.s.d.items[i].UpdatedAt = time.Now()
	return nil
}

// Delete elimina el insumo y sus transacciones.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "inventory_items.delete"); err != nil {
		return err
	}
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.s.d.items = append(r.s.d.items[:i:i], r.s.d.items[i+1:]...)
	kept := r.s.d.txs[:0:0]
	for _, t := range r.s.d.txs {
		if t.InventoryItemID != id {
			kept = append(kept, t)
		}
	}
	r.s.d.txs = kept
	return nil
}

// InventoryTransactionRepo log de transacciones en memoria.
type InventoryTransactionRepo struct {
	s    *Store
	inTx bool
}

// AppendAndApply agrega la transacción y suma el cambio a la cantidad del insumo.
func (r *InventoryTransactionRepo) AppendAndApply(ctx context.Context, tx *entity.InventoryTransaction) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "inventory_transactions.append_and_apply"); err != nil {
		return err
	}
	items := &InventoryItemRepo{s: r.s}
	i := items.indexOf(tx.InventoryItemID)
	if i < 0 {
		return fmt.Errorf("insumo %s: %w", tx.InventoryItemID, domain.ErrNotFound)
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	r.s.d.txs = append(r.s.d.txs, *tx)
	r.s.d.items[i].Quantity = r.s.d.items[i].Quantity.Add(tx.QuantityChange)
	r.s.d.items[i].UpdatedAt = tx.CreatedAt
	return nil
}

// ListByReference transacciones con esa referencia, en orden de inserción.
func (r *InventoryTransactionRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.InventoryTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "inventory_transactions.list_by_reference"); err != nil {
		return nil, err
	}
	var out []*entity.InventoryTransaction
	for _, t := range r.s.d.txs {
		if t.ReferenceType == referenceType && t.ReferenceID == referenceID {
			c := t
			out = append(out, &c)
		}
	}
	return out, nil
}

// ListByItem del más reciente al más antiguo, paginado.
func (r *InventoryTransactionRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "inventory_transactions.list_by_item"); err != nil {
		return nil, err
	}
	var out []*entity.InventoryTransaction
	for i := len(r.s.d.txs) - 1; i >= 0; i-- {
		if t := r.s.d.txs[i]; t.InventoryItemID == itemID {
			out = append(out, &t)
		}
	}
	return paginate(out, limit, offset), nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
