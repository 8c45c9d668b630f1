package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)
var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryItemRepo insumos por negocio (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const inventoryItemColumns = `id, business_id, supply_name, quantity, unit_cost, threshold_quantity,
	unit_type, sheets_per_block, created_at, updated_at`

func scanInventoryItem(row interface{ Scan(...any) error }) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.BusinessID, &it.SupplyName, &it.Quantity, &it.UnitCost, &it.ThresholdQuantity,
		&it.UnitType, &it.SheetsPerBlock, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un insumo nuevo con cantidad inicial.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_items (` + inventoryItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.BusinessID, item.SupplyName, item.Quantity, item.UnitCost, item.ThresholdQuantity,
		item.UnitType, item.SheetsPerBlock, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un insumo; nil, nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryItemColumns + ` FROM inventory_items WHERE id = $1`
	it, err := scanInventoryItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// FindByName el insumo más antiguo con ese nombre.
func (r *InventoryItemRepo) FindByName(ctx context.Context, businessID, supplyName string) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryItemColumns + ` FROM inventory_items
		WHERE business_id = $1 AND supply_name = $2
		ORDER BY created_at, id LIMIT 1`
	it, err := scanInventoryItem(r.q.QueryRow(ctx, query, businessID, supplyName))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find inventory item: %w", err)
	}
	return it, nil
}

// ListByBusiness insumos del negocio por fecha de creación.
func (r *InventoryItemRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryItemColumns + ` FROM inventory_items
		WHERE business_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryItem
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateUnitCost actualiza el costo promedio.
func (r *InventoryItemRepo) UpdateUnitCost(ctx context.Context, id string, unitCost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE inventory_items SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, unitCost)
	if err != nil {
		return fmt.Errorf("update unit cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el insumo; sus transacciones caen por ON DELETE CASCADE.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

// InventoryTransactionRepo log de movimientos (usable con pool o tx).
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

const inventoryTxColumns = `id, inventory_item_id, type, quantity_change, unit_cost, note,
	reference_type, reference_id, created_by, created_at`

// AppendAndApply suma el cambio de forma aditiva y registra la transacción.
// Fuera de un TxRunner los dos statements no son atómicos.
func (r *InventoryTransactionRepo) AppendAndApply(ctx context.Context, tx *entity.InventoryTransaction) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET quantity = quantity + $2, updated_at = now() WHERE id = $1`,
		tx.InventoryItemID, tx.QuantityChange,
	)
	if err != nil {
		return fmt.Errorf("apply inventory change: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insumo %s: %w", tx.InventoryItemID, domain.ErrNotFound)
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (` + inventoryTxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		tx.ID, tx.InventoryItemID, tx.Type, tx.QuantityChange, tx.UnitCost, nullIfEmpty(tx.Note),
		nullIfEmpty(tx.ReferenceType), nullIfEmpty(tx.ReferenceID), tx.CreatedBy, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory transaction: %w", err)
	}
	return nil
}

// ListByReference transacciones de un origen (p. ej. daily_sale pc:fecha) en orden de registro.
func (r *InventoryTransactionRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + inventoryTxColumns + ` FROM inventory_transactions
		WHERE reference_type = $1 AND reference_id = $2 ORDER BY created_at, id`
	return r.list(ctx, query, referenceType, referenceID)
}

// ListByItem más reciente primero.
func (r *InventoryTransactionRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + inventoryTxColumns + ` FROM inventory_transactions
		WHERE inventory_item_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, itemID, limit, offset)
}

func (r *InventoryTransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryTransaction
	for rows.Next() {
		var t entity.InventoryTransaction
		var note, refType, refID *string
		if err := rows.Scan(
			&t.ID, &t.InventoryItemID, &t.Type, &t.QuantityChange, &t.UnitCost, &note,
			&refType, &refID, &t.CreatedBy, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		t.Note, t.ReferenceType, t.ReferenceID = derefString(note), derefString(refType), derefString(refID)
		out = append(out, &t)
	}
	return out, rows.Err()
}
