package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// CreateInventoryItemRequest body para POST /api/businesses/:businessId/inventory/items.
type CreateInventoryItemRequest struct {
	SupplyName        string          `json:"supply_name" validate:"required,max=120"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ThresholdQuantity decimal.Decimal `json:"threshold_quantity"`
	UnitType          string          `json:"unit_type" validate:"omitempty,oneof=pieza bloque hoja"`
	SheetsPerBlock    *int            `json:"sheets_per_block,omitempty" validate:"omitempty,min=1"`
}

// RegisterTransactionRequest body para POST /api/inventory/items/:itemId/transactions.
type RegisterTransactionRequest struct {
	Type           string           `json:"type" validate:"required,oneof=purchase adjustment"`
	QuantityChange decimal.Decimal  `json:"quantity_change"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Note           string           `json:"note,omitempty" validate:"max=255"`
}

// InventoryItemDTO insumo en respuestas.
type InventoryItemDTO struct {
	ID                string          `json:"id"`
	BusinessID        string          `json:"business_id"`
	SupplyName        string          `json:"supply_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ThresholdQuantity decimal.Decimal `json:"threshold_quantity"`
	UnitType          string          `json:"unit_type"`
	SheetsPerBlock    *int            `json:"sheets_per_block,omitempty"`
	IsLowStock        bool            `json:"is_low_stock"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// InventoryViewDTO respuesta de GET /api/businesses/:businessId/inventory.
type InventoryViewDTO struct {
	Items    []InventoryItemDTO `json:"items"`
	LowStock []InventoryItemDTO `json:"low_stock"`
}

// InventoryTransactionDTO movimiento en respuestas.
type InventoryTransactionDTO struct {
	ID              string           `json:"id"`
	InventoryItemID string           `json:"inventory_item_id"`
	Type            string           `json:"type"`
	QuantityChange  decimal.Decimal  `json:"quantity_change"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Note            string           `json:"note,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ReplenishmentSuggestionDTO sugerencia de compra para un insumo bajo su umbral.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	SupplyName         string          `json:"supply_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	Threshold          decimal.Decimal `json:"threshold"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // Threshold * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// ToInventoryItemDTO mapea la entidad.
func ToInventoryItemDTO(it *entity.InventoryItem) InventoryItemDTO {
	return InventoryItemDTO{
		ID:                it.ID,
		BusinessID:        it.BusinessID,
		SupplyName:        it.SupplyName,
		Quantity:          it.Quantity,
		UnitCost:          it.UnitCost,
		ThresholdQuantity: it.ThresholdQuantity,
		UnitType:          it.UnitType,
		SheetsPerBlock:    it.SheetsPerBlock,
		IsLowStock:        it.IsLowStock(),
		UpdatedAt:         it.UpdatedAt,
	}
}

// ToInventoryTransactionDTO mapea la entidad.
func ToInventoryTransactionDTO(t *entity.InventoryTransaction) InventoryTransactionDTO {
	return InventoryTransactionDTO{
		ID:              t.ID,
		InventoryItemID: t.InventoryItemID,
		Type:            t.Type,
		QuantityChange:  t.QuantityChange,
		UnitCost:        t.UnitCost,
		Note:            t.Note,
		ReferenceType:   t.ReferenceType,
		ReferenceID:     t.ReferenceID,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
	}
}
