package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unidades de inventario habituales.
const (
	UnitTypePiece = "pieza"
	UnitTypeBlock = "bloque"
	UnitTypeSheet = "hoja"
)

// InventoryItem insumo compartido de un negocio. Quantity es el acumulado de sus transacciones
// (caché materializada); solo cambia al aplicar una InventoryTransaction.
type InventoryItem struct {
	ID                string
	BusinessID        string
	SupplyName        string
	Quantity          decimal.Decimal // puede ser negativo
	UnitCost          decimal.Decimal
	ThresholdQuantity decimal.Decimal
	UnitType          string
	SheetsPerBlock    *int // solo papel: hojas por bloque
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock quantity < threshold.
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity.LessThan(i.ThresholdQuantity)
}
