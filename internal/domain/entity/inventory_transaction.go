package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de inventario.
const (
	TransactionPurchase   = "purchase"
	TransactionSale       = "sale"
	TransactionAdjustment = "adjustment"
)

// Referencias de origen.
const (
	ReferenceDailySale = "daily_sale"
	ReferenceManual    = "manual"
)

// InventoryTransaction movimiento firmado, solo se agrega. Es el único escritor de InventoryItem.Quantity.
type InventoryTransaction struct {
	ID              string
	InventoryItemID string
	Type            string
	QuantityChange  decimal.Decimal // positivo entrada, negativo salida
	UnitCost        *decimal.Decimal
	Note            string
	ReferenceType   string
	ReferenceID     string
	CreatedBy       string
	CreatedAt       time.Time
}

// DailySaleReference referencia de las deducciones de una fotocopiadora en un día.
func DailySaleReference(photocopierID string, date time.Time) string {
	return photocopierID + ":" + FormatDate(date)
}
