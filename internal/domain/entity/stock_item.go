package entity

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
)

// StockItem existencia inicial y final de un insumo en el día. No se arrastra al día siguiente.
type StockItem struct {
	StartStock decimal.Decimal `json:"start_stock"`
	EndStock   decimal.Decimal `json:"end_stock"`
}

// Sold cantidad vendida: max(0, start - end).
func (s StockItem) Sold() decimal.Decimal {
	sold := s.StartStock.Sub(s.EndStock)
	if sold.IsNegative() {
		return decimal.Zero
	}
	return sold
}

// Validate rechaza existencias negativas.
func (s StockItem) Validate() error {
	if s.StartStock.IsNegative() {
		return domain.Invalid("start_stock", "no puede ser negativo")
	}
	if s.EndStock.IsNegative() {
		return domain.Invalid("end_stock", "no puede ser negativo")
	}
	return nil
}
