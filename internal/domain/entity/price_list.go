package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceListEntry precio vigente de un servicio, insumo o trámite en un negocio.
type PriceListEntry struct {
	ID         string
	BusinessID string
	Kind       SaleKind
	ItemKey    string // ServiceKey para servicios, nombre del insumo o trámite para el resto
	Price      decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
