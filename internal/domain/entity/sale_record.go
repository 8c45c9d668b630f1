package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleKind tipo de línea de venta.
type SaleKind string

const (
	SaleKindService   SaleKind = "service"
	SaleKindSupply    SaleKind = "supply"
	SaleKindProcedure SaleKind = "procedure"
)

// Valid informa si el tipo es conocido.
func (k SaleKind) Valid() bool {
	switch k {
	case SaleKindService, SaleKindSupply, SaleKindProcedure:
		return true
	}
	return false
}

// SaleRecord foto inmutable de una línea vendida en un día para una fotocopiadora.
// Solo la crea el escritor del libro; se reemplaza completa por clave (dueño, fotocopiadora, fecha).
type SaleRecord struct {
	ID              string
	OwnerID         string
	BusinessID      string
	PhotocopierID   string
	Date            time.Time
	Kind            SaleKind
	ItemKey         string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Total           decimal.Decimal // Quantity * UnitPrice
	PreviousCounter *int            // solo servicios
	CurrentCounter  *int
	ErrorCount      *int
	StartStock      *decimal.Decimal // solo insumos
	EndStock        *decimal.Decimal
	CreatedBy       string
	CreatedAt       time.Time
}

// SaleKey clave del libro diario.
type SaleKey struct {
	OwnerID       string
	PhotocopierID string
	Date          time.Time
}

// ProcedureEntry trámite contado por unidad (kind procedure).
type ProcedureEntry struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}
