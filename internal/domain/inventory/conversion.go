package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// TotalSheetsUsed Σ (sold + errors) de todos los contadores: las hojas de error también se consumen.
func TotalSheetsUsed(counters map[entity.ServiceKey]entity.Counter) int {
	total := 0
	for _, c := range counters {
		total += c.SheetsUsed()
	}
	return total
}

// SheetsToBlocks convierte hojas a bloques sin redondear (1250 hojas / 500 = 2.5 bloques).
// Si el insumo no define hojas por bloque, la cantidad se descuenta en hojas.
func SheetsToBlocks(sheets int, sheetsPerBlock *int) decimal.Decimal {
	qty := decimal.NewFromInt(int64(sheets))
	if sheetsPerBlock == nil || *sheetsPerBlock <= 0 {
		return qty
	}
	return qty.Div(decimal.NewFromInt(int64(*sheetsPerBlock)))
}
