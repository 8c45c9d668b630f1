package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// SaveDailySalesRequest body para PUT /api/photocopiers/:photocopierId/sales/:date.
// Las claves de counters son colorCopies, bwCopies, colorPrints y bwPrints.
// Los precios omitidos se toman de la lista de precios del negocio.
type SaveDailySalesRequest struct {
	BusinessID      string                     `json:"business_id" validate:"required"`
	Counters        map[string]entity.Counter   `json:"counters"`
	StockItems      map[string]entity.StockItem `json:"stock_items,omitempty"`
	Procedures      []entity.ProcedureEntry     `json:"procedures,omitempty" validate:"dive"`
	ServicePrices   map[string]decimal.Decimal  `json:"service_prices,omitempty"`
	SupplyPrices    map[string]decimal.Decimal  `json:"supply_prices,omitempty"`
	ProcedurePrices map[string]decimal.Decimal  `json:"procedure_prices,omitempty"`
	DeductInventory *bool                       `json:"deduct_inventory,omitempty"`
}

// SaleRecordDTO línea del libro en respuestas.
type SaleRecordDTO struct {
	ID              string           `json:"id"`
	Date            string           `json:"date"`
	Kind            string           `json:"kind"`
	ItemKey         string           `json:"item_key"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Total           decimal.Decimal  `json:"total"`
	PreviousCounter *int             `json:"previous_counter,omitempty"`
	CurrentCounter  *int             `json:"current_counter,omitempty"`
	ErrorCount      *int             `json:"error_count,omitempty"`
	StartStock      *decimal.Decimal `json:"start_stock,omitempty"`
	EndStock        *decimal.Decimal `json:"end_stock,omitempty"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// SaveDailySalesResponse resultado del guardado. InventoryWarning indica que la venta quedó
// guardada pero el descuento de inventario falló.
type SaveDailySalesResponse struct {
	Records          []SaleRecordDTO `json:"records"`
	Total            decimal.Decimal `json:"total"`
	SheetsUsed       int             `json:"sheets_used"`
	InventoryApplied int             `json:"inventory_applied"`
	InventorySkipped []string        `json:"inventory_skipped,omitempty"`
	InventoryWarning string          `json:"inventory_warning,omitempty"`
}

// DailySalesResponse captura reconstruida de GET /api/photocopiers/:photocopierId/sales/:date.
type DailySalesResponse struct {
	PhotocopierID string                      `json:"photocopier_id"`
	Date          string                      `json:"date"`
	Counters      map[string]entity.Counter   `json:"counters"`
	StockItems    map[string]entity.StockItem `json:"stock_items"`
	Procedures    []entity.ProcedureEntry     `json:"procedures"`
	Records       []SaleRecordDTO             `json:"records"`
	Total         decimal.Decimal             `json:"total"`
}

// HistoryResponse líneas en un rango de fechas.
type HistoryResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Records []SaleRecordDTO `json:"records"`
	Total   decimal.Decimal `json:"total"`
}

// DaySummaryDTO totales de un día.
type DaySummaryDTO struct {
	Date   string                     `json:"date"`
	ByKind map[string]decimal.Decimal `json:"by_kind"`
	Total  decimal.Decimal            `json:"total"`
}

// SummaryResponse respuesta de GET /api/photocopiers/:photocopierId/reports/summary.
type SummaryResponse struct {
	From   string                     `json:"from"`
	To     string                     `json:"to"`
	Days   []DaySummaryDTO            `json:"days"`
	ByKind map[string]decimal.Decimal `json:"by_kind"`
	Total  decimal.Decimal            `json:"total"`
}

// RolloverRequest body para POST /api/devices/:deviceId/rollover.
type RolloverRequest struct {
	Counters map[string]entity.Counter `json:"counters"`
}

// RolloverResponse contadores que debe mostrar la captura.
type RolloverResponse struct {
	Rolled         bool                      `json:"rolled"`
	Date           string                    `json:"date"`
	Counters       map[string]entity.Counter `json:"counters"`
	DiscardedToday int                       `json:"discarded_today"`
}

// ToSaleRecordDTO mapea la entidad.
func ToSaleRecordDTO(r *entity.SaleRecord) SaleRecordDTO {
	return SaleRecordDTO{
		ID:              r.ID,
		Date:            entity.FormatDate(r.Date),
		Kind:            string(r.Kind),
		ItemKey:         r.ItemKey,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		Total:           r.Total,
		PreviousCounter: r.PreviousCounter,
		CurrentCounter:  r.CurrentCounter,
		ErrorCount:      r.ErrorCount,
		StartStock:      r.StartStock,
		EndStock:        r.EndStock,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
	}
}

// ToSaleRecordDTOs mapea una lista.
func ToSaleRecordDTOs(records []*entity.SaleRecord) []SaleRecordDTO {
	out := make([]SaleRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, ToSaleRecordDTO(r))
	}
	return out
}

// CountersToJSON claves de servicio como texto.
func CountersToJSON(in map[entity.ServiceKey]entity.Counter) map[string]entity.Counter {
	out := make(map[string]entity.Counter, len(in))
	for k, c := range in {
		out[string(k)] = c
	}
	return out
}
