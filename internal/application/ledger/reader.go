package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/sales"
)

// DailySales captura reconstruida a partir de las líneas guardadas.
type DailySales struct {
	PhotocopierID string
	OwnerID       string
	Date          time.Time
	Counters      map[entity.ServiceKey]entity.Counter
	StockItems    map[string]entity.StockItem
	Procedures    []entity.ProcedureEntry
	Records       []*entity.SaleRecord
	Total         decimal.Decimal
}

// LoadDailySales reconstruye la captura del día (módulo copias, viewer). Los servicios sin línea
// salen en cero, igual que los insumos activos de la lista de precios.
func (s *Service) LoadDailySales(ctx context.Context, userID, photocopierID string, date time.Time) (*DailySales, error) {
	if photocopierID == "" || date.IsZero() {
		return nil, domain.Invalid("date", "fotocopiadora y fecha son requeridas")
	}
	if err := s.d.Access.Authorize(ctx, userID, photocopierID, entity.ModuleCopias, nil); err != nil {
		return nil, err
	}
	pc, err := s.photocopier(ctx, photocopierID)
	if err != nil {
		return nil, err
	}
	date = entity.NormalizeDate(date)
	records, err := s.d.SaleRepo.ListByKey(ctx, entity.SaleKey{OwnerID: pc.OwnerID, PhotocopierID: pc.ID, Date: date})
	if err != nil {
		return nil, domain.Persistence("list daily sales", err)
	}

	out := &DailySales{
		PhotocopierID: pc.ID,
		OwnerID:       pc.OwnerID,
		Date:          date,
		Counters:      make(map[entity.ServiceKey]entity.Counter, 4),
		StockItems:    map[string]entity.StockItem{},
		Procedures:    []entity.ProcedureEntry{},
		Records:       records,
		Total:         decimal.Zero,
	}
	for _, k := range entity.ServiceKeys() {
		out.Counters[k] = entity.Counter{}
	}
	if s.d.PriceRepo != nil {
		prices, err := s.d.PriceRepo.ListByBusiness(ctx, pc.BusinessID, true)
		if err != nil {
			return nil, domain.Persistence("list prices", err)
		}
		for _, p := range prices {
			if p.Kind == entity.SaleKindSupply {
				out.StockItems[p.ItemKey] = entity.StockItem{StartStock: decimal.Zero, EndStock: decimal.Zero}
			}
		}
	}

	for _, r := range records {
		out.Total = out.Total.Add(r.Total)
		switch r.Kind {
		case entity.SaleKindService:
			key, ok := entity.ServiceKeyFromItemKey(r.ItemKey)
			if !ok {
				s.log.Warn().Str("item_key", r.ItemKey).Str("record_id", r.ID).Msg("línea de servicio con clave desconocida")
				continue
			}
			out.Counters[key] = entity.Counter{
				Yesterday: derefInt(r.PreviousCounter),
				Today:     derefInt(r.CurrentCounter),
				Errors:    derefInt(r.ErrorCount),
			}
		case entity.SaleKindSupply:
			item := entity.StockItem{StartStock: decimal.Zero, EndStock: decimal.Zero}
			if r.StartStock != nil {
				item.StartStock = *r.StartStock
			}
			if r.EndStock != nil {
				item.EndStock = *r.EndStock
			}
			out.StockItems[r.ItemKey] = item
		case entity.SaleKindProcedure:
			out.Procedures = append(out.Procedures, entity.ProcedureEntry{Name: r.ItemKey, Quantity: int(r.Quantity.IntPart())})
		}
	}
	return out, nil
}

// ListHistory líneas guardadas entre from y to (módulo historial, viewer).
func (s *Service) ListHistory(ctx context.Context, userID, photocopierID string, from, to time.Time) ([]*entity.SaleRecord, error) {
	pc, err := s.authorizeRange(ctx, userID, photocopierID, entity.ModuleHistorial, from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.d.SaleRepo.ListByRange(ctx, pc.OwnerID, pc.ID, from, to)
	if err != nil {
		return nil, domain.Persistence("list sales history", err)
	}
	return records, nil
}

// Summary totales por día y por tipo entre from y to (módulo reportes, viewer). Solo lectura.
func (s *Service) Summary(ctx context.Context, userID, photocopierID string, from, to time.Time) (*sales.Summary, error) {
	pc, err := s.authorizeRange(ctx, userID, photocopierID, entity.ModuleReportes, from, to)
	if err != nil {
		return nil, err
	}
	records, err := s.d.SaleRepo.ListByRange(ctx, pc.OwnerID, pc.ID, from, to)
	if err != nil {
		return nil, domain.Persistence("list sales for summary", err)
	}
	values := make([]entity.SaleRecord, 0, len(records))
	for _, r := range records {
		values = append(values, *r)
	}
	sum := sales.Summarize(values)
	return &sum, nil
}

func (s *Service) authorizeRange(ctx context.Context, userID, photocopierID string, module entity.Module, from, to time.Time) (*entity.Photocopier, error) {
	if from.IsZero() || to.IsZero() {
		return nil, domain.Invalid("from", "rango de fechas requerido")
	}
	if to.Before(from) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	if err := s.d.Access.Authorize(ctx, userID, photocopierID, module, nil); err != nil {
		return nil, err
	}
	return s.photocopier(ctx, photocopierID)
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
