// Package sales convierte contadores, existencias y trámites del día en líneas de venta.
package sales

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// Input captura diaria de una fotocopiadora con sus precios.
type Input struct {
	OwnerID         string
	BusinessID      string
	PhotocopierID   string
	CreatedBy       string
	Date            time.Time
	Counters        map[entity.ServiceKey]entity.Counter
	StockItems      map[string]entity.StockItem
	Procedures      []entity.ProcedureEntry
	ServicePrices   map[entity.ServiceKey]decimal.Decimal
	SupplyPrices    map[string]decimal.Decimal
	ProcedurePrices map[string]decimal.Decimal
	Now             time.Time
}

// Validate revisa la forma de la captura (no los precios, que pueden completarse después).
func Validate(in Input) error {
	if in.PhotocopierID == "" {
		return domain.Invalid("photocopier_id", "selecciona una fotocopiadora")
	}
	if in.BusinessID == "" {
		return domain.Invalid("business_id", "requerido")
	}
	if in.Date.IsZero() {
		return domain.Invalid("date", "requerida")
	}
	for key, c := range in.Counters {
		if !key.Valid() {
			return domain.Invalid("counters", "servicio desconocido "+string(key))
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for name, s := range in.StockItems {
		if strings.TrimSpace(name) == "" {
			return domain.Invalid("stock_items", "nombre de insumo vacío")
		}
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, p := range in.Procedures {
		if strings.TrimSpace(p.Name) == "" {
			return domain.Invalid("procedures", "nombre de trámite vacío")
		}
		if p.Quantity < 0 {
			return domain.Invalid("procedures", "cantidad negativa en "+p.Name)
		}
	}
	return nil
}

// BuildRecords calcula las líneas del día. Solo se devuelven cantidades distintas de cero;
// el orden es estable: servicios según la tabla, luego insumos y trámites por nombre.
func BuildRecords(in Input) ([]entity.SaleRecord, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	date := entity.NormalizeDate(in.Date)
	var out []entity.SaleRecord

	base := func(kind entity.SaleKind, item string, qty, price decimal.Decimal) (entity.SaleRecord, error) {
		if qty.IsNegative() {
			return entity.SaleRecord{}, domain.Invalid(item, "cantidad calculada negativa")
		}
		if price.IsNegative() {
			return entity.SaleRecord{}, domain.Invalid(item, "precio negativo")
		}
		return entity.SaleRecord{
			OwnerID:       in.OwnerID,
			BusinessID:    in.BusinessID,
			PhotocopierID: in.PhotocopierID,
			Date:          date,
			Kind:          kind,
			ItemKey:       item,
			Quantity:      qty,
			UnitPrice:     price,
			Total:         qty.Mul(price).Round(2),
			CreatedBy:     in.CreatedBy,
			CreatedAt:     in.Now,
		}, nil
	}

	for _, key := range entity.ServiceKeys() {
		c, ok := in.Counters[key]
		if !ok || c.Sold() == 0 {
			continue
		}
		price, ok := in.ServicePrices[key]
		if !ok {
			return nil, domain.Invalid("service_prices", "falta precio para "+string(key))
		}
		item, _ := key.ItemKey()
		rec, err := base(entity.SaleKindService, item, decimal.NewFromInt(int64(c.Sold())), price)
		if err != nil {
			return nil, err
		}
		prev, cur, errs := c.Yesterday, c.Today, c.Errors
		rec.PreviousCounter, rec.CurrentCounter, rec.ErrorCount = &prev, &cur, &errs
		out = append(out, rec)
	}

	for _, name := range sortedKeys(in.StockItems) {
		s := in.StockItems[name]
		sold := s.Sold()
		if sold.IsZero() {
			continue
		}
		price, ok := in.SupplyPrices[name]
		if !ok {
			return nil, domain.Invalid("supply_prices", "falta precio para "+name)
		}
		rec, err := base(entity.SaleKindSupply, name, sold, price)
		if err != nil {
			return nil, err
		}
		start, end := s.StartStock, s.EndStock
		rec.StartStock, rec.EndStock = &start, &end
		out = append(out, rec)
	}

	for _, p := range mergeProcedures(in.Procedures) {
		if p.Quantity == 0 {
			continue
		}
		price, ok := in.ProcedurePrices[p.Name]
		if !ok {
			return nil, domain.Invalid("procedure_prices", "falta precio para "+p.Name)
		}
		rec, err := base(entity.SaleKindProcedure, p.Name, decimal.NewFromInt(int64(p.Quantity)), price)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// mergeProcedures suma trámites repetidos y los ordena por nombre.
func mergeProcedures(in []entity.ProcedureEntry) []entity.ProcedureEntry {
	byName := make(map[string]int, len(in))
	for _, p := range in {
		byName[strings.TrimSpace(p.Name)] += p.Quantity
	}
	out := make([]entity.ProcedureEntry, 0, len(byName))
	for _, name := range sortedKeys(byName) {
		out = append(out, entity.ProcedureEntry{Name: name, Quantity: byName[name]})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
