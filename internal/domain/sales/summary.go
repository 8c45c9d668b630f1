package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// DaySummary totales de un día.
type DaySummary struct {
	Date   time.Time
	ByKind map[entity.SaleKind]decimal.Decimal
	Total  decimal.Decimal
}

// Summary totales de un rango, por día y por tipo.
type Summary struct {
	Days   []DaySummary
	ByKind map[entity.SaleKind]decimal.Decimal
	Total  decimal.Decimal
}

// Summarize agrega registros de venta (solo lectura). Los días salen en orden ascendente.
func Summarize(records []entity.SaleRecord) Summary {
	days := map[time.Time]*DaySummary{}
	sum := Summary{ByKind: map[entity.SaleKind]decimal.Decimal{}, Total: decimal.Zero}
	for _, r := range records {
		d := entity.NormalizeDate(r.Date)
		day, ok := days[d]
		if !ok {
			day = &DaySummary{Date: d, ByKind: map[entity.SaleKind]decimal.Decimal{}, Total: decimal.Zero}
			days[d] = day
		}
		day.ByKind[r.Kind] = day.ByKind[r.Kind].Add(r.Total)
		day.Total = day.Total.Add(r.Total)
		sum.ByKind[r.Kind] = sum.ByKind[r.Kind].Add(r.Total)
		sum.Total = sum.Total.Add(r.Total)
	}
	for _, d := range days {
		sum.Days = append(sum.Days, *d)
	}
	sort.Slice(sum.Days, func(i, j int) bool { return sum.Days[i].Date.Before(sum.Days[j].Date) })
	return sum
}
