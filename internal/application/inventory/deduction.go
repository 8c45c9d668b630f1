package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Copias-api/internal/domain/inventory"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// DeductionInput ventas guardadas de una fotocopiadora en un día.
type DeductionInput struct {
	BusinessID    string
	PhotocopierID string
	UserID        string
	Date          time.Time
	Counters      map[entity.ServiceKey]entity.Counter
	StockItems    map[string]entity.StockItem
}

// DeductionLine cambio aplicado a un insumo.
type DeductionLine struct {
	ItemID         string          `json:"item_id"`
	SupplyName     string          `json:"supply_name"`
	Type           string          `json:"type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
}

// DeductionResult resumen del descuento.
type DeductionResult struct {
	SheetsUsed int             `json:"sheets_used"`
	Applied    []DeductionLine `json:"applied"`
	Skipped    []string        `json:"skipped,omitempty"` // insumos sin registro de inventario
}

// DeductionEngine descuenta del inventario del negocio lo vendido en un día.
// Re-guardar el mismo día revierte lo descontado antes, así el inventario nunca se descuenta dos veces.
type DeductionEngine struct {
	txRunner    TxRunner
	paperSupply string
	clock       clock.Clock
	log         *logger.Logger
}

// NewDeductionEngine construye el motor. paperSupply es el nombre reservado del papel.
func NewDeductionEngine(txRunner TxRunner, paperSupply string, clk clock.Clock, log *logger.Logger) *DeductionEngine {
	return &DeductionEngine{txRunner: txRunner, paperSupply: paperSupply, clock: clk, log: log.Named("deduction")}
}

type target struct {
	item   *entity.InventoryItem
	change decimal.Decimal
}

// DeductForSales registra transacciones "sale" por las hojas usadas y los insumos vendidos.
func (e *DeductionEngine) DeductForSales(ctx context.Context, in DeductionInput) (*DeductionResult, error) {
	if in.BusinessID == "" || in.PhotocopierID == "" || in.Date.IsZero() {
		return nil, domain.Invalid("deduction", "negocio, fotocopiadora y fecha son requeridos")
	}
	now := e.clock.Now()
	ref := entity.DailySaleReference(in.PhotocopierID, entity.NormalizeDate(in.Date))
	res := &DeductionResult{SheetsUsed: domaininv.TotalSheetsUsed(in.Counters)}

	err := e.txRunner.Run(ctx, func(items repository.InventoryItemRepository, txs repository.InventoryTransactionRepository) error {
		res.Applied, res.Skipped = nil, nil
		targets := map[string]*target{}
		var order []string
		add := func(name string, change decimal.Decimal) error {
			it, err := items.FindByName(ctx, in.BusinessID, name)
			if err != nil {
				return err
			}
			if it == nil {
				res.Skipped = append(res.Skipped, name)
				return nil
			}
			if t, ok := targets[it.ID]; ok {
				t.change = t.change.Add(change)
				return nil
			}
			targets[it.ID] = &target{item: it, change: change}
			order = append(order, it.ID)
			return nil
		}

		if res.SheetsUsed > 0 {
			paper, err := items.FindByName(ctx, in.BusinessID, e.paperSupply)
			if err != nil {
				return err
			}
			if paper == nil {
				res.Skipped = append(res.Skipped, e.paperSupply)
			} else {
				targets[paper.ID] = &target{item: paper, change: domaininv.SheetsToBlocks(res.SheetsUsed, paper.SheetsPerBlock).Neg()}
				order = append(order, paper.ID)
			}
		}
		names := make([]string, 0, len(in.StockItems))
		for name := range in.StockItems {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sold := in.StockItems[name].Sold()
			if !sold.IsPositive() {
				continue
			}
			if err := add(name, sold.Neg()); err != nil {
				return err
			}
		}

		// Neto ya descontado por guardados anteriores del mismo día.
		prior, err := txs.ListByReference(ctx, entity.ReferenceDailySale, ref)
		if err != nil {
			return err
		}
		net := map[string]decimal.Decimal{}
		for _, t := range prior {
			net[t.InventoryItemID] = net[t.InventoryItemID].Add(t.QuantityChange)
		}
		var stale []string
		for id := range net {
			if _, ok := targets[id]; !ok {
				stale = append(stale, id)
			}
		}
		sort.Strings(stale)
		order = append(order, stale...)

		for _, id := range order {
			want := decimal.Zero
			name := ""
			if t, ok := targets[id]; ok {
				want, name = t.change, t.item.SupplyName
			}
			have := net[id]
			if have.Equal(want) {
				continue
			}
			if !have.IsZero() {
				rev := &entity.InventoryTransaction{
					InventoryItemID: id,
					Type:            entity.TransactionAdjustment,
					QuantityChange:  have.Neg(),
					Note:            "reversión por nuevo guardado del día",
					ReferenceType:   entity.ReferenceDailySale,
					ReferenceID:     ref,
					CreatedBy:       in.UserID,
					CreatedAt:       now,
				}
				if err := txs.AppendAndApply(ctx, rev); err != nil {
					return err
				}
				res.Applied = append(res.Applied, DeductionLine{ItemID: id, SupplyName: name, Type: rev.Type, QuantityChange: rev.QuantityChange})
			}
			if want.IsZero() {
				continue
			}
			sale := &entity.InventoryTransaction{
				InventoryItemID: id,
				Type:            entity.TransactionSale,
				QuantityChange:  want,
				Note:            "venta diaria " + entity.FormatDate(in.Date),
				ReferenceType:   entity.ReferenceDailySale,
				ReferenceID:     ref,
				CreatedBy:       in.UserID,
				CreatedAt:       now,
			}
			if err := txs.AppendAndApply(ctx, sale); err != nil {
				return err
			}
			res.Applied = append(res.Applied, DeductionLine{ItemID: id, SupplyName: name, Type: sale.Type, QuantityChange: want})
		}
		return nil
	})
	if err != nil {
		return nil, domain.Persistence("deduct inventory", err)
	}

	e.log.Info().
		Str("business_id", in.BusinessID).
		Str("reference", ref).
		Int("sheets_used", res.SheetsUsed).
		Int("applied", len(res.Applied)).
		Strs("skipped", res.Skipped).
		Msg("inventario descontado")
	return res, nil
}
