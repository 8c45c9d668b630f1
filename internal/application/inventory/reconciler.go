package inventory

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// ReconcileReport insumos eliminados por la limpieza.
type ReconcileReport struct {
	Duplicates []string
	Orphans    []string
}

// Reconciler limpieza de mantenimiento del inventario de un negocio. No toma bloqueos:
// puede correr en paralelo con lecturas y sus fallos nunca bloquean una lectura.
type Reconciler struct {
	itemRepo    repository.InventoryItemRepository
	priceRepo   repository.PriceListRepository
	paperSupply string
	log         *logger.Logger
}

// NewReconciler construye el reconciliador.
func NewReconciler(itemRepo repository.InventoryItemRepository, priceRepo repository.PriceListRepository, paperSupply string, log *logger.Logger) *Reconciler {
	return &Reconciler{itemRepo: itemRepo, priceRepo: priceRepo, paperSupply: paperSupply, log: log.Named("reconciler")}
}

// Reconcile (a) deja un solo insumo por nombre, el más antiguo; (b) elimina los insumos cuyo nombre
// no es un insumo activo de la lista de precios, salvo el papel.
func (r *Reconciler) Reconcile(ctx context.Context, businessID string) (*ReconcileReport, error) {
	items, err := r.itemRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	prices, err := r.priceRepo.ListByBusiness(ctx, businessID, true)
	if err != nil {
		return nil, err
	}
	allowed := map[string]bool{r.paperSupply: true}
	for _, p := range prices {
		if p.Kind == entity.SaleKindSupply {
			allowed[p.ItemKey] = true
		}
	}

	report := &ReconcileReport{}
	seen := map[string]bool{}
	for _, it := range items {
		switch {
		case seen[it.SupplyName]:
			report.Duplicates = append(report.Duplicates, it.ID)
		case !allowed[it.SupplyName]:
			report.Orphans = append(report.Orphans, it.ID)
		default:
			seen[it.SupplyName] = true
			continue
		}
		if err := r.itemRepo.Delete(ctx, it.ID); err != nil {
			return report, err
		}
	}
	if len(report.Duplicates)+len(report.Orphans) > 0 {
		r.log.Info().
			Str("business_id", businessID).
			Strs("duplicates", report.Duplicates).
			Strs("orphans", report.Orphans).
			Msg("inventario reconciliado")
	}
	return report, nil
}
