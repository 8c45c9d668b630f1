package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// InventoryUseCase lectura y alta de insumos de un negocio.
type InventoryUseCase struct {
	itemRepo   repository.InventoryItemRepository
	txRepo     repository.InventoryTransactionRepository
	txRunner   TxRunner
	reconciler *Reconciler
	authz      BusinessAuthorizer
	clock      clock.Clock
	log        *logger.Logger
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(
	itemRepo repository.InventoryItemRepository,
	txRepo repository.InventoryTransactionRepository,
	txRunner TxRunner,
	reconciler *Reconciler,
	authz BusinessAuthorizer,
	clk clock.Clock,
	log *logger.Logger,
) *InventoryUseCase {
	return &InventoryUseCase{
		itemRepo:   itemRepo,
		txRepo:     txRepo,
		txRunner:   txRunner,
		reconciler: reconciler,
		authz:      authz,
		clock:      clk,
		log:        log.Named("inventory"),
	}
}

// ListInventory reconcilia (best-effort) y devuelve los insumos con los que están bajo su umbral.
func (uc *InventoryUseCase) ListInventory(ctx context.Context, userID, businessID string) (*dto.InventoryViewDTO, error) {
	if err := uc.authz.AuthorizeBusiness(ctx, userID, businessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	if uc.reconciler != nil {
		if _, err := uc.reconciler.Reconcile(ctx, businessID); err != nil {
			uc.log.Warn().Err(err).Str("business_id", businessID).Msg("reconciliación de inventario falló")
		}
	}
	items, err := uc.itemRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, domain.Persistence("list inventory items", err)
	}
	view := &dto.InventoryViewDTO{
		Items:    make([]dto.InventoryItemDTO, 0, len(items)),
		LowStock: []dto.InventoryItemDTO{},
	}
	for _, it := range items {
		d := dto.ToInventoryItemDTO(it)
		view.Items = append(view.Items, d)
		if d.IsLowStock {
			view.LowStock = append(view.LowStock, d)
		}
	}
	return view, nil
}

// CreateItem da de alta un insumo (rol admin). La cantidad inicial se registra como compra
// para que el log de transacciones explique la existencia; alta y compra van en la misma transacción.
func (uc *InventoryUseCase) CreateItem(ctx context.Context, userID, businessID string, in dto.CreateInventoryItemRequest) (*entity.InventoryItem, error) {
	name := strings.TrimSpace(in.SupplyName)
	if name == "" {
		return nil, domain.Invalid("supply_name", "requerido")
	}
	if in.Quantity.IsNegative() || in.UnitCost.IsNegative() || in.ThresholdQuantity.IsNegative() {
		return nil, domain.Invalid("quantity", "cantidades y costos no pueden ser negativos")
	}
	if err := uc.authz.AuthorizeBusiness(ctx, userID, businessID, entity.RoleAdmin); err != nil {
		return nil, err
	}
	existing, err := uc.itemRepo.FindByName(ctx, businessID, name)
	if err != nil {
		return nil, domain.Persistence("find inventory item", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	unitType := in.UnitType
	if unitType == "" {
		unitType = entity.UnitTypePiece
	}
	now := uc.clock.Now()
	item := &entity.InventoryItem{
		BusinessID:        businessID,
		SupplyName:        name,
		Quantity:          decimal.Zero,
		UnitCost:          in.UnitCost,
		ThresholdQuantity: in.ThresholdQuantity,
		UnitType:          unitType,
		SheetsPerBlock:    in.SheetsPerBlock,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err = uc.txRunner.Run(ctx, func(items repository.InventoryItemRepository, txs repository.InventoryTransactionRepository) error {
		if err := items.Create(ctx, item); err != nil {
			return domain.Persistence("create inventory item", err)
		}
		if !in.Quantity.IsPositive() {
			return nil
		}
		cost := in.UnitCost
		initial := &entity.InventoryTransaction{
			InventoryItemID: item.ID,
			Type:            entity.TransactionPurchase,
			QuantityChange:  in.Quantity,
			UnitCost:        &cost,
			Note:            "existencia inicial",
			ReferenceType:   entity.ReferenceManual,
			CreatedBy:       userID,
			CreatedAt:       now,
		}
		if err := txs.AppendAndApply(ctx, initial); err != nil {
			return domain.Persistence("initial stock", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	item.Quantity = in.Quantity
	return item, nil
}

// ListTransactions movimientos de un insumo, del más reciente al más antiguo (rol viewer).
func (uc *InventoryUseCase) ListTransactions(ctx context.Context, userID, itemID string, page dto.PageRequest) ([]dto.InventoryTransactionDTO, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, domain.Persistence("get inventory item", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authz.AuthorizeBusiness(ctx, userID, item.BusinessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	page.DefaultPage()
	txs, err := uc.txRepo.ListByItem(ctx, itemID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Persistence("list inventory transactions", err)
	}
	out := make([]dto.InventoryTransactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, dto.ToInventoryTransactionDTO(t))
	}
	return out, nil
}
