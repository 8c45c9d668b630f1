package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Copias-api/internal/domain/inventory"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
)

// RegisterTransactionUseCase registra compras y ajustes manuales de forma transaccional.
// Las ventas no pasan por aquí: las genera el DeductionEngine al guardar el día.
type RegisterTransactionUseCase struct {
	txRunner TxRunner
	itemRepo repository.InventoryItemRepository
	authz    BusinessAuthorizer
	clock    clock.Clock
}

// NewRegisterTransactionUseCase construye el caso de uso.
func NewRegisterTransactionUseCase(
	txRunner TxRunner,
	itemRepo repository.InventoryItemRepository,
	authz BusinessAuthorizer,
	clk clock.Clock,
) *RegisterTransactionUseCase {
	return &RegisterTransactionUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		authz:    authz,
		clock:    clk,
	}
}

// TransactionInputDTO entrada para registrar un movimiento manual.
// purchase: QuantityChange > 0 y UnitCost obligatorio. adjustment: QuantityChange firmado distinto de cero.
type TransactionInputDTO struct {
	UserID         string
	ItemID         string
	Type           string
	QuantityChange decimal.Decimal
	UnitCost       *decimal.Decimal
	Note           string
}

// RegisterTransaction valida, verifica rol operador en el negocio del insumo y aplica el movimiento
// junto con la actualización de cantidad (y costo promedio en compras) en una sola transacción.
func (uc *RegisterTransactionUseCase) RegisterTransaction(ctx context.Context, input TransactionInputDTO) (*entity.InventoryTransaction, error) {
	switch input.Type {
	case entity.TransactionPurchase:
		if !input.QuantityChange.IsPositive() {
			return nil, domain.Invalid("quantity_change", "una compra debe ser positiva")
		}
		if input.UnitCost == nil || input.UnitCost.IsNegative() {
			return nil, domain.Invalid("unit_cost", "requerido en compras y no negativo")
		}
	case entity.TransactionAdjustment:
		if input.QuantityChange.IsZero() {
			return nil, domain.Invalid("quantity_change", "un ajuste no puede ser cero")
		}
	default:
		return nil, domain.Invalid("type", fmt.Sprintf("tipo %q no admitido", input.Type))
	}
	if input.ItemID == "" {
		return nil, domain.Invalid("item_id", "requerido")
	}

	item, err := uc.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, domain.Persistence("get inventory item", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authz.AuthorizeBusiness(ctx, input.UserID, item.BusinessID, entity.RoleOperador); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	tx := &entity.InventoryTransaction{
		InventoryItemID: item.ID,
		Type:            input.Type,
		QuantityChange:  input.QuantityChange,
		UnitCost:        input.UnitCost,
		Note:            strings.TrimSpace(input.Note),
		ReferenceType:   entity.ReferenceManual,
		CreatedBy:       input.UserID,
		CreatedAt:       now,
	}
	err = uc.txRunner.Run(ctx, func(items repository.InventoryItemRepository, txs repository.InventoryTransactionRepository) error {
		if input.Type == entity.TransactionPurchase {
			// Releer dentro de la tx: la cantidad pudo cambiar desde la validación.
			current, err := items.GetByID(ctx, item.ID)
			if err != nil {
				return err
			}
			if current == nil {
				return domain.ErrNotFound
			}
			newCost := domaininv.CostCalculator(current.Quantity, current.UnitCost, input.QuantityChange, *input.UnitCost)
			if err := items.UpdateUnitCost(ctx, item.ID, newCost); err != nil {
				return err
			}
		}
		return txs.AppendAndApply(ctx, tx)
	})
	if err != nil {
		return nil, domain.Persistence("register inventory transaction", err)
	}
	return tx, nil
}

// RegisterTransactionFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterTransactionUseCase) RegisterTransactionFromRequest(ctx context.Context, userID, itemID string, in dto.RegisterTransactionRequest) (*entity.InventoryTransaction, error) {
	return uc.RegisterTransaction(ctx, TransactionInputDTO{
		UserID:         userID,
		ItemID:         itemID,
		Type:           in.Type,
		QuantityChange: in.QuantityChange,
		UnitCost:       in.UnitCost,
		Note:           in.Note,
	})
}
