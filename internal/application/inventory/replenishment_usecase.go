package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de compra de insumos de un negocio.
type ReplenishmentUseCase struct {
	itemRepo repository.InventoryItemRepository
	authz    BusinessAuthorizer
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(itemRepo repository.InventoryItemRepository, authz BusinessAuthorizer) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo, authz: authz}
}

var idealFactor = decimal.RequireFromString("1.5")

// GenerateReplenishmentList devuelve los insumos bajo su umbral con la cantidad sugerida
// (umbral * 1.5 - existencia) y el costo estimado. Primero los de mayor déficit relativo.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, userID, businessID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if err := uc.authz.AuthorizeBusiness(ctx, userID, businessID, entity.RoleViewer); err != nil {
		return nil, err
	}
	items, err := uc.itemRepo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, domain.Persistence("list inventory items", err)
	}

	type ranked struct {
		dto.ReplenishmentSuggestionDTO
		ratio decimal.Decimal
	}
	var list []ranked
	for _, it := range items {
		if !it.IsLowStock() {
			continue
		}
		ideal := it.ThresholdQuantity.Mul(idealFactor)
		suggested := ideal.Sub(it.Quantity)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		ratio := decimal.NewFromInt(1)
		if it.ThresholdQuantity.IsPositive() {
			ratio = it.ThresholdQuantity.Sub(it.Quantity).Div(it.ThresholdQuantity)
		}
		list = append(list, ranked{
			ReplenishmentSuggestionDTO: dto.ReplenishmentSuggestionDTO{
				ItemID:             it.ID,
				SupplyName:         it.SupplyName,
				CurrentStock:       it.Quantity,
				Threshold:          it.ThresholdQuantity,
				IdealStock:         ideal,
				SuggestedOrderQty:  suggested,
				UnitCost:           it.UnitCost,
				EstimatedOrderCost: suggested.Mul(it.UnitCost).Round(2),
			},
			ratio: ratio,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].ratio.Equal(list[j].ratio) {
			return list[i].ratio.GreaterThan(list[j].ratio)
		}
		return list[i].SupplyName < list[j].SupplyName
	})

	out := make([]dto.ReplenishmentSuggestionDTO, len(list))
	for i := range list {
		out[i] = list[i].ReplenishmentSuggestionDTO
		out[i].Priority = i + 1
	}
	return out, nil
}
