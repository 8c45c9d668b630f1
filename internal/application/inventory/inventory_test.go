package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/infrastructure/memory"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

const (
	bizID = "biz-1"
	owner = "owner"
	paper = "Hojas Blancas"
)

var now = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	clk    clock.Clock
	access *access.Service
	engine *inventory.DeductionEngine
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clk := clock.Fixed{At: now}
	require.NoError(t, store.Businesses().Create(ctx, &entity.Business{ID: bizID, Name: "Copias Centro", OwnerID: owner, CreatedAt: now}))
	accessSvc := access.NewService(store.Photocopiers(), store.Businesses(), store.Roles(), store.Grants(), store.SuperAdmins(), nil, clk)
	return &fixture{
		ctx:    ctx,
		store:  store,
		clk:    clk,
		access: accessSvc,
		engine: inventory.NewDeductionEngine(memory.NewTxRunner(store), paper, clk, logger.NewNop()),
	}
}

func (f *fixture) item(t *testing.T, name string, qty, threshold string, spb *int, createdAt time.Time) *entity.InventoryItem {
	t.Helper()
	it := &entity.InventoryItem{
		BusinessID:        bizID,
		SupplyName:        name,
		Quantity:          dec(qty),
		UnitCost:          dec("1"),
		ThresholdQuantity: dec(threshold),
		UnitType:          entity.UnitTypePiece,
		SheetsPerBlock:    spb,
		CreatedAt:         createdAt,
	}
	require.NoError(t, f.store.InventoryItems().Create(f.ctx, it))
	return it
}

func (f *fixture) qty(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	it, err := f.store.InventoryItems().GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.Quantity
}

func intPtr(n int) *int { return &n }

func TestDeductForSales_ConversionABloques(t *testing.T) {
	f := setup(t)
	p := f.item(t, paper, "10", "2", intPtr(500), now)

	res, err := f.engine.DeductForSales(f.ctx, inventory.DeductionInput{
		BusinessID:    bizID,
		PhotocopierID: "pc-x",
		UserID:        owner,
		Date:          now,
		Counters: map[entity.ServiceKey]entity.Counter{
			entity.ServiceBWCopies:    {Yesterday: 0, Today: 1000},
			entity.ServiceColorPrints: {Yesterday: 0, Today: 250, Errors: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1250, res.SheetsUsed)
	require.Len(t, res.Applied, 1)
	assert.True(t, res.Applied[0].QuantityChange.Equal(dec("-2.5")), "sin redondeo")
	assert.True(t, f.qty(t, p.ID).Equal(dec("7.5")))

	txs, err := f.store.InventoryTransactions().ListByReference(f.ctx, entity.ReferenceDailySale, "pc-x:2026-10-16")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionSale, txs[0].Type)
}

func TestDeductForSales_PapelSinHojasPorBloqueSeDescuentaEnHojas(t *testing.T) {
	f := setup(t)
	p := f.item(t, paper, "5000", "100", nil, now)

	_, err := f.engine.DeductForSales(f.ctx, inventory.DeductionInput{
		BusinessID: bizID, PhotocopierID: "pc-x", UserID: owner, Date: now,
		Counters: map[entity.ServiceKey]entity.Counter{entity.ServiceBWCopies: {Today: 30, Errors: 3}},
	})
	require.NoError(t, err)
	// sold = 30 - 3 = 27, hojas = 27 + 3 = 30.
	assert.True(t, f.qty(t, p.ID).Equal(dec("4970")))
}

func TestDeductForSales_InsumosYFaltantes(t *testing.T) {
	f := setup(t)
	folder := f.item(t, "Folder", "2", "5", nil, now)

	res, err := f.engine.DeductForSales(f.ctx, inventory.DeductionInput{
		BusinessID: bizID, PhotocopierID: "pc-x", UserID: owner, Date: now,
		Counters: map[entity.ServiceKey]entity.Counter{entity.ServiceBWCopies: {Today: 10}},
		StockItems: map[string]entity.StockItem{
			"Folder":      {StartStock: dec("10"), EndStock: dec("7")},
			"Engargolado": {StartStock: dec("4"), EndStock: dec("3")},
			"Pluma":       {StartStock: dec("4"), EndStock: dec("4")},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{paper, "Engargolado"}, res.Skipped)
	// La cantidad puede quedar negativa: el faltante queda visible.
	assert.True(t, f.qty(t, folder.ID).Equal(dec("-1")))
}

func TestDeductForSales_SinVentasNoHaceNada(t *testing.T) {
	f := setup(t)
	p := f.item(t, paper, "10", "2", intPtr(500), now)
	res, err := f.engine.DeductForSales(f.ctx, inventory.DeductionInput{
		BusinessID: bizID, PhotocopierID: "pc-x", Date: now,
		Counters: map[entity.ServiceKey]entity.Counter{entity.ServiceBWCopies: {Yesterday: 10, Today: 10}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.True(t, f.qty(t, p.ID).Equal(dec("10")))
}

func TestDeductForSales_FalloRevierteTodo(t *testing.T) {
	f := setup(t)
	p := f.item(t, paper, "10", "2", intPtr(500), now)
	f.store.FailOn("inventory_transactions.append_and_apply", errors.New("disco lleno"))

	_, err := f.engine.DeductForSales(f.ctx, inventory.DeductionInput{
		BusinessID: bizID, PhotocopierID: "pc-x", Date: now,
		Counters: map[entity.ServiceKey]entity.Counter{entity.ServiceBWCopies: {Today: 500}},
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, f.qty(t, p.ID).Equal(dec("10")))
}

func TestRegisterTransaction_CompraActualizaCostoPromedio(t *testing.T) {
	f := setup(t)
	it := f.item(t, "Folder", "10", "5", nil, now)
	uc := inventory.NewRegisterTransactionUseCase(memory.NewTxRunner(f.store), f.store.InventoryItems(), f.access, f.clk)

	cost := dec("2")
	tx, err := uc.RegisterTransaction(f.ctx, inventory.TransactionInputDTO{
		UserID: owner, ItemID: it.ID, Type: entity.TransactionPurchase, QuantityChange: dec("10"), UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ReferenceManual, tx.ReferenceType)

	got, err := f.store.InventoryItems().GetByID(f.ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(dec("20")))
	// (10*1 + 10*2) / 20 = 1.5
	assert.True(t, got.UnitCost.Equal(dec("1.5")))
}

func TestRegisterTransaction_AjusteYValidaciones(t *testing.T) {
	f := setup(t)
	it := f.item(t, "Folder", "10", "5", nil, now)
	uc := inventory.NewRegisterTransactionUseCase(memory.NewTxRunner(f.store), f.store.InventoryItems(), f.access, f.clk)

	_, err := uc.RegisterTransaction(f.ctx, inventory.TransactionInputDTO{UserID: owner, ItemID: it.ID, Type: entity.TransactionAdjustment, QuantityChange: dec("-3")})
	require.NoError(t, err)
	assert.True(t, f.qty(t, it.ID).Equal(dec("7")))

	cases := []inventory.TransactionInputDTO{
		{UserID: owner, ItemID: it.ID, Type: entity.TransactionAdjustment, QuantityChange: decimal.Zero},
		{UserID: owner, ItemID: it.ID, Type: entity.TransactionPurchase, QuantityChange: dec("5")},
		{UserID: owner, ItemID: it.ID, Type: entity.TransactionPurchase, QuantityChange: dec("-5"), UnitCost: &[]decimal.Decimal{dec("1")}[0]},
		{UserID: owner, ItemID: it.ID, Type: entity.TransactionSale, QuantityChange: dec("-1")},
	}
	for _, c := range cases {
		_, err := uc.RegisterTransaction(f.ctx, c)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso %+v", c)
	}

	_, err = uc.RegisterTransaction(f.ctx, inventory.TransactionInputDTO{UserID: owner, ItemID: "nope", Type: entity.TransactionAdjustment, QuantityChange: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.store.Roles().Upsert(f.ctx, &entity.UserBusinessRole{UserID: "vera", BusinessID: bizID, Role: entity.RoleViewer}))
	_, err = uc.RegisterTransaction(f.ctx, inventory.TransactionInputDTO{UserID: "vera", ItemID: it.ID, Type: entity.TransactionAdjustment, QuantityChange: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReconcile_DuplicadosYHuerfanos(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Prices().Upsert(f.ctx, &entity.PriceListEntry{BusinessID: bizID, Kind: entity.SaleKindSupply, ItemKey: "Folder", Price: dec("3"), IsActive: true}))
	require.NoError(t, f.store.Prices().Upsert(f.ctx, &entity.PriceListEntry{BusinessID: bizID, Kind: entity.SaleKindSupply, ItemKey: "Sobre", Price: dec("1"), IsActive: false}))

	oldest := f.item(t, "Folder", "3", "1", nil, now.Add(-2*time.Hour))
	dup := f.item(t, "Folder", "4", "1", nil, now)
	orphan := f.item(t, "Sobre", "1", "1", nil, now)
	p := f.item(t, paper, "10", "2", intPtr(500), now)

	r := inventory.NewReconciler(f.store.InventoryItems(), f.store.Prices(), paper, logger.NewNop())
	report, err := r.Reconcile(f.ctx, bizID)
	require.NoError(t, err)
	assert.Equal(t, []string{dup.ID}, report.Duplicates)
	assert.Equal(t, []string{orphan.ID}, report.Orphans)

	items, err := f.store.InventoryItems().ListByBusiness(f.ctx, bizID)
	require.NoError(t, err)
	ids := []string{}
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.ElementsMatch(t, []string{oldest.ID, p.ID}, ids)
}

func TestListInventory_BajoUmbralYReconciliacionTolerante(t *testing.T) {
	f := setup(t)
	f.item(t, paper, "1", "2", intPtr(500), now)
	f.item(t, "Folder", "8", "5", nil, now)
	require.NoError(t, f.store.Prices().Upsert(f.ctx, &entity.PriceListEntry{BusinessID: bizID, Kind: entity.SaleKindSupply, ItemKey: "Folder", Price: dec("3"), IsActive: true}))

	rec := inventory.NewReconciler(f.store.InventoryItems(), f.store.Prices(), paper, logger.NewNop())
	uc := inventory.NewInventoryUseCase(f.store.InventoryItems(), f.store.InventoryTransactions(), memory.NewTxRunner(f.store), rec, f.access, f.clk, logger.NewNop())

	view, err := uc.ListInventory(f.ctx, owner, bizID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	require.Len(t, view.LowStock, 1)
	assert.Equal(t, paper, view.LowStock[0].SupplyName)

	// La limpieza falla pero la lectura sigue.
	f.store.FailOn("price_list.list_by_business", errors.New("timeout"))
	view, err = uc.ListInventory(f.ctx, owner, bizID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	_, err = uc.ListInventory(f.ctx, "stranger", bizID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateItemYListTransactions(t *testing.T) {
	f := setup(t)
	uc := inventory.NewInventoryUseCase(f.store.InventoryItems(), f.store.InventoryTransactions(), memory.NewTxRunner(f.store), nil, f.access, f.clk, logger.NewNop())

	it, err := uc.CreateItem(f.ctx, owner, bizID, dto.CreateInventoryItemRequest{
		SupplyName: "Folder", Quantity: dec("12"), UnitCost: dec("2.5"), ThresholdQuantity: dec("4"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.UnitTypePiece, it.UnitType)
	assert.True(t, f.qty(t, it.ID).Equal(dec("12")))

	_, err = uc.CreateItem(f.ctx, owner, bizID, dto.CreateInventoryItemRequest{SupplyName: "Folder"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, f.store.Roles().Upsert(f.ctx, &entity.UserBusinessRole{UserID: "op", BusinessID: bizID, Role: entity.RoleOperador}))
	_, err = uc.CreateItem(f.ctx, "op", bizID, dto.CreateInventoryItemRequest{SupplyName: "Sobre"})
	assert.ErrorIs(t, err, domain.ErrForbidden, "dar de alta requiere admin")

	txs, err := uc.ListTransactions(f.ctx, "op", it.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionPurchase, txs[0].Type)
	assert.Equal(t, "existencia inicial", txs[0].Note)
}

// Si la compra inicial falla no queda un insumo a medias y el reintento funciona.
func TestCreateItem_FalloEnExistenciaInicialNoDejaInsumo(t *testing.T) {
	f := setup(t)
	uc := inventory.NewInventoryUseCase(f.store.InventoryItems(), f.store.InventoryTransactions(), memory.NewTxRunner(f.store), nil, f.access, f.clk, logger.NewNop())
	req := dto.CreateInventoryItemRequest{SupplyName: "Toner", Quantity: dec("3"), UnitCost: dec("450")}

	f.store.FailOn("inventory_transactions.append_and_apply", errors.New("boom"))
	_, err := uc.CreateItem(f.ctx, owner, bizID, req)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	items, err := f.store.InventoryItems().ListByBusiness(f.ctx, bizID)
	require.NoError(t, err)
	assert.Empty(t, items)

	f.store.ClearFailures()
	it, err := uc.CreateItem(f.ctx, owner, bizID, req)
	require.NoError(t, err)
	assert.True(t, f.qty(t, it.ID).Equal(dec("3")))
}

func TestReplenishmentList(t *testing.T) {
	f := setup(t)
	f.item(t, paper, "1", "4", intPtr(500), now)   // déficit 75%
	f.item(t, "Folder", "8", "10", nil, now)       // déficit 20%
	f.item(t, "Sobre", "50", "10", nil, now)       // sin déficit

	uc := inventory.NewReplenishmentUseCase(f.store.InventoryItems(), f.access)
	list, err := uc.GenerateReplenishmentList(f.ctx, owner, bizID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, paper, list[0].SupplyName)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].IdealStock.Equal(dec("6")))
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("5")))
	assert.Equal(t, "5.00", list[0].EstimatedOrderCost.StringFixed(2))

	assert.Equal(t, "Folder", list[1].SupplyName)
	assert.True(t, list[1].SuggestedOrderQty.Equal(dec("7")))
}
