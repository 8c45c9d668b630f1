package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/application/rollover"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Copias-api/internal/interfaces/http"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

const paperSupply = "Hojas Blancas"

var testNow = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

// Zona del negocio en los tests: Ciudad de México (UTC-6, sin horario de verano).
var testLoc = time.FixedZone("CST", -6*60*60)

type apiFixture struct {
	t      *testing.T
	app    *fiber.App
	store  *memory.Store
	locker *memory.KeyLocker
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIAt(t, testNow)
}

func newAPIAt(t *testing.T, now time.Time) *apiFixture {
	t.Helper()
	store := memory.New()
	clk := clock.Fixed{At: now}
	loc := testLoc
	locker := memory.NewKeyLocker()
	log := logger.NewNop()
	txRunner := memory.NewTxRunner(store)

	accessSvc := access.NewService(store.Photocopiers(), store.Businesses(), store.Roles(), store.Grants(), store.SuperAdmins(), nil, clk)
	reconciler := inventory.NewReconciler(store.InventoryItems(), store.Prices(), paperSupply, log)

	app := fiber.New(apphttp.AppConfig("copias-test"))
	apphttp.Router(app, apphttp.RouterDeps{
		Access:     accessSvc,
		Businesses: access.NewBusinessService(accessSvc, store.Businesses(), store.Roles(), store.Photocopiers(), store.Prices(), clk),
		Grants:     access.NewGrantService(store.Photocopiers(), store.Grants(), clk),
		Ledger: ledger.NewService(ledger.Deps{
			TxRunner:        txRunner,
			SaleRepo:        store.SaleRecords(),
			PhotocopierRepo: store.Photocopiers(),
			PriceRepo:       store.Prices(),
			Access:          accessSvc,
			Locker:          locker,
			Deductor:        inventory.NewDeductionEngine(txRunner, paperSupply, clk, log),
			Clock:           clk,
			Logger:          log,
			DeductOnSave:    true,
		}),
		Rollover:      rollover.NewEngine(store.RolloverStates(), clk, loc, log),
		Inventory:     inventory.NewInventoryUseCase(store.InventoryItems(), store.InventoryTransactions(), txRunner, reconciler, accessSvc, clk, log),
		Register:      inventory.NewRegisterTransactionUseCase(txRunner, store.InventoryItems(), accessSvc, clk),
		Replenishment: inventory.NewReplenishmentUseCase(store.InventoryItems(), accessSvc),
		Clock:         clk,
		Location:      loc,
		JWTSecret:     testJWTSecret,
		Log:           log,
	})
	return &apiFixture{t: t, app: app, store: store, locker: locker}
}

// call envía la petición como userID ("" = sin token) y decodifica la respuesta en out si no es nil.
func (f *apiFixture) call(method, path, userID string, body any, out any) int {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", bearer(f.t, userID))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seed crea un negocio con una fotocopiadora y precio de copias a color.
func (f *apiFixture) seed() (bizID, pcID string) {
	f.t.Helper()
	var biz dto.BusinessResponse
	require.Equal(f.t, http.StatusCreated, f.call(http.MethodPost, "/api/businesses", "owner", dto.CreateBusinessRequest{Name: "Copias Centro"}, &biz))
	var pc dto.PhotocopierResponse
	require.Equal(f.t, http.StatusCreated, f.call(http.MethodPost, "/api/businesses/"+biz.ID+"/photocopiers", "owner", dto.CreatePhotocopierRequest{Name: "Xerox 1"}, &pc))
	price := map[string]any{"kind": "service", "item_key": "colorCopies", "price": "2.00"}
	require.Equal(f.t, http.StatusOK, f.call(http.MethodPut, "/api/businesses/"+biz.ID+"/prices", "owner", price, nil))
	return biz.ID, pc.ID
}

func saveBody(bizID string, today int) map[string]any {
	return map[string]any{
		"business_id": bizID,
		"counters": map[string]entity.Counter{
			"colorCopies": {Yesterday: 100, Today: today, Errors: 2},
		},
	}
}

func TestRouter_SinToken_Retorna401(t *testing.T) {
	f := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, f.call(http.MethodGet, "/api/businesses", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, f.call(http.MethodGet, "/api/grants/received", "", nil, nil))
}

func TestRouter_GuardarYCargarVentas(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()
	path := "/api/photocopiers/" + pcID + "/sales/2026-10-16"

	var saved dto.SaveDailySalesResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodPut, path, "owner", saveBody(bizID, 140), &saved))
	require.Len(t, saved.Records, 1)
	assert.Equal(t, "76.00", saved.Total.StringFixed(2))
	assert.Empty(t, saved.InventoryWarning)

	// Re-guardar reemplaza el día completo.
	require.Equal(t, http.StatusOK, f.call(http.MethodPut, path, "owner", saveBody(bizID, 120), &saved))

	var day dto.DailySalesResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, path, "owner", nil, &day))
	require.Len(t, day.Records, 1)
	assert.Equal(t, "36.00", day.Total.StringFixed(2))
	assert.Equal(t, entity.Counter{Yesterday: 100, Today: 120, Errors: 2}, day.Counters["colorCopies"])

	var hist dto.HistoryResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/history?from=2026-10-01&to=2026-10-16", "owner", nil, &hist))
	assert.Len(t, hist.Records, 1)

	var sum dto.SummaryResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/reports/summary?from=2026-10-01&to=2026-10-16", "owner", nil, &sum))
	assert.Equal(t, "36.00", sum.Total.StringFixed(2))
}

func TestRouter_ExtranoRecibe403SinEscribir(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()

	status := f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "extrano", saveBody(bizID, 140), nil)
	assert.Equal(t, http.StatusForbidden, status)

	recs, err := f.store.SaleRecords().ListByRange(context.Background(), "owner", pcID, testNow.AddDate(0, 0, -1), testNow)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRouter_PermisoCompartidoPorModulo(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()
	grantsPath := "/api/photocopiers/" + pcID + "/grants"

	// Solo el dueño administra permisos.
	assert.Equal(t, http.StatusForbidden, f.call(http.MethodPut, grantsPath, "amigo", dto.GrantRequest{GranteeID: "amigo", Module: "copias"}, nil))

	var g dto.GrantResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodPut, grantsPath, "owner", dto.GrantRequest{GranteeID: "amigo", Module: "copias"}, &g))
	assert.True(t, g.IsActive)

	var acc dto.AccessResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/access/copias", "amigo", nil, &acc))
	assert.True(t, acc.Allowed)
	assert.Equal(t, "shared_grant", acc.Principal)

	assert.Equal(t, http.StatusOK, f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "amigo", saveBody(bizID, 140), nil))
	assert.Equal(t, http.StatusForbidden, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/reports/summary", "amigo", nil, nil))

	var received []dto.GrantResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/grants/received", "amigo", nil, &received))
	assert.Len(t, received, 1)

	// La revocación surte efecto en la siguiente verificación.
	assert.Equal(t, http.StatusNoContent, f.call(http.MethodDelete, grantsPath+"/amigo/copias", "owner", nil, nil))
	assert.Equal(t, http.StatusForbidden, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "amigo", nil, nil))
}

func TestRouter_Inventario(t *testing.T) {
	f := newAPI(t)
	bizID, _ := f.seed()
	base := "/api/businesses/" + bizID + "/inventory"

	spb := 500
	var item dto.InventoryItemDTO
	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, base+"/items", "owner", map[string]any{
		"supply_name": paperSupply, "quantity": "3", "unit_cost": "80", "threshold_quantity": "4",
		"unit_type": "bloque", "sheets_per_block": spb,
	}, &item))
	assert.True(t, item.IsLowStock)

	// Un viewer no da de alta insumos.
	require.Equal(t, http.StatusOK, f.call(http.MethodPut, "/api/businesses/"+bizID+"/roles", "owner", dto.AssignRoleRequest{UserID: "miron", Role: "viewer"}, nil))
	assert.Equal(t, http.StatusForbidden, f.call(http.MethodPost, base+"/items", "miron", map[string]any{"supply_name": "Folder"}, nil))

	var view dto.InventoryViewDTO
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, base, "miron", nil, &view))
	assert.Len(t, view.LowStock, 1)

	var repl []dto.ReplenishmentSuggestionDTO
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, base+"/replenishment", "owner", nil, &repl))
	require.Len(t, repl, 1)
	assert.True(t, repl[0].SuggestedOrderQty.Equal(decimal.NewFromInt(3)))

	txPath := "/api/inventory/items/" + item.ID + "/transactions"
	var tx dto.InventoryTransactionDTO
	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, txPath, "owner", map[string]any{"type": "purchase", "quantity_change": "5", "unit_cost": "80"}, &tx))
	assert.Equal(t, "purchase", tx.Type)
	assert.Equal(t, http.StatusBadRequest, f.call(http.MethodPost, txPath, "owner", map[string]any{"type": "sale", "quantity_change": "1"}, nil))

	var txs []dto.InventoryTransactionDTO
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, txPath, "miron", nil, &txs))
	assert.Len(t, txs, 2)
}

func TestRouter_Rollover(t *testing.T) {
	f := newAPI(t)
	body := dto.RolloverRequest{Counters: map[string]entity.Counter{"bwCopies": {Yesterday: 10, Today: 25, Errors: 1}}}

	var out dto.RolloverResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodPost, "/api/devices/tablet-1/rollover", "owner", body, &out))
	assert.True(t, out.Rolled)
	assert.Equal(t, "2026-10-16", out.Date)
	assert.Equal(t, entity.Counter{Yesterday: 25}, out.Counters["bwCopies"])
	assert.Equal(t, 14, out.DiscardedToday)

	require.Equal(t, http.StatusOK, f.call(http.MethodPost, "/api/devices/tablet-1/rollover", "owner", body, &out))
	assert.False(t, out.Rolled)

	bad := dto.RolloverRequest{Counters: map[string]entity.Counter{"fax": {}}}
	assert.Equal(t, http.StatusBadRequest, f.call(http.MethodPost, "/api/devices/tablet-1/rollover", "owner", bad, nil))
}

func TestRouter_FalloDeAlmacenamiento_Retorna503(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()
	f.store.FailOn("sale_records.create_batch", errors.New("conexión perdida"))

	status := f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "owner", saveBody(bizID, 140), nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

// Los IDs que llegan por la ruta se guardan tal cual; peticiones posteriores no deben alterarlos.
func TestRouter_IDsDeRutaNoSeCorrompen(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()

	// Más peticiones con rutas de distinta longitud reutilizan el buffer de fiber.
	var other dto.BusinessResponse
	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, "/api/businesses", "owner", dto.CreateBusinessRequest{Name: "Otro"}, &other))
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/businesses/"+other.ID+"/photocopiers", "owner", nil, nil))
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/grants/received", "owner", nil, nil))

	pc, err := f.store.Photocopiers().GetByID(context.Background(), pcID)
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, bizID, pc.BusinessID)

	var list []dto.PhotocopierResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/businesses/"+bizID+"/photocopiers", "owner", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, bizID, list[0].BusinessID)

	assert.Equal(t, http.StatusOK, f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "owner", saveBody(bizID, 140), nil))
}

func TestRouter_IDNoUUID_Retorna404(t *testing.T) {
	f := newAPI(t)
	f.seed()
	f.store.FailOn("photocopiers.get_by_id", errors.New("no debe consultarse"))

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/photocopiers/no-es-uuid/sales/2026-10-16"},
		{http.MethodGet, "/api/photocopiers/no-es-uuid/grants"},
		{http.MethodDelete, "/api/photocopiers/no-es-uuid/grants/amigo/copias"},
		{http.MethodGet, "/api/photocopiers/no-es-uuid/access/copias"},
		{http.MethodGet, "/api/businesses/no-es-uuid/inventory"},
		{http.MethodGet, "/api/inventory/items/no-es-uuid/transactions"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusNotFound, f.call(p.method, p.path, "owner", nil, nil), p.path)
	}
}

// Sin from/to el rango termina en el día actual del negocio, no en el de UTC.
func TestRouter_RangoPorDefectoEnZonaDelNegocio(t *testing.T) {
	// 01:30 UTC del 17 = 19:30 del 16 en Ciudad de México.
	f := newAPIAt(t, time.Date(2026, 10, 17, 1, 30, 0, 0, time.UTC))
	bizID, pcID := f.seed()
	require.Equal(t, http.StatusOK, f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "owner", saveBody(bizID, 140), nil))

	var hist dto.HistoryResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/history", "owner", nil, &hist))
	assert.Equal(t, "2026-10-10", hist.From)
	assert.Equal(t, "2026-10-16", hist.To)
	assert.Len(t, hist.Records, 1)

	var sum dto.SummaryResponse
	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/photocopiers/"+pcID+"/reports/summary", "owner", nil, &sum))
	assert.Equal(t, "2026-10-16", sum.To)
	assert.Equal(t, "76.00", sum.Total.StringFixed(2))
}

func TestRouter_GuardadoEnCurso_Retorna409(t *testing.T) {
	f := newAPI(t)
	bizID, pcID := f.seed()
	held, err := f.locker.Obtain(context.Background(), "ledger:owner:"+pcID+":2026-10-16")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", bytes.NewReader(mustJSON(t, saveBody(bizID, 140))))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "owner"))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "SAVE_IN_PROGRESS", body.Code)

	require.NoError(t, held.Release(context.Background()))
	assert.Equal(t, http.StatusOK, f.call(http.MethodPut, "/api/photocopiers/"+pcID+"/sales/2026-10-16", "owner", saveBody(bizID, 140), nil))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
