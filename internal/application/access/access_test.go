package access_test

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
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/infrastructure/memory"
	"github.com/jhoicas/Copias-api/pkg/clock"
)

var now = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	access   *access.Service
	grants   *access.GrantService
	business *access.BusinessService
	bizID    string
	pcID     string
}

// setup crea un negocio de "owner" con una fotocopiadora.
func setup(t *testing.T, superAdminIDs ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clk := clock.Fixed{At: now}
	svc := access.NewService(store.Photocopiers(), store.Businesses(), store.Roles(), store.Grants(), store.SuperAdmins(), superAdminIDs, clk)
	biz := access.NewBusinessService(svc, store.Businesses(), store.Roles(), store.Photocopiers(), store.Prices(), clk)

	b, err := biz.CreateBusiness(ctx, "owner", dto.CreateBusinessRequest{Name: "Copias Centro"})
	require.NoError(t, err)
	pc, err := biz.CreatePhotocopier(ctx, "owner", b.ID, dto.CreatePhotocopierRequest{Name: "Xerox 1"})
	require.NoError(t, err)

	return &fixture{
		ctx:      ctx,
		store:    store,
		access:   svc,
		grants:   access.NewGrantService(store.Photocopiers(), store.Grants(), clk),
		business: biz,
		bizID:    b.ID,
		pcID:     pc.ID,
	}
}

func role(r entity.Role) *entity.Role { return &r }

func TestResolve_PrincipalesDesdeAlmacenamiento(t *testing.T) {
	f := setup(t, "root")
	f.store.SuperAdmins().Add("ops")

	d, err := f.access.Resolve(f.ctx, "owner", f.pcID, entity.ModuleConfiguracion, role(entity.RoleAdmin))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, "owner", d.Principal.Kind())

	for _, u := range []string{"root", "ops"} {
		d, err = f.access.Resolve(f.ctx, u, f.pcID, entity.ModuleCopias, nil)
		require.NoError(t, err)
		assert.Equal(t, "super_admin", d.Principal.Kind(), u)
	}

	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "op", Role: "operador"})
	require.NoError(t, err)
	ok, err := f.access.CanAccess(f.ctx, "op", f.pcID, entity.ModuleCopias, role(entity.RoleOperador))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.access.CanAccess(f.ctx, "op", f.pcID, entity.ModuleConfiguracion, role(entity.RoleAdmin))
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.access.Authorize(f.ctx, "nadie", f.pcID, entity.ModuleReportes, nil)
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "reportes", denied.Module)
}

func TestResolve_FalloDeAlmacenamiento(t *testing.T) {
	f := setup(t)
	f.store.FailOn("photocopiers.get_by_id", errors.New("conexión rechazada"))
	_, err := f.access.CanAccess(f.ctx, "owner", f.pcID, entity.ModuleCopias, nil)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestGrant_OtorgarVencerYRevocar(t *testing.T) {
	f := setup(t)

	_, err := f.grants.Grant(f.ctx, "owner", access.GrantInput{GranteeID: "gina", PhotocopierID: f.pcID, Module: entity.ModuleReportes})
	require.NoError(t, err)
	past := now.Add(-time.Hour)
	g, err := f.store.Grants().ListFor(f.ctx, "owner", "gina", f.pcID)
	require.NoError(t, err)
	require.Len(t, g, 1)

	ok, err := f.access.CanAccess(f.ctx, "gina", f.pcID, entity.ModuleReportes, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.access.CanAccess(f.ctx, "gina", f.pcID, entity.ModuleCopias, nil)
	require.NoError(t, err)
	assert.False(t, ok, "cada módulo es independiente")

	// Un permiso vencido sigue activo pero no concede acceso.
	require.NoError(t, f.store.Grants().Upsert(f.ctx, &entity.SharedAccessGrant{
		OwnerID: "owner", GranteeID: "gina", PhotocopierID: f.pcID, Module: entity.ModuleHistorial, ExpiresAt: &past, IsActive: true,
	}))
	ok, err = f.access.CanAccess(f.ctx, "gina", f.pcID, entity.ModuleHistorial, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	received, err := f.grants.ListReceived(f.ctx, "gina")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, entity.ModuleReportes, received[0].Module)

	require.NoError(t, f.grants.Revoke(f.ctx, "owner", f.pcID, "gina", entity.ModuleReportes))
	ok, err = f.access.CanAccess(f.ctx, "gina", f.pcID, entity.ModuleReportes, nil)
	require.NoError(t, err)
	assert.False(t, ok, "la revocación aplica en la siguiente verificación")

	err = f.grants.Revoke(f.ctx, "owner", f.pcID, "gina", entity.ModuleConfiguracion)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGrant_Validaciones(t *testing.T) {
	f := setup(t)
	past := now.Add(-time.Minute)

	cases := []access.GrantInput{
		{PhotocopierID: f.pcID, Module: entity.ModuleCopias},
		{GranteeID: "owner", PhotocopierID: f.pcID, Module: entity.ModuleCopias},
		{GranteeID: "gina", PhotocopierID: f.pcID, Module: "ventas"},
		{GranteeID: "gina", PhotocopierID: f.pcID, Module: entity.ModuleCopias, ExpiresAt: &past},
	}
	for _, c := range cases {
		_, err := f.grants.Grant(f.ctx, "owner", c)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso %+v", c)
	}

	_, err := f.grants.Grant(f.ctx, "owner", access.GrantInput{GranteeID: "gina", PhotocopierID: "no-existe", Module: entity.ModuleCopias})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Solo el dueño de la fotocopiadora administra sus permisos, aunque otro sea admin del negocio.
	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "ana", Role: "admin"})
	require.NoError(t, err)
	_, err = f.grants.Grant(f.ctx, "ana", access.GrantInput{GranteeID: "gina", PhotocopierID: f.pcID, Module: entity.ModuleCopias})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	// Un no-dueño recibe denegación aunque la solicitud además sea inválida.
	_, err = f.grants.Grant(f.ctx, "ana", access.GrantInput{GranteeID: "ana", PhotocopierID: f.pcID, Module: entity.ModuleCopias})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.grants.Grant(f.ctx, "ana", access.GrantInput{GranteeID: "gina", PhotocopierID: f.pcID, Module: entity.ModuleCopias, ExpiresAt: &past})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.grants.ListForPhotocopier(f.ctx, "ana", f.pcID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestBusinessService_Roles(t *testing.T) {
	f := setup(t)

	list, err := f.business.ListBusinesses(f.ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "vera", Role: "viewer"})
	require.NoError(t, err)
	list, err = f.business.ListBusinesses(f.ctx, "vera")
	require.NoError(t, err)
	assert.Len(t, list, 1, "los miembros también ven el negocio")

	_, err = f.business.AssignRole(f.ctx, "vera", f.bizID, dto.AssignRoleRequest{UserID: "x", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "x", Role: "gerente"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "owner", Role: "viewer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el dueño conserva admin")
	assert.ErrorIs(t, f.business.RemoveRole(f.ctx, "owner", f.bizID, "owner"), domain.ErrInvalidInput)

	// Reasignar reemplaza: un rol por (usuario, negocio).
	_, err = f.business.AssignRole(f.ctx, "owner", f.bizID, dto.AssignRoleRequest{UserID: "vera", Role: "operador"})
	require.NoError(t, err)
	roles, err := f.business.ListRoles(f.ctx, "vera", f.bizID)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	require.NoError(t, f.business.RemoveRole(f.ctx, "owner", f.bizID, "vera"))
	_, err = f.business.ListRoles(f.ctx, "vera", f.bizID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.business.RemoveRole(f.ctx, "owner", f.bizID, "vera"), domain.ErrNotFound)
}

func TestBusinessService_FotocopiadorasYPrecios(t *testing.T) {
	f := setup(t)

	pcs, err := f.business.ListPhotocopiers(f.ctx, "owner", f.bizID)
	require.NoError(t, err)
	require.Len(t, pcs, 1)
	assert.Equal(t, "owner", pcs[0].OwnerID)

	upd, err := f.business.UpdatePhotocopier(f.ctx, "owner", f.pcID, dto.UpdatePhotocopierRequest{Name: "Xerox Mostrador"})
	require.NoError(t, err)
	assert.Equal(t, "Xerox Mostrador", upd.Name)

	_, err = f.business.UpdatePhotocopier(f.ctx, "gina", f.pcID, dto.UpdatePhotocopierRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.business.UpsertPrice(f.ctx, "owner", f.bizID, dto.UpsertPriceRequest{Kind: "service", ItemKey: "bwCopies", Price: decimal.RequireFromString("1.50")})
	require.NoError(t, err)
	off := false
	_, err = f.business.UpsertPrice(f.ctx, "owner", f.bizID, dto.UpsertPriceRequest{Kind: "supply", ItemKey: "Folder", Price: decimal.RequireFromString("3.50"), IsActive: &off})
	require.NoError(t, err)

	_, err = f.business.UpsertPrice(f.ctx, "owner", f.bizID, dto.UpsertPriceRequest{Kind: "service", ItemKey: "scans", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.business.UpsertPrice(f.ctx, "owner", f.bizID, dto.UpsertPriceRequest{Kind: "supply", ItemKey: "Folder", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	prices, err := f.business.ListPrices(f.ctx, "owner", f.bizID)
	require.NoError(t, err)
	assert.Len(t, prices, 2, "la lista completa incluye inactivos")

	active, err := f.store.Prices().ListByBusiness(f.ctx, f.bizID, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestCanAccessBusiness(t *testing.T) {
	f := setup(t, "root")

	ok, err := f.access.CanAccessBusiness(f.ctx, "root", "otro-negocio", entity.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.access.CanAccessBusiness(f.ctx, "owner", "no-existe", entity.RoleViewer)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.access.CanAccessBusiness(f.ctx, "", f.bizID, entity.RoleViewer)
	require.NoError(t, err)
	assert.False(t, ok)
}
