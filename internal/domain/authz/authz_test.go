package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Copias-api/internal/domain/authz"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	superAdmins map[string]bool
	copiers     map[string]*entity.Photocopier
	roles       map[string]entity.Role // userID|businessID
	grants      []entity.SharedAccessGrant
	err         error
	calls       []string
}

func (f *fakeSource) IsSuperAdmin(_ context.Context, userID string) (bool, error) {
	f.calls = append(f.calls, "super")
	return f.superAdmins[userID], f.err
}

func (f *fakeSource) Photocopier(_ context.Context, id string) (*entity.Photocopier, error) {
	f.calls = append(f.calls, "photocopier")
	return f.copiers[id], nil
}

func (f *fakeSource) RoleIn(_ context.Context, userID, businessID string) (*entity.Role, error) {
	f.calls = append(f.calls, "role")
	r, ok := f.roles[userID+"|"+businessID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeSource) Grants(_ context.Context, ownerID, granteeID, photocopierID string) ([]entity.SharedAccessGrant, error) {
	f.calls = append(f.calls, "grants")
	var out []entity.SharedAccessGrant
	for _, g := range f.grants {
		if g.OwnerID == ownerID && g.GranteeID == granteeID && g.PhotocopierID == photocopierID {
			out = append(out, g)
		}
	}
	return out, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		superAdmins: map[string]bool{"root": true},
		copiers: map[string]*entity.Photocopier{
			"pc-1": {ID: "pc-1", BusinessID: "biz-1", OwnerID: "owner"},
		},
		roles: map[string]entity.Role{
			"op|biz-1":     entity.RoleOperador,
			"viewer|biz-1": entity.RoleViewer,
		},
	}
}

func role(r entity.Role) *entity.Role { return &r }

func check(t *testing.T, src authz.Source, user string, module entity.Module, min *entity.Role) authz.Decision {
	t.Helper()
	d, err := authz.Resolve(context.Background(), src, authz.Request{
		UserID: user, PhotocopierID: "pc-1", Module: module, MinRole: min, Now: testNow,
	})
	require.NoError(t, err)
	return d
}

func TestResolve_DuenoAccedeATodosLosModulos(t *testing.T) {
	src := newSource()
	for _, m := range []entity.Module{entity.ModuleCopias, entity.ModuleReportes, entity.ModuleHistorial, entity.ModuleConfiguracion} {
		d := check(t, src, "owner", m, role(entity.RoleAdmin))
		assert.True(t, d.Allowed, "dueño debe acceder a %s", m)
		assert.IsType(t, authz.Owner{}, d.Principal)
	}
}

func TestResolve_SuperAdminAntesQueTodo(t *testing.T) {
	src := newSource()
	d := check(t, src, "root", entity.ModuleConfiguracion, role(entity.RoleAdmin))
	assert.True(t, d.Allowed)
	assert.IsType(t, authz.SuperAdmin{}, d.Principal)
	assert.Equal(t, []string{"super"}, src.calls, "no debe consultar nada más")
}

func TestResolve_JerarquiaDeRoles(t *testing.T) {
	src := newSource()
	assert.True(t, check(t, src, "op", entity.ModuleCopias, role(entity.RoleViewer)).Allowed)
	assert.True(t, check(t, src, "op", entity.ModuleCopias, role(entity.RoleOperador)).Allowed)
	assert.False(t, check(t, src, "op", entity.ModuleCopias, role(entity.RoleAdmin)).Allowed)
	assert.True(t, check(t, src, "viewer", entity.ModuleHistorial, nil).Allowed, "sin rol mínimo basta viewer")
	assert.False(t, check(t, src, "viewer", entity.ModuleCopias, role(entity.RoleOperador)).Allowed)
}

func TestResolve_PermisoPorModuloIndependiente(t *testing.T) {
	src := newSource()
	src.grants = []entity.SharedAccessGrant{
		{OwnerID: "owner", GranteeID: "guest", PhotocopierID: "pc-1", Module: entity.ModuleReportes, IsActive: true},
	}
	d := check(t, src, "guest", entity.ModuleReportes, nil)
	assert.True(t, d.Allowed)
	assert.Equal(t, authz.SharedGrantee{Modules: []entity.Module{entity.ModuleReportes}}, d.Principal)

	assert.False(t, check(t, src, "guest", entity.ModuleHistorial, nil).Allowed)
}

func TestResolve_PermisoVencidoAunqueActivo(t *testing.T) {
	past := testNow.Add(-time.Minute)
	src := newSource()
	src.grants = []entity.SharedAccessGrant{
		{OwnerID: "owner", GranteeID: "guest", PhotocopierID: "pc-1", Module: entity.ModuleReportes, IsActive: true, ExpiresAt: &past},
	}
	assert.False(t, check(t, src, "guest", entity.ModuleReportes, nil).Allowed)
}

func TestResolve_PermisoDeOtroDuenoNoCuenta(t *testing.T) {
	src := newSource()
	src.grants = []entity.SharedAccessGrant{
		{OwnerID: "someone-else", GranteeID: "guest", PhotocopierID: "pc-1", Module: entity.ModuleCopias, IsActive: true},
	}
	assert.False(t, check(t, src, "guest", entity.ModuleCopias, nil).Allowed)
}

func TestResolve_RolInsuficienteCaeAPermisos(t *testing.T) {
	src := newSource()
	src.grants = []entity.SharedAccessGrant{
		{OwnerID: "owner", GranteeID: "viewer", PhotocopierID: "pc-1", Module: entity.ModuleCopias, IsActive: true},
	}
	d := check(t, src, "viewer", entity.ModuleCopias, role(entity.RoleOperador))
	assert.True(t, d.Allowed)
	assert.IsType(t, authz.SharedGrantee{}, d.Principal)
}

func TestResolve_FotocopiadoraInexistente(t *testing.T) {
	d, err := authz.Resolve(context.Background(), newSource(), authz.Request{
		UserID: "owner", PhotocopierID: "missing", Module: entity.ModuleCopias, Now: testNow,
	})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.IsType(t, authz.NoAccess{}, d.Principal)
}

func TestResolve_ModuloInvalido(t *testing.T) {
	d := check(t, newSource(), "owner", entity.Module("facturacion"), nil)
	assert.False(t, d.Allowed)
}

func TestResolve_ErrorDeFuente(t *testing.T) {
	src := newSource()
	src.err = errors.New("db caída")
	d, err := authz.Resolve(context.Background(), src, authz.Request{
		UserID: "owner", PhotocopierID: "pc-1", Module: entity.ModuleCopias, Now: testNow,
	})
	assert.Error(t, err)
	assert.False(t, d.Allowed)
}

func TestAtLeastYParseRole(t *testing.T) {
	assert.True(t, authz.AtLeast(entity.RoleAdmin, entity.RoleOperador))
	assert.False(t, authz.AtLeast(entity.Role("owner"), entity.RoleViewer))

	r, err := authz.ParseRole("operador")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperador, r)
	_, err = authz.ParseRole("bodeguero")
	assert.Error(t, err)
}

func TestEffectiveModules_SinDuplicados(t *testing.T) {
	later := testNow.Add(time.Hour)
	grants := []entity.SharedAccessGrant{
		{Module: entity.ModuleCopias, IsActive: true},
		{Module: entity.ModuleCopias, IsActive: true, ExpiresAt: &later},
		{Module: entity.ModuleHistorial, IsActive: false},
	}
	assert.Equal(t, []entity.Module{entity.ModuleCopias}, authz.EffectiveModules(grants, testNow))
}
