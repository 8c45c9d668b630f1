// Package authz resuelve quién puede leer o escribir sobre una fotocopiadora.
//
// Orden de resolución (gana la primera coincidencia que concede):
//  1. super-admin de plataforma
//  2. dueño de la fotocopiadora (todos los módulos, sin chequeo de rol)
//  3. rol en el negocio de la fotocopiadora >= rol mínimo
//  4. permiso compartido vigente para el módulo
//  5. denegado
//
// No hay caché: cada verificación consulta la fuente, así una revocación aplica en la siguiente llamada.
package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

var hierarchy = map[entity.Role]int{
	entity.RoleAdmin:    3,
	entity.RoleOperador: 2,
	entity.RoleViewer:   1,
}

// Level nivel jerárquico del rol; 0 si es desconocido.
func Level(r entity.Role) int {
	return hierarchy[r]
}

// AtLeast hierarchy[have] >= hierarchy[min]. Un rol desconocido nunca alcanza.
func AtLeast(have, min entity.Role) bool {
	lvl := Level(have)
	return lvl > 0 && lvl >= Level(min)
}

// ParseRole valida un rol recibido como texto.
func ParseRole(s string) (entity.Role, error) {
	r := entity.Role(s)
	if Level(r) == 0 {
		return "", fmt.Errorf("rol desconocido %q", s)
	}
	return r, nil
}

// Principal forma en que se resolvió el acceso. Es un tipo suma cerrado.
type Principal interface {
	principal()
	Kind() string
}

type SuperAdmin struct{}

type Owner struct {
	PhotocopierID string
}

type BusinessMember struct {
	BusinessID string
	Role       entity.Role
}

type SharedGrantee struct {
	Modules []entity.Module
}

type NoAccess struct{}

func (SuperAdmin) principal()     {}
func (Owner) principal()          {}
func (BusinessMember) principal() {}
func (SharedGrantee) principal()  {}
func (NoAccess) principal()       {}

func (SuperAdmin) Kind() string     { return "super_admin" }
func (Owner) Kind() string          { return "owner" }
func (BusinessMember) Kind() string { return "business_role" }
func (SharedGrantee) Kind() string  { return "shared_grant" }
func (NoAccess) Kind() string       { return "none" }

// Decision resultado de una verificación.
type Decision struct {
	Allowed   bool
	Principal Principal
}

func allow(p Principal) Decision { return Decision{Allowed: true, Principal: p} }

var deny = Decision{Allowed: false, Principal: NoAccess{}}

// Request verificación de acceso a un módulo de una fotocopiadora.
// MinRole nil equivale a viewer.
type Request struct {
	UserID        string
	PhotocopierID string
	Module        entity.Module
	MinRole       *entity.Role
	Now           time.Time
}

// Source hechos necesarios para resolver; se consultan de forma perezosa y en orden.
type Source interface {
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
	// Photocopier devuelve nil si no existe.
	Photocopier(ctx context.Context, photocopierID string) (*entity.Photocopier, error)
	// RoleIn devuelve nil si el usuario no tiene rol en el negocio.
	RoleIn(ctx context.Context, userID, businessID string) (*entity.Role, error)
	Grants(ctx context.Context, ownerID, granteeID, photocopierID string) ([]entity.SharedAccessGrant, error)
}

// Resolve aplica el orden de resolución. Los errores de la fuente se propagan; la decisión es deny en ese caso.
func Resolve(ctx context.Context, src Source, req Request) (Decision, error) {
	if req.UserID == "" || req.PhotocopierID == "" || !req.Module.Valid() {
		return deny, nil
	}

	super, err := src.IsSuperAdmin(ctx, req.UserID)
	if err != nil {
		return deny, err
	}
	if super {
		return allow(SuperAdmin{}), nil
	}

	pc, err := src.Photocopier(ctx, req.PhotocopierID)
	if err != nil {
		return deny, err
	}
	if pc == nil {
		return deny, nil
	}
	if pc.OwnerID == req.UserID {
		return allow(Owner{PhotocopierID: pc.ID}), nil
	}

	minRole := entity.RoleViewer
	if req.MinRole != nil {
		minRole = *req.MinRole
	}
	role, err := src.RoleIn(ctx, req.UserID, pc.BusinessID)
	if err != nil {
		return deny, err
	}
	if role != nil && AtLeast(*role, minRole) {
		return allow(BusinessMember{BusinessID: pc.BusinessID, Role: *role}), nil
	}

	grants, err := src.Grants(ctx, pc.OwnerID, req.UserID, pc.ID)
	if err != nil {
		return deny, err
	}
	modules := EffectiveModules(grants, req.Now)
	for _, m := range modules {
		if m == req.Module {
			return allow(SharedGrantee{Modules: modules}), nil
		}
	}
	return deny, nil
}

// EffectiveModules módulos con permiso vigente a now, sin duplicados y en el orden recibido.
func EffectiveModules(grants []entity.SharedAccessGrant, now time.Time) []entity.Module {
	seen := make(map[entity.Module]bool, len(grants))
	var out []entity.Module
	for _, g := range grants {
		if !g.IsEffective(now) || seen[g.Module] {
			continue
		}
		seen[g.Module] = true
		out = append(out, g.Module)
	}
	return out
}
