// Package access aplica el modelo de autorización sobre los repositorios y gestiona negocios,
// roles, fotocopiadoras, precios y permisos compartidos.
package access

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/authz"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
)

var _ authz.Source = (*Service)(nil)

// Service resuelve el acceso consultando siempre el almacenamiento (sin caché).
type Service struct {
	photocopierRepo repository.PhotocopierRepository
	businessRepo    repository.BusinessRepository
	roleRepo        repository.UserBusinessRoleRepository
	grantRepo       repository.SharedAccessGrantRepository
	superAdminRepo  repository.SuperAdminRepository
	superAdminIDs   map[string]bool
	clock           clock.Clock
}

// NewService construye el servicio. superAdminRepo puede ser nil; superAdminIDs viene de configuración.
func NewService(
	photocopierRepo repository.PhotocopierRepository,
	businessRepo repository.BusinessRepository,
	roleRepo repository.UserBusinessRoleRepository,
	grantRepo repository.SharedAccessGrantRepository,
	superAdminRepo repository.SuperAdminRepository,
	superAdminIDs []string,
	clk clock.Clock,
) *Service {
	ids := make(map[string]bool, len(superAdminIDs))
	for _, id := range superAdminIDs {
		ids[id] = true
	}
	return &Service{
		photocopierRepo: photocopierRepo,
		businessRepo:    businessRepo,
		roleRepo:        roleRepo,
		grantRepo:       grantRepo,
		superAdminRepo:  superAdminRepo,
		superAdminIDs:   ids,
		clock:           clk,
	}
}

// IsSuperAdmin lista de configuración o tabla super_admins.
func (s *Service) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	if s.superAdminIDs[userID] {
		return true, nil
	}
	if s.superAdminRepo == nil {
		return false, nil
	}
	return s.superAdminRepo.IsSuperAdmin(ctx, userID)
}

// Photocopier devuelve nil si no existe.
func (s *Service) Photocopier(ctx context.Context, photocopierID string) (*entity.Photocopier, error) {
	return s.photocopierRepo.GetByID(ctx, photocopierID)
}

// RoleIn devuelve nil si el usuario no tiene rol en el negocio.
func (s *Service) RoleIn(ctx context.Context, userID, businessID string) (*entity.Role, error) {
	r, err := s.roleRepo.Get(ctx, userID, businessID)
	if err != nil || r == nil {
		return nil, err
	}
	role := r.Role
	return &role, nil
}

// Grants permisos del dueño al usuario sobre la fotocopiadora.
func (s *Service) Grants(ctx context.Context, ownerID, granteeID, photocopierID string) ([]entity.SharedAccessGrant, error) {
	list, err := s.grantRepo.ListFor(ctx, ownerID, granteeID, photocopierID)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SharedAccessGrant, 0, len(list))
	for _, g := range list {
		out = append(out, *g)
	}
	return out, nil
}

// Resolve decide el acceso y devuelve cómo se concedió.
func (s *Service) Resolve(ctx context.Context, userID, photocopierID string, module entity.Module, minRole *entity.Role) (authz.Decision, error) {
	d, err := authz.Resolve(ctx, s, authz.Request{
		UserID:        userID,
		PhotocopierID: photocopierID,
		Module:        module,
		MinRole:       minRole,
		Now:           s.clock.Now(),
	})
	if err != nil {
		return d, domain.Persistence("resolve access", err)
	}
	return d, nil
}

// CanAccess versión booleana de Resolve.
func (s *Service) CanAccess(ctx context.Context, userID, photocopierID string, module entity.Module, minRole *entity.Role) (bool, error) {
	d, err := s.Resolve(ctx, userID, photocopierID, module, minRole)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// Authorize devuelve *domain.AccessDeniedError si el acceso no se concede.
func (s *Service) Authorize(ctx context.Context, userID, photocopierID string, module entity.Module, minRole *entity.Role) error {
	ok, err := s.CanAccess(ctx, userID, photocopierID, module, minRole)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.AccessDeniedError{UserID: userID, PhotocopierID: photocopierID, Module: string(module)}
	}
	return nil
}

// CanAccessBusiness super-admin, dueño del negocio o rol >= minRole.
func (s *Service) CanAccessBusiness(ctx context.Context, userID, businessID string, minRole entity.Role) (bool, error) {
	if userID == "" || businessID == "" {
		return false, nil
	}
	super, err := s.IsSuperAdmin(ctx, userID)
	if err != nil {
		return false, domain.Persistence("is super admin", err)
	}
	if super {
		return true, nil
	}
	b, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return false, domain.Persistence("get business", err)
	}
	if b == nil {
		return false, nil
	}
	if b.OwnerID == userID {
		return true, nil
	}
	role, err := s.RoleIn(ctx, userID, businessID)
	if err != nil {
		return false, domain.Persistence("get role", err)
	}
	return role != nil && authz.AtLeast(*role, minRole), nil
}

// AuthorizeBusiness devuelve *domain.AccessDeniedError si el usuario no alcanza minRole en el negocio.
func (s *Service) AuthorizeBusiness(ctx context.Context, userID, businessID string, minRole entity.Role) error {
	ok, err := s.CanAccessBusiness(ctx, userID, businessID, minRole)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.AccessDeniedError{UserID: userID, BusinessID: businessID, Module: string(minRole)}
	}
	return nil
}
