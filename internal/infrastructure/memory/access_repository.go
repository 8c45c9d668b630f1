package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var (
	_ repository.BusinessRepository          = (*BusinessRepo)(nil)
	_ repository.UserBusinessRoleRepository  = (*UserBusinessRoleRepo)(nil)
	_ repository.SuperAdminRepository        = (*SuperAdminRepo)(nil)
	_ repository.PhotocopierRepository       = (*PhotocopierRepo)(nil)
	_ repository.SharedAccessGrantRepository = (*SharedAccessGrantRepo)(nil)
)

// BusinessRepo negocios en memoria.
type BusinessRepo struct {
	s *Store
}

// Create persiste un negocio.
func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "businesses.create"); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if _, ok := r.s.d.businesses[b.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.d.businesses[b.ID] = *b
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "businesses.get_by_id"); err != nil {
		return nil, err
	}
	b, ok := r.s.d.businesses[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

// ListForUser negocios donde el usuario es dueño o tiene rol.
func (r *BusinessRepo) ListForUser(ctx context.Context, userID string) ([]*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "businesses.list_for_user"); err != nil {
		return nil, err
	}
	var out []*entity.Business
	for _, b := range r.s.d.businesses {
		_, member := r.s.d.roles[roleKey{userID, b.ID}]
		if b.OwnerID == userID || member {
			c := b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UserBusinessRoleRepo roles en memoria.
type UserBusinessRoleRepo struct {
	s *Store
}

// Upsert inserta o reemplaza el rol del par (usuario, negocio).
func (r *UserBusinessRoleRepo) Upsert(ctx context.Context, role *entity.UserBusinessRole) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "user_business_roles.upsert"); err != nil {
		return err
	}
	k := roleKey{role.UserID, role.BusinessID}
	if prev, ok := r.s.d.roles[k]; ok {
		role.CreatedAt = prev.CreatedAt
	}
	r.s.d.roles[k] = *role
	return nil
}

// Get devuelve nil, nil si no hay rol.
func (r *UserBusinessRoleRepo) Get(ctx context.Context, userID, businessID string) (*entity.UserBusinessRole, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "user_business_roles.get"); err != nil {
		return nil, err
	}
	role, ok := r.s.d.roles[roleKey{userID, businessID}]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

// Delete elimina el rol.
func (r *UserBusinessRoleRepo) Delete(ctx context.Context, userID, businessID string) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "user_business_roles.delete"); err != nil {
		return err
	}
	k := roleKey{userID, businessID}
	if _, ok := r.s.d.roles[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.d.roles, k)
	return nil
}

// ListByBusiness roles del negocio ordenados por usuario.
func (r *UserBusinessRoleRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.UserBusinessRole, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "user_business_roles.list_by_business"); err != nil {
		return nil, err
	}
	var out []*entity.UserBusinessRole
	for _, role := range r.s.d.roles {
		if role.BusinessID == businessID {
			c := role
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// SuperAdminRepo super-admins en memoria.
type SuperAdminRepo struct {
	s *Store
}

// Add registra un super-admin (seed y tests).
func (r *SuperAdminRepo) Add(userID string) {
	defer r.s.lockWrite(false)()
	r.s.d.superAdmins[userID] = true
}

// IsSuperAdmin informa si el usuario es super-admin.
func (r *SuperAdminRepo) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "super_admins.is_super_admin"); err != nil {
		return false, err
	}
	return r.s.d.superAdmins[userID], nil
}

// PhotocopierRepo fotocopiadoras en memoria.
type PhotocopierRepo struct {
	s *Store
}

// Create persiste una fotocopiadora.
func (r *PhotocopierRepo) Create(ctx context.Context, pc *entity.Photocopier) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "photocopiers.create"); err != nil {
		return err
	}
	if pc.ID == "" {
		pc.ID = uuid.New().String()
	}
	if _, ok := r.s.d.photocopiers[pc.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.d.photocopiers[pc.ID] = *pc
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *PhotocopierRepo) GetByID(ctx context.Context, id string) (*entity.Photocopier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "photocopiers.get_by_id"); err != nil {
		return nil, err
	}
	pc, ok := r.s.d.photocopiers[id]
	if !ok {
		return nil, nil
	}
	return &pc, nil
}

// Update reemplaza nombre y dueño.
func (r *PhotocopierRepo) Update(ctx context.Context, pc *entity.Photocopier) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "photocopiers.update"); err != nil {
		return err
	}
	prev, ok := r.s.d.photocopiers[pc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	prev.Name = pc.Name
	prev.OwnerID = pc.OwnerID
	prev.UpdatedAt = pc.UpdatedAt
	r.s.d.photocopiers[pc.ID] = prev
	return nil
}

// ListByBusiness fotocopiadoras del negocio por fecha de creación.
func (r *PhotocopierRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Photocopier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "photocopiers.list_by_business"); err != nil {
		return nil, err
	}
	var out []*entity.Photocopier
	for _, pc := range r.s.d.photocopiers {
		if pc.BusinessID == businessID {
			c := pc
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SharedAccessGrantRepo permisos compartidos en memoria.
type SharedAccessGrantRepo struct {
	s *Store
}

func keyOf(g entity.SharedAccessGrant) grantKey {
	return grantKey{g.OwnerID, g.GranteeID, g.PhotocopierID, g.Module}
}

// Upsert inserta o sobrescribe por tupla, conservando ID y CreatedAt.
func (r *SharedAccessGrantRepo) Upsert(ctx context.Context, g *entity.SharedAccessGrant) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "shared_access_grants.upsert"); err != nil {
		return err
	}
	k := keyOf(*g)
	if prev, ok := r.s.d.grants[k]; ok {
		g.ID = prev.ID
		g.CreatedAt = prev.CreatedAt
	} else if g.ID == "" {
		g.ID = uuid.New().String()
	}
	r.s.d.grants[k] = *g
	return nil
}

// Deactivate marca el permiso como inactivo.
func (r *SharedAccessGrantRepo) Deactivate(ctx context.Context, ownerID, granteeID, photocopierID string, module entity.Module) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "shared_access_grants.deactivate"); err != nil {
		return err
	}
	k := grantKey{ownerID, granteeID, photocopierID, module}
	g, ok := r.s.d.grants[k]
	if !ok {
		return domain.ErrNotFound
	}
	g.IsActive = false
	r.s.d.grants[k] = g
	return nil
}

func (r *SharedAccessGrantRepo) list(ctx context.Context, op string, keep func(entity.SharedAccessGrant) bool) ([]*entity.SharedAccessGrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, op); err != nil {
		return nil, err
	}
	var out []*entity.SharedAccessGrant
	for _, g := range r.s.d.grants {
		if keep(g) {
			c := g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GranteeID != out[j].GranteeID {
			return out[i].GranteeID < out[j].GranteeID
		}
		return out[i].Module < out[j].Module
	})
	return out, nil
}

// ListFor permisos de owner a grantee sobre la fotocopiadora.
func (r *SharedAccessGrantRepo) ListFor(ctx context.Context, ownerID, granteeID, photocopierID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, "shared_access_grants.list_for", func(g entity.SharedAccessGrant) bool {
		return g.OwnerID == ownerID && g.GranteeID == granteeID && g.PhotocopierID == photocopierID
	})
}

// ListByPhotocopier permisos otorgados sobre la fotocopiadora.
func (r *SharedAccessGrantRepo) ListByPhotocopier(ctx context.Context, photocopierID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, "shared_access_grants.list_by_photocopier", func(g entity.SharedAccessGrant) bool {
		return g.PhotocopierID == photocopierID
	})
}

// ListByGrantee permisos recibidos por el usuario.
func (r *SharedAccessGrantRepo) ListByGrantee(ctx context.Context, granteeID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, "shared_access_grants.list_by_grantee", func(g entity.SharedAccessGrant) bool {
		return g.GranteeID == granteeID
	})
}
