package access

import (
	"context"
	"time"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
)

// GrantService permisos compartidos que un dueño otorga sobre sus fotocopiadoras.
type GrantService struct {
	photocopierRepo repository.PhotocopierRepository
	grantRepo       repository.SharedAccessGrantRepository
	clock           clock.Clock
}

// NewGrantService construye el servicio.
func NewGrantService(photocopierRepo repository.PhotocopierRepository, grantRepo repository.SharedAccessGrantRepository, clk clock.Clock) *GrantService {
	return &GrantService{photocopierRepo: photocopierRepo, grantRepo: grantRepo, clock: clk}
}

// GrantInput permiso a otorgar. ExpiresAt nil = sin vencimiento.
type GrantInput struct {
	GranteeID     string
	PhotocopierID string
	Module        entity.Module
	ExpiresAt     *time.Time
}

func (s *GrantService) ownedPhotocopier(ctx context.Context, ownerID, photocopierID string) (*entity.Photocopier, error) {
	pc, err := s.photocopierRepo.GetByID(ctx, photocopierID)
	if err != nil {
		return nil, domain.Persistence("get photocopier", err)
	}
	if pc == nil {
		return nil, domain.ErrNotFound
	}
	if pc.OwnerID != ownerID {
		return nil, &domain.AccessDeniedError{UserID: ownerID, PhotocopierID: photocopierID, Module: "grants"}
	}
	return pc, nil
}

// Grant crea o sobrescribe el permiso (owner, grantee, photocopier, module) y lo deja activo.
func (s *GrantService) Grant(ctx context.Context, ownerID string, in GrantInput) (*entity.SharedAccessGrant, error) {
	if in.GranteeID == "" {
		return nil, domain.Invalid("grantee_id", "requerido")
	}
	if !in.Module.Valid() {
		return nil, domain.Invalid("module", "módulo desconocido "+string(in.Module))
	}
	// La propiedad se verifica antes que el resto: un no-dueño siempre recibe denegación.
	if _, err := s.ownedPhotocopier(ctx, ownerID, in.PhotocopierID); err != nil {
		return nil, err
	}
	if in.GranteeID == ownerID {
		return nil, domain.Invalid("grantee_id", "el dueño ya tiene acceso total")
	}
	now := s.clock.Now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, domain.Invalid("expires_at", "debe ser una fecha futura")
	}
	g := &entity.SharedAccessGrant{
		OwnerID:       ownerID,
		GranteeID:     in.GranteeID,
		PhotocopierID: in.PhotocopierID,
		Module:        in.Module,
		ExpiresAt:     in.ExpiresAt,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.grantRepo.Upsert(ctx, g); err != nil {
		return nil, domain.Persistence("upsert grant", err)
	}
	return g, nil
}

// Revoke desactiva el permiso; aplica en la siguiente verificación.
func (s *GrantService) Revoke(ctx context.Context, ownerID, photocopierID, granteeID string, module entity.Module) error {
	if !module.Valid() {
		return domain.Invalid("module", "módulo desconocido "+string(module))
	}
	if _, err := s.ownedPhotocopier(ctx, ownerID, photocopierID); err != nil {
		return err
	}
	if err := s.grantRepo.Deactivate(ctx, ownerID, granteeID, photocopierID, module); err != nil {
		return domain.Persistence("revoke grant", err)
	}
	return nil
}

// ListForPhotocopier permisos otorgados sobre una fotocopiadora propia.
func (s *GrantService) ListForPhotocopier(ctx context.Context, ownerID, photocopierID string) ([]*entity.SharedAccessGrant, error) {
	if _, err := s.ownedPhotocopier(ctx, ownerID, photocopierID); err != nil {
		return nil, err
	}
	list, err := s.grantRepo.ListByPhotocopier(ctx, photocopierID)
	if err != nil {
		return nil, domain.Persistence("list grants", err)
	}
	return list, nil
}

// ListReceived permisos vigentes recibidos por el usuario.
func (s *GrantService) ListReceived(ctx context.Context, granteeID string) ([]*entity.SharedAccessGrant, error) {
	list, err := s.grantRepo.ListByGrantee(ctx, granteeID)
	if err != nil {
		return nil, domain.Persistence("list received grants", err)
	}
	now := s.clock.Now()
	out := make([]*entity.SharedAccessGrant, 0, len(list))
	for _, g := range list {
		if g.IsEffective(now) {
			out = append(out, g)
		}
	}
	return out, nil
}
