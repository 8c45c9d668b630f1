package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// SharedAccessGrantRepository permisos compartidos por módulo.
type SharedAccessGrantRepository interface {
	// Upsert inserta o sobrescribe por (owner, grantee, photocopier, module).
	Upsert(ctx context.Context, grant *entity.SharedAccessGrant) error
	// Deactivate marca is_active=false; domain.ErrNotFound si no existe el permiso.
	Deactivate(ctx context.Context, ownerID, granteeID, photocopierID string, module entity.Module) error
	// ListFor permisos (activos o no) del dueño al usuario sobre la fotocopiadora.
	ListFor(ctx context.Context, ownerID, granteeID, photocopierID string) ([]*entity.SharedAccessGrant, error)
	ListByPhotocopier(ctx context.Context, photocopierID string) ([]*entity.SharedAccessGrant, error)
	ListByGrantee(ctx context.Context, granteeID string) ([]*entity.SharedAccessGrant, error)
}
