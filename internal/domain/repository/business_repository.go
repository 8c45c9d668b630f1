package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// BusinessRepository define el puerto de persistencia para Business (DIP).
// La implementación vive en infrastructure.
type BusinessRepository interface {
	Create(ctx context.Context, business *entity.Business) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	// ListForUser negocios de los que el usuario es dueño o miembro.
	ListForUser(ctx context.Context, userID string) ([]*entity.Business, error)
}

// UserBusinessRoleRepository roles por (usuario, negocio); a lo sumo uno por par.
type UserBusinessRoleRepository interface {
	Upsert(ctx context.Context, role *entity.UserBusinessRole) error
	// Get devuelve nil, nil si el usuario no tiene rol en el negocio.
	Get(ctx context.Context, userID, businessID string) (*entity.UserBusinessRole, error)
	// Delete devuelve domain.ErrNotFound si no existía.
	Delete(ctx context.Context, userID, businessID string) error
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.UserBusinessRole, error)
}

// SuperAdminRepository usuarios con acceso total a la plataforma.
type SuperAdminRepository interface {
	IsSuperAdmin(ctx context.Context, userID string) (bool, error)
}
