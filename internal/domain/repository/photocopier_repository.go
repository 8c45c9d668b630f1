package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// PhotocopierRepository define el puerto de persistencia para fotocopiadoras.
type PhotocopierRepository interface {
	Create(ctx context.Context, pc *entity.Photocopier) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Photocopier, error)
	Update(ctx context.Context, pc *entity.Photocopier) error
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.Photocopier, error)
}
