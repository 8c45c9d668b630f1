package repository

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// RolloverStateRepository último día de rollover por dispositivo.
type RolloverStateRepository interface {
	// Get devuelve nil, nil si el dispositivo nunca hizo rollover.
	Get(ctx context.Context, deviceID string) (*entity.RolloverState, error)
	Save(ctx context.Context, state *entity.RolloverState) error
}
