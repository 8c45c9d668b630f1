package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.RolloverStateRepository = (*RolloverStateStore)(nil)

const rolloverKeyPrefix = "rollover:"

// RolloverStateStore guarda la última fecha de rollover por dispositivo en "rollover:<device>".
type RolloverStateStore struct {
	client goredis.Cmdable
}

// NewRolloverStateStore construye el store.
func NewRolloverStateStore(client goredis.Cmdable) *RolloverStateStore {
	return &RolloverStateStore{client: client}
}

type rolloverPayload struct {
	LastRolloverDate string    `json:"last_rollover_date,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Get nil, nil si la clave no existe.
func (s *RolloverStateStore) Get(ctx context.Context, deviceID string) (*entity.RolloverState, error) {
	val, err := s.client.Get(ctx, rolloverKeyPrefix+deviceID).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rollover state: %w", err)
	}
	var p rolloverPayload
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode rollover state %s: %w", deviceID, err)
	}
	st := &entity.RolloverState{DeviceID: deviceID, UpdatedAt: p.UpdatedAt}
	if p.LastRolloverDate != "" {
		d, err := entity.ParseDate(p.LastRolloverDate)
		if err != nil {
			return nil, err
		}
		st.LastRolloverDate = &d
	}
	return st, nil
}

// Save sin expiración: el estado vale hasta el siguiente rollover.
func (s *RolloverStateStore) Save(ctx context.Context, st *entity.RolloverState) error {
	p := rolloverPayload{UpdatedAt: st.UpdatedAt}
	if st.LastRolloverDate != nil {
		p.LastRolloverDate = entity.FormatDate(*st.LastRolloverDate)
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, rolloverKeyPrefix+st.DeviceID, payload, 0).Err(); err != nil {
		return fmt.Errorf("save rollover state: %w", err)
	}
	return nil
}
