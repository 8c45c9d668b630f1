package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.PriceListRepository = (*PriceListRepo)(nil)
var _ repository.RolloverStateRepository = (*RolloverStateRepo)(nil)

// PriceListRepo lista de precios en memoria.
type PriceListRepo struct {
	s *Store
}

// Upsert inserta o sobrescribe por (negocio, tipo, clave).
func (r *PriceListRepo) Upsert(ctx context.Context, e *entity.PriceListEntry) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "price_list.upsert"); err != nil {
		return err
	}
	k := priceKey{e.BusinessID, e.Kind, e.ItemKey}
	if prev, ok := r.s.d.prices[k]; ok {
		e.ID = prev.ID
		e.CreatedAt = prev.CreatedAt
	} else if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.s.d.prices[k] = *e
	return nil
}

// ListByBusiness precios del negocio ordenados por tipo y clave.
func (r *PriceListRepo) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]*entity.PriceListEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "price_list.list_by_business"); err != nil {
		return nil, err
	}
	var out []*entity.PriceListEntry
	for _, e := range r.s.d.prices {
		if e.BusinessID != businessID || (activeOnly && !e.IsActive) {
			continue
		}
		c := e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ItemKey < out[j].ItemKey
	})
	return out, nil
}

// RolloverStateRepo estado de rollover en memoria.
type RolloverStateRepo struct {
	s *Store
}

// Get devuelve nil, nil si el dispositivo no tiene estado.
func (r *RolloverStateRepo) Get(ctx context.Context, deviceID string) (*entity.RolloverState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "rollover_states.get"); err != nil {
		return nil, err
	}
	st, ok := r.s.d.rollover[deviceID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// Save guarda el estado.
func (r *RolloverStateRepo) Save(ctx context.Context, st *entity.RolloverState) error {
	defer r.s.lockWrite(false)()
	if err := r.s.check(ctx, "rollover_states.save"); err != nil {
		return err
	}
	r.s.d.rollover[st.DeviceID] = *st
	return nil
}
