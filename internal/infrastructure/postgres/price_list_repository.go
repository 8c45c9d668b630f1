package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var (
	_ repository.PriceListRepository     = (*PriceListRepo)(nil)
	_ repository.RolloverStateRepository = (*RolloverStateRepo)(nil)
)

// PriceListRepo lista de precios por negocio.
type PriceListRepo struct {
	pool *pgxpool.Pool
}

// NewPriceListRepository construye el adaptador.
func NewPriceListRepository(pool *pgxpool.Pool) *PriceListRepo {
	return &PriceListRepo{pool: pool}
}

// Upsert inserta o reemplaza por (negocio, tipo, clave).
func (r *PriceListRepo) Upsert(ctx context.Context, e *entity.PriceListEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO price_list (id, business_id, kind, item_key, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (business_id, kind, item_key)
		DO UPDATE SET price = EXCLUDED.price, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		e.ID, e.BusinessID, string(e.Kind), e.ItemKey, e.Price, e.IsActive, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert price: %w", err)
	}
	return nil
}

// ListByBusiness precios ordenados por tipo y clave.
func (r *PriceListRepo) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]*entity.PriceListEntry, error) {
	query := `
		SELECT id, business_id, kind, item_key, price, is_active, created_at, updated_at
		FROM price_list
		WHERE business_id = $1 AND (NOT $2 OR is_active)
		ORDER BY kind, item_key`
	rows, err := r.pool.Query(ctx, query, businessID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()
	var out []*entity.PriceListEntry
	for rows.Next() {
		var e entity.PriceListEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.BusinessID, &kind, &e.ItemKey, &e.Price, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		e.Kind = entity.SaleKind(kind)
		out = append(out, &e)
	}
	return out, rows.Err()
}

// RolloverStateRepo estado de rollover en PostgreSQL (cuando no hay Redis).
type RolloverStateRepo struct {
	pool *pgxpool.Pool
}

// NewRolloverStateRepository construye el adaptador.
func NewRolloverStateRepository(pool *pgxpool.Pool) *RolloverStateRepo {
	return &RolloverStateRepo{pool: pool}
}

// Get nil, nil si el dispositivo no tiene estado.
func (r *RolloverStateRepo) Get(ctx context.Context, deviceID string) (*entity.RolloverState, error) {
	var st entity.RolloverState
	err := r.pool.QueryRow(ctx,
		`SELECT device_id, last_rollover_date, updated_at FROM rollover_states WHERE device_id = $1`, deviceID,
	).Scan(&st.DeviceID, &st.LastRolloverDate, &st.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rollover state: %w", err)
	}
	if st.LastRolloverDate != nil {
		d := entity.NormalizeDate(*st.LastRolloverDate)
		st.LastRolloverDate = &d
	}
	return &st, nil
}

// Save inserta o reemplaza el estado.
func (r *RolloverStateRepo) Save(ctx context.Context, st *entity.RolloverState) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rollover_states (device_id, last_rollover_date, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id)
		DO UPDATE SET last_rollover_date = EXCLUDED.last_rollover_date, updated_at = EXCLUDED.updated_at`,
		st.DeviceID, st.LastRolloverDate, st.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save rollover state: %w", err)
	}
	return nil
}
