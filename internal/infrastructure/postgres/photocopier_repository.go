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
	_ repository.PhotocopierRepository       = (*PhotocopierRepo)(nil)
	_ repository.SharedAccessGrantRepository = (*SharedAccessGrantRepo)(nil)
)

// PhotocopierRepo fotocopiadoras sobre PostgreSQL.
type PhotocopierRepo struct {
	pool *pgxpool.Pool
}

// NewPhotocopierRepository construye el adaptador.
func NewPhotocopierRepository(pool *pgxpool.Pool) *PhotocopierRepo {
	return &PhotocopierRepo{pool: pool}
}

// Create persiste una fotocopiadora.
func (r *PhotocopierRepo) Create(ctx context.Context, pc *entity.Photocopier) error {
	if pc.ID == "" {
		pc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO photocopiers (id, business_id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, pc.ID, pc.BusinessID, pc.OwnerID, pc.Name, pc.CreatedAt, pc.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert photocopier: %w", err)
	}
	return nil
}

// GetByID obtiene una fotocopiadora.
func (r *PhotocopierRepo) GetByID(ctx context.Context, id string) (*entity.Photocopier, error) {
	query := `SELECT id, business_id, owner_id, name, created_at, updated_at FROM photocopiers WHERE id = $1`
	var pc entity.Photocopier
	err := r.pool.QueryRow(ctx, query, id).Scan(&pc.ID, &pc.BusinessID, &pc.OwnerID, &pc.Name, &pc.CreatedAt, &pc.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get photocopier: %w", err)
	}
	return &pc, nil
}

// Update actualiza nombre y dueño.
func (r *PhotocopierRepo) Update(ctx context.Context, pc *entity.Photocopier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE photocopiers SET name = $2, owner_id = $3, updated_at = $4 WHERE id = $1`,
		pc.ID, pc.Name, pc.OwnerID, pc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update photocopier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByBusiness fotocopiadoras del negocio.
func (r *PhotocopierRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Photocopier, error) {
	query := `
		SELECT id, business_id, owner_id, name, created_at, updated_at
		FROM photocopiers WHERE business_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list photocopiers: %w", err)
	}
	defer rows.Close()
	var out []*entity.Photocopier
	for rows.Next() {
		var pc entity.Photocopier
		if err := rows.Scan(&pc.ID, &pc.BusinessID, &pc.OwnerID, &pc.Name, &pc.CreatedAt, &pc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan photocopier: %w", err)
		}
		out = append(out, &pc)
	}
	return out, rows.Err()
}

// SharedAccessGrantRepo permisos compartidos sobre PostgreSQL.
type SharedAccessGrantRepo struct {
	pool *pgxpool.Pool
}

// NewSharedAccessGrantRepository construye el adaptador.
func NewSharedAccessGrantRepository(pool *pgxpool.Pool) *SharedAccessGrantRepo {
	return &SharedAccessGrantRepo{pool: pool}
}

const grantColumns = `id, owner_id, grantee_id, photocopier_id, module, expires_at, is_active, created_at, updated_at`

// Upsert inserta o sobrescribe por tupla; conserva id y created_at de la fila existente.
func (r *SharedAccessGrantRepo) Upsert(ctx context.Context, g *entity.SharedAccessGrant) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	query := `
		INSERT INTO shared_access_grants (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (owner_id, grantee_id, photocopier_id, module)
		DO UPDATE SET expires_at = EXCLUDED.expires_at, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		g.ID, g.OwnerID, g.GranteeID, g.PhotocopierID, string(g.Module), g.ExpiresAt, g.IsActive, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

// Deactivate marca el permiso como inactivo.
func (r *SharedAccessGrantRepo) Deactivate(ctx context.Context, ownerID, granteeID, photocopierID string, module entity.Module) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shared_access_grants SET is_active = false, updated_at = now()
		WHERE owner_id = $1 AND grantee_id = $2 AND photocopier_id = $3 AND module = $4`,
		ownerID, granteeID, photocopierID, string(module),
	)
	if err != nil {
		return fmt.Errorf("deactivate grant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFor permisos del dueño al usuario sobre la fotocopiadora.
func (r *SharedAccessGrantRepo) ListFor(ctx context.Context, ownerID, granteeID, photocopierID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, `SELECT `+grantColumns+` FROM shared_access_grants
		WHERE owner_id = $1 AND grantee_id = $2 AND photocopier_id = $3 ORDER BY module`,
		ownerID, granteeID, photocopierID)
}

// ListByPhotocopier permisos otorgados sobre la fotocopiadora.
func (r *SharedAccessGrantRepo) ListByPhotocopier(ctx context.Context, photocopierID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, `SELECT `+grantColumns+` FROM shared_access_grants
		WHERE photocopier_id = $1 ORDER BY grantee_id, module`, photocopierID)
}

// ListByGrantee permisos recibidos.
func (r *SharedAccessGrantRepo) ListByGrantee(ctx context.Context, granteeID string) ([]*entity.SharedAccessGrant, error) {
	return r.list(ctx, `SELECT `+grantColumns+` FROM shared_access_grants
		WHERE grantee_id = $1 ORDER BY photocopier_id, module`, granteeID)
}

func (r *SharedAccessGrantRepo) list(ctx context.Context, query string, args ...any) ([]*entity.SharedAccessGrant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()
	var out []*entity.SharedAccessGrant
	for rows.Next() {
		var g entity.SharedAccessGrant
		var module string
		if err := rows.Scan(
			&g.ID, &g.OwnerID, &g.GranteeID, &g.PhotocopierID, &module, &g.ExpiresAt, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.Module = entity.Module(module)
		out = append(out, &g)
	}
	return out, rows.Err()
}
