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

// Asegura que los repos implementan sus puertos.
var (
	_ repository.BusinessRepository         = (*BusinessRepo)(nil)
	_ repository.UserBusinessRoleRepository = (*UserBusinessRoleRepo)(nil)
	_ repository.SuperAdminRepository       = (*SuperAdminRepo)(nil)
)

// BusinessRepo implementación del puerto BusinessRepository sobre PostgreSQL.
type BusinessRepo struct {
	pool *pgxpool.Pool
}

// NewBusinessRepository construye el adaptador de persistencia para negocios.
func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepo {
	return &BusinessRepo{pool: pool}
}

// Create persiste un nuevo negocio.
func (r *BusinessRepo) Create(ctx context.Context, b *entity.Business) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO businesses (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, b.ID, b.Name, b.OwnerID, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert business: %w", err)
	}
	return nil
}

// GetByID obtiene un negocio por ID.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `SELECT id, name, owner_id, created_at, updated_at FROM businesses WHERE id = $1`
	var b entity.Business
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return &b, nil
}

// ListForUser negocios propios o donde el usuario tiene rol.
func (r *BusinessRepo) ListForUser(ctx context.Context, userID string) ([]*entity.Business, error) {
	query := `
		SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at
		FROM businesses b
		WHERE b.owner_id = $1
		   OR EXISTS (SELECT 1 FROM user_business_roles r WHERE r.business_id = b.id AND r.user_id = $1)
		ORDER BY b.created_at`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()
	var out []*entity.Business
	for rows.Next() {
		var b entity.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// UserBusinessRoleRepo roles por (usuario, negocio).
type UserBusinessRoleRepo struct {
	pool *pgxpool.Pool
}

// NewUserBusinessRoleRepository construye el adaptador.
func NewUserBusinessRoleRepository(pool *pgxpool.Pool) *UserBusinessRoleRepo {
	return &UserBusinessRoleRepo{pool: pool}
}

// Upsert inserta o reemplaza el rol.
func (r *UserBusinessRoleRepo) Upsert(ctx context.Context, role *entity.UserBusinessRole) error {
	query := `
		INSERT INTO user_business_roles (user_id, business_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, business_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at`
	_, err := r.pool.Exec(ctx, query, role.UserID, role.BusinessID, string(role.Role), role.CreatedAt, role.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert role: %w", err)
	}
	return nil
}

// Get rol del usuario; nil, nil si no tiene.
func (r *UserBusinessRoleRepo) Get(ctx context.Context, userID, businessID string) (*entity.UserBusinessRole, error) {
	query := `
		SELECT user_id, business_id, role, created_at, updated_at
		FROM user_business_roles WHERE user_id = $1 AND business_id = $2`
	var ubr entity.UserBusinessRole
	var role string
	err := r.pool.QueryRow(ctx, query, userID, businessID).Scan(&ubr.UserID, &ubr.BusinessID, &role, &ubr.CreatedAt, &ubr.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	ubr.Role = entity.Role(role)
	return &ubr, nil
}

// Delete quita el rol.
func (r *UserBusinessRoleRepo) Delete(ctx context.Context, userID, businessID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_business_roles WHERE user_id = $1 AND business_id = $2`, userID, businessID)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByBusiness roles del negocio por usuario.
func (r *UserBusinessRoleRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.UserBusinessRole, error) {
	query := `
		SELECT user_id, business_id, role, created_at, updated_at
		FROM user_business_roles WHERE business_id = $1 ORDER BY user_id`
	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var out []*entity.UserBusinessRole
	for rows.Next() {
		var ubr entity.UserBusinessRole
		var role string
		if err := rows.Scan(&ubr.UserID, &ubr.BusinessID, &role, &ubr.CreatedAt, &ubr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		ubr.Role = entity.Role(role)
		out = append(out, &ubr)
	}
	return out, rows.Err()
}

// SuperAdminRepo tabla super_admins.
type SuperAdminRepo struct {
	pool *pgxpool.Pool
}

// NewSuperAdminRepository construye el adaptador.
func NewSuperAdminRepository(pool *pgxpool.Pool) *SuperAdminRepo {
	return &SuperAdminRepo{pool: pool}
}

// IsSuperAdmin consulta la tabla.
func (r *SuperAdminRepo) IsSuperAdmin(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM super_admins WHERE user_id = $1)`, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("is super admin: %w", err)
	}
	return ok, nil
}
