package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBusinessRequest body para POST /api/businesses.
type CreateBusinessRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// BusinessResponse negocio en respuestas.
type BusinessResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignRoleRequest body para PUT /api/businesses/:businessId/roles.
type AssignRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=admin operador viewer"`
}

// RoleResponse rol de un usuario en el negocio.
type RoleResponse struct {
	UserID     string    `json:"user_id"`
	BusinessID string    `json:"business_id"`
	Role       string    `json:"role"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreatePhotocopierRequest body para POST /api/businesses/:businessId/photocopiers.
// OwnerID vacío = el usuario que la crea.
type CreatePhotocopierRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	OwnerID string `json:"owner_id,omitempty"`
}

// UpdatePhotocopierRequest body para PUT /api/photocopiers/:photocopierId.
type UpdatePhotocopierRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// PhotocopierResponse fotocopiadora en respuestas.
type PhotocopierResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpsertPriceRequest body para PUT /api/businesses/:businessId/prices.
// Para servicios ItemKey es colorCopies, bwCopies, colorPrints o bwPrints.
type UpsertPriceRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=service supply procedure"`
	ItemKey  string          `json:"item_key" validate:"required,max=120"`
	Price    decimal.Decimal `json:"price"`
	IsActive *bool           `json:"is_active,omitempty"`
}

// PriceResponse precio en respuestas.
type PriceResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	ItemKey   string          `json:"item_key"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GrantRequest body para PUT /api/photocopiers/:photocopierId/grants.
type GrantRequest struct {
	GranteeID string     `json:"grantee_id" validate:"required"`
	Module    string     `json:"module" validate:"required,oneof=copias reportes historial configuracion"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GrantResponse permiso compartido en respuestas.
type GrantResponse struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	GranteeID     string     `json:"grantee_id"`
	PhotocopierID string     `json:"photocopier_id"`
	Module        string     `json:"module"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsActive      bool       `json:"is_active"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AccessResponse respuesta de GET /api/photocopiers/:photocopierId/access/:module.
type AccessResponse struct {
	Allowed   bool     `json:"allowed"`
	Principal string   `json:"principal"`
	Role      string   `json:"role,omitempty"`
	Modules   []string `json:"modules,omitempty"`
}
