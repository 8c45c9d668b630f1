package entity

import "time"

// Business negocio de copiado (tenant).
type Business struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role rol de un usuario dentro de un negocio.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperador Role = "operador"
	RoleViewer   Role = "viewer"
)

// UserBusinessRole a lo sumo uno por (usuario, negocio).
type UserBusinessRole struct {
	UserID     string
	BusinessID string
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
