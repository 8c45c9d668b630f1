package entity

import "time"

// Photocopier equipo de un negocio con exactamente un usuario dueño.
type Photocopier struct {
	ID         string
	BusinessID string
	OwnerID    string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
