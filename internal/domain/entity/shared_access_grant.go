package entity

import "time"

// Module área de la aplicación que se puede compartir por fotocopiadora.
type Module string

const (
	ModuleCopias        Module = "copias"
	ModuleReportes      Module = "reportes"
	ModuleHistorial     Module = "historial"
	ModuleConfiguracion Module = "configuracion"
)

// Valid informa si el módulo existe.
func (m Module) Valid() bool {
	switch m {
	case ModuleCopias, ModuleReportes, ModuleHistorial, ModuleConfiguracion:
		return true
	}
	return false
}

// SharedAccessGrant permiso de un dueño a otro usuario sobre un módulo de una fotocopiadora.
// Único por (owner, grantee, photocopier, module): volver a otorgar sobrescribe.
type SharedAccessGrant struct {
	ID            string
	OwnerID       string
	GranteeID     string
	PhotocopierID string
	Module        Module
	ExpiresAt     *time.Time // nil = sin vencimiento
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsEffective isActive && (expiresAt nil || expiresAt > now).
func (g SharedAccessGrant) IsEffective(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}
