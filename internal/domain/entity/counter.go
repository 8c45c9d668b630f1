package entity

import "github.com/jhoicas/Copias-api/internal/domain"

// Counter lectura del contador de un servicio medido (p. ej. copias a color).
// Yesterday lo fija solo el rollover o la carga de un registro persistido; Today y Errors los edita el usuario.
type Counter struct {
	Yesterday int `json:"yesterday"`
	Today     int `json:"today"`
	Errors    int `json:"errors"`
}

// Sold cantidad facturable: max(0, today - errors - yesterday).
func (c Counter) Sold() int {
	sold := c.Today - c.Errors - c.Yesterday
	if sold < 0 {
		return 0
	}
	return sold
}

// SheetsUsed hojas consumidas, incluidas las de error.
func (c Counter) SheetsUsed() int {
	return c.Sold() + c.Errors
}

// RolledOver estado del contador al iniciar un nuevo día de negocio.
func (c Counter) RolledOver() Counter {
	return Counter{Yesterday: c.Today}
}

// IsZero informa si el contador no tiene lecturas.
func (c Counter) IsZero() bool {
	return c.Yesterday == 0 && c.Today == 0 && c.Errors == 0
}

// Validate rechaza lecturas negativas.
func (c Counter) Validate() error {
	switch {
	case c.Yesterday < 0:
		return domain.Invalid("yesterday", "no puede ser negativo")
	case c.Today < 0:
		return domain.Invalid("today", "no puede ser negativo")
	case c.Errors < 0:
		return domain.Invalid("errors", "no puede ser negativo")
	}
	return nil
}
