package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/Copias-api/internal/domain"
)

// idParam devuelve el parámetro de ruta name si es un UUID.
// Negocios, fotocopiadoras e insumos se identifican con UUID; otro valor no existe.
func idParam(c *fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		return "", fmt.Errorf("%s %q: %w", name, v, domain.ErrNotFound)
	}
	return v, nil
}
