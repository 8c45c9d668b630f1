package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// photocopierChecker contrato mínimo del middleware por módulo. Lo implementa *access.Service.
type photocopierChecker interface {
	CanAccess(ctx context.Context, userID, photocopierID string, module entity.Module, minRole *entity.Role) (bool, error)
}

// businessChecker contrato mínimo del middleware por negocio. Lo implementa *access.Service.
type businessChecker interface {
	CanAccessBusiness(ctx context.Context, userID, businessID string, minRole entity.Role) (bool, error)
}

// RequirePhotocopierAccess verifica acceso al módulo de la fotocopiadora del path (:photocopierId).
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 401 Unauthorized → no hay user_id en el contexto.
//   - 404 Not Found → :photocopierId no es un UUID.
//   - 503 Service Unavailable → fallo al consultar el almacenamiento.
//   - 403 Forbidden → acceso denegado; el handler no se ejecuta.
func RequirePhotocopierAccess(module entity.Module, minRole *entity.Role, checker photocopierChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}

		pcID, err := idParam(c, "photocopierId")
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "fotocopiadora no encontrada"})
		}

		ok, err := checker.CanAccess(c.UserContext(), userID, pcID, module, minRole)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "ACCESS_CHECK_FAILED",
				Message: "no se pudo verificar el acceso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "sin acceso al módulo '" + string(module) + "' de esta fotocopiadora",
			})
		}
		return c.Next()
	}
}

// RequireBusinessRole igual que RequirePhotocopierAccess pero con el rol en el negocio de :businessId.
func RequireBusinessRole(minRole entity.Role, checker businessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "user_id no encontrado en el token"})
		}
		bizID, err := idParam(c, "businessId")
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "negocio no encontrado"})
		}
		ok, err := checker.CanAccessBusiness(c.UserContext(), userID, bizID, minRole)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "ACCESS_CHECK_FAILED", Message: "no se pudo verificar el acceso, intente más tarde"})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "se requiere rol " + string(minRole) + " en el negocio"})
		}
		return c.Next()
	}
}
