package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// GrantHandler permisos compartidos por módulo y consulta de acceso.
type GrantHandler struct {
	grants *access.GrantService
	access *access.Service
	log    *logger.Logger
}

// NewGrantHandler construye el handler.
func NewGrantHandler(grants *access.GrantService, acc *access.Service, log *logger.Logger) *GrantHandler {
	return &GrantHandler{grants: grants, access: acc, log: log.Named("grant_handler")}
}

func toGrantResponses(in []*entity.SharedAccessGrant) []dto.GrantResponse {
	out := make([]dto.GrantResponse, 0, len(in))
	for _, g := range in {
		out = append(out, access.ToGrantResponse(g))
	}
	return out
}

// Upsert godoc
// @Summary      Otorgar módulo
// @Description  Crea o reactiva el permiso (dueño, invitado, fotocopiadora, módulo). Solo el dueño de la fotocopiadora.
// @Tags         grants
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        photocopierId  path  string            true  "ID de la fotocopiadora"
// @Param        body           body  dto.GrantRequest  true  "grantee_id, module, expires_at opcional"
// @Success      200  {object}  dto.GrantResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/photocopiers/{photocopierId}/grants [put]
func (h *GrantHandler) Upsert(c *fiber.Ctx) error {
	pcID, err := idParam(c, "photocopierId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.GrantRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	g, err := h.grants.Grant(c.UserContext(), GetUserID(c), access.GrantInput{
		GranteeID:     in.GranteeID,
		PhotocopierID: pcID,
		Module:        entity.Module(in.Module),
		ExpiresAt:     in.ExpiresAt,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(access.ToGrantResponse(g))
}

// Revoke godoc
// @Summary      Revocar módulo
// @Description  Desactiva el permiso; surte efecto en la siguiente verificación.
// @Tags         grants
// @Security     Bearer
// @Param        photocopierId  path  string  true  "ID de la fotocopiadora"
// @Param        granteeId      path  string  true  "Invitado"
// @Param        module         path  string  true  "copias|reportes|historial|configuracion"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/photocopiers/{photocopierId}/grants/{granteeId}/{module} [delete]
func (h *GrantHandler) Revoke(c *fiber.Ctx) error {
	pcID, err := idParam(c, "photocopierId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	err = h.grants.Revoke(c.UserContext(), GetUserID(c), pcID, c.Params("granteeId"), entity.Module(c.Params("module")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Permisos de la fotocopiadora
// @Tags         grants
// @Security     Bearer
// @Produce      json
// @Param        photocopierId  path  string  true  "ID de la fotocopiadora"
// @Success      200  {array}  dto.GrantResponse
// @Router       /api/photocopiers/{photocopierId}/grants [get]
func (h *GrantHandler) List(c *fiber.Ctx) error {
	pcID, err := idParam(c, "photocopierId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.grants.ListForPhotocopier(c.UserContext(), GetUserID(c), pcID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toGrantResponses(list))
}

// Received godoc
// @Summary      Permisos recibidos
// @Tags         grants
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.GrantResponse
// @Router       /api/grants/received [get]
func (h *GrantHandler) Received(c *fiber.Ctx) error {
	list, err := h.grants.ListReceived(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toGrantResponses(list))
}

// CheckAccess godoc
// @Summary      ¿Puedo entrar a este módulo?
// @Description  Resuelve el principal del usuario (super_admin, dueño, miembro o invitado) para la fotocopiadora.
// @Tags         grants
// @Security     Bearer
// @Produce      json
// @Param        photocopierId  path  string  true  "ID de la fotocopiadora"
// @Param        module         path  string  true  "copias|reportes|historial|configuracion"
// @Success      200  {object}  dto.AccessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/photocopiers/{photocopierId}/access/{module} [get]
func (h *GrantHandler) CheckAccess(c *fiber.Ctx) error {
	pcID, err := idParam(c, "photocopierId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	module := entity.Module(c.Params("module"))
	if !module.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "módulo desconocido: " + string(module)})
	}
	d, err := h.access.Resolve(c.UserContext(), GetUserID(c), pcID, module, nil)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(access.ToAccessResponse(d))
}
