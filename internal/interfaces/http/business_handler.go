package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/access"
	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// BusinessHandler negocios, roles, fotocopiadoras y lista de precios.
type BusinessHandler struct {
	svc *access.BusinessService
	log *logger.Logger
}

// NewBusinessHandler construye el handler.
func NewBusinessHandler(svc *access.BusinessService, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{svc: svc, log: log.Named("business_handler")}
}

// Create godoc
// @Summary      Crear negocio
// @Description  Quien lo crea queda como dueño con rol admin.
// @Tags         businesses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBusinessRequest  true  "Nombre"
// @Success      201  {object}  dto.BusinessResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/businesses [post]
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBusinessRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.CreateBusiness(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Negocios del usuario
// @Tags         businesses
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BusinessResponse
// @Router       /api/businesses [get]
func (h *BusinessHandler) List(c *fiber.Ctx) error {
	out, err := h.svc.ListBusinesses(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListRoles godoc
// @Summary      Roles del negocio
// @Tags         businesses
// @Security     Bearer
// @Produce      json
// @Param        businessId  path  string  true  "ID del negocio"
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/businesses/{businessId}/roles [get]
func (h *BusinessHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.svc.ListRoles(c.UserContext(), GetUserID(c), c.Params("businessId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AssignRole godoc
// @Summary      Asignar rol
// @Tags         businesses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        businessId  path  string                 true  "ID del negocio"
// @Param        body        body  dto.AssignRoleRequest  true  "user_id y role (admin|operador|viewer)"
// @Success      200  {object}  dto.RoleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/roles [put]
func (h *BusinessHandler) AssignRole(c *fiber.Ctx) error {
	var in dto.AssignRoleRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.AssignRole(c.UserContext(), GetUserID(c), c.Params("businessId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveRole godoc
// @Summary      Quitar rol
// @Tags         businesses
// @Security     Bearer
// @Param        businessId  path  string  true  "ID del negocio"
// @Param        userId      path  string  true  "Usuario"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/roles/{userId} [delete]
func (h *BusinessHandler) RemoveRole(c *fiber.Ctx) error {
	if err := h.svc.RemoveRole(c.UserContext(), GetUserID(c), c.Params("businessId"), c.Params("userId")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreatePhotocopier godoc
// @Summary      Alta de fotocopiadora
// @Tags         photocopiers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        businessId  path  string                        true  "ID del negocio"
// @Param        body        body  dto.CreatePhotocopierRequest  true  "Nombre y dueño opcional"
// @Success      201  {object}  dto.PhotocopierResponse
// @Router       /api/businesses/{businessId}/photocopiers [post]
func (h *BusinessHandler) CreatePhotocopier(c *fiber.Ctx) error {
	var in dto.CreatePhotocopierRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.CreatePhotocopier(c.UserContext(), GetUserID(c), c.Params("businessId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListPhotocopiers godoc
// @Summary      Fotocopiadoras del negocio
// @Tags         photocopiers
// @Security     Bearer
// @Produce      json
// @Param        businessId  path  string  true  "ID del negocio"
// @Success      200  {array}  dto.PhotocopierResponse
// @Router       /api/businesses/{businessId}/photocopiers [get]
func (h *BusinessHandler) ListPhotocopiers(c *fiber.Ctx) error {
	out, err := h.svc.ListPhotocopiers(c.UserContext(), GetUserID(c), c.Params("businessId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdatePhotocopier godoc
// @Summary      Renombrar fotocopiadora
// @Tags         photocopiers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        photocopierId  path  string                        true  "ID de la fotocopiadora"
// @Param        body           body  dto.UpdatePhotocopierRequest  true  "Nombre"
// @Success      200  {object}  dto.PhotocopierResponse
// @Router       /api/photocopiers/{photocopierId} [put]
func (h *BusinessHandler) UpdatePhotocopier(c *fiber.Ctx) error {
	var in dto.UpdatePhotocopierRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.UpdatePhotocopier(c.UserContext(), GetUserID(c), c.Params("photocopierId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListPrices godoc
// @Summary      Lista de precios
// @Tags         prices
// @Security     Bearer
// @Produce      json
// @Param        businessId  path  string  true  "ID del negocio"
// @Success      200  {array}  dto.PriceResponse
// @Router       /api/businesses/{businessId}/prices [get]
func (h *BusinessHandler) ListPrices(c *fiber.Ctx) error {
	out, err := h.svc.ListPrices(c.UserContext(), GetUserID(c), c.Params("businessId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpsertPrice godoc
// @Summary      Crear o reemplazar precio
// @Tags         prices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        businessId  path  string                  true  "ID del negocio"
// @Param        body        body  dto.UpsertPriceRequest  true  "kind, item_key, price, is_active"
// @Success      200  {object}  dto.PriceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/prices [put]
func (h *BusinessHandler) UpsertPrice(c *fiber.Ctx) error {
	var in dto.UpsertPriceRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.UpsertPrice(c.UserContext(), GetUserID(c), c.Params("businessId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
