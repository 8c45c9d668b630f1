package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de insumos y movimientos (protegido).
type InventoryHandler struct {
	inventory     *inventory.InventoryUseCase
	register      *inventory.RegisterTransactionUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	inv *inventory.InventoryUseCase,
	register *inventory.RegisterTransactionUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{inventory: inv, register: register, replenishment: replenishment, log: log.Named("inventory_handler")}
}

// List godoc
// @Summary      Inventario del negocio
// @Description  Reconcilia duplicados y huérfanos (best-effort) y devuelve los insumos con los que están bajo su umbral.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        businessId  path  string  true  "ID del negocio"
// @Success      200  {object}  dto.InventoryViewDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.inventory.ListInventory(c.UserContext(), GetUserID(c), c.Params("businessId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateItem godoc
// @Summary      Alta de insumo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        businessId  path  string                          true  "ID del negocio"
// @Param        body        body  dto.CreateInventoryItemRequest  true  "Insumo"
// @Success      201  {object}  dto.InventoryItemDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/inventory/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateInventoryItemRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	item, err := h.inventory.CreateItem(c.UserContext(), GetUserID(c), c.Params("businessId"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToInventoryItemDTO(item))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Insumos bajo su umbral con la cantidad sugerida (umbral x 1.5 - existencia), del mayor déficit al menor.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        businessId  path  string  true  "ID del negocio"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/businesses/{businessId}/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), GetUserID(c), c.Params("businessId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// RegisterTransaction godoc
// @Summary      Registrar compra o ajuste
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        itemId  path  string                          true  "ID del insumo"
// @Param        body    body  dto.RegisterTransactionRequest  true  "type purchase|adjustment, quantity_change, unit_cost (compras)"
// @Success      201  {object}  dto.InventoryTransactionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{itemId}/transactions [post]
func (h *InventoryHandler) RegisterTransaction(c *fiber.Ctx) error {
	itemID, err := idParam(c, "itemId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.RegisterTransactionRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	tx, err := h.register.RegisterTransactionFromRequest(c.UserContext(), GetUserID(c), itemID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToInventoryTransactionDTO(tx))
}

// ListTransactions godoc
// @Summary      Movimientos de un insumo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId  path   string  true   "ID del insumo"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.InventoryTransactionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{itemId}/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	itemID, err := idParam(c, "itemId")
	if err != nil {
		return writeError(c, h.log, err)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if page.Limit > 100 {
		page.Limit = 100
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	out, err := h.inventory.ListTransactions(c.UserContext(), GetUserID(c), itemID, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
