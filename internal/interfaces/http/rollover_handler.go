package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/application/rollover"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// RolloverHandler avance diario de contadores por dispositivo.
type RolloverHandler struct {
	engine *rollover.Engine
	log    *logger.Logger
}

func NewRolloverHandler(engine *rollover.Engine, log *logger.Logger) *RolloverHandler {
	return &RolloverHandler{engine: engine, log: log.Named("rollover_handler")}
}

// Run godoc
// @Summary      Rollover diario
// @Description  Si el dispositivo no ha hecho rollover hoy, today pasa a yesterday y se reinician today y errors. No escribe ventas.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        deviceId  path  string               true  "Identificador del dispositivo"
// @Param        body      body  dto.RolloverRequest  true  "Contadores actuales"
// @Success      200  {object}  dto.RolloverResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/devices/{deviceId}/rollover [post]
func (h *RolloverHandler) Run(c *fiber.Ctx) error {
	var in dto.RolloverRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	counters, err := serviceCounters(in.Counters)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.engine.Run(c.UserContext(), c.Params("deviceId"), counters)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RolloverResponse{
		Rolled:         res.Rolled,
		Date:           entity.FormatDate(res.Date),
		Counters:       dto.CountersToJSON(res.Counters),
		DiscardedToday: res.DiscardedToday,
	})
}
