package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/application/dto"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// SalesHandler captura diaria, historial y reportes de una fotocopiadora.
type SalesHandler struct {
	svc   *ledger.Service
	clock clock.Clock
	loc   *time.Location
	log   *logger.Logger
}

// NewSalesHandler construye el handler. loc es la zona del negocio; nil = UTC.
func NewSalesHandler(svc *ledger.Service, clk clock.Clock, loc *time.Location, log *logger.Logger) *SalesHandler {
	if clk == nil {
		clk = clock.System{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SalesHandler{svc: svc, clock: clk, loc: loc, log: log.Named("sales_handler")}
}

func serviceCounters(in map[string]entity.Counter) (map[entity.ServiceKey]entity.Counter, error) {
	out := make(map[entity.ServiceKey]entity.Counter, len(in))
	for k, c := range in {
		key := entity.ServiceKey(k)
		if !key.Valid() {
			return nil, domain.Invalid("counters", "servicio desconocido "+k)
		}
		out[key] = c
	}
	return out, nil
}

// Save godoc
// @Summary      Guardar ventas del día
// @Description  Reemplaza completo el día (dueño, fotocopiadora, fecha) y descuenta inventario.
// @Description  inventory_warning indica que la venta quedó guardada pero el inventario puede estar desactualizado.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        photocopierId  path  string                     true  "ID de la fotocopiadora"
// @Param        date           path  string                     true  "Fecha YYYY-MM-DD"
// @Param        body           body  dto.SaveDailySalesRequest  true  "Contadores, insumos y trámites"
// @Success      200  {object}  dto.SaveDailySalesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/photocopiers/{photocopierId}/sales/{date} [put]
func (h *SalesHandler) Save(c *fiber.Ctx) error {
	date, err := entity.ParseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "fecha en formato YYYY-MM-DD"})
	}
	var in dto.SaveDailySalesRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	counters, err := serviceCounters(in.Counters)
	if err != nil {
		return writeError(c, h.log, err)
	}
	servicePrices := make(map[entity.ServiceKey]decimal.Decimal, len(in.ServicePrices))
	for k, p := range in.ServicePrices {
		servicePrices[entity.ServiceKey(k)] = p
	}

	res, err := h.svc.SaveDailySales(c.UserContext(), ledger.SaveDailySalesInput{
		UserID:          GetUserID(c),
		BusinessID:      in.BusinessID,
		PhotocopierID:   c.Params("photocopierId"),
		Date:            date,
		Counters:        counters,
		StockItems:      in.StockItems,
		Procedures:      in.Procedures,
		ServicePrices:   servicePrices,
		SupplyPrices:    in.SupplyPrices,
		ProcedurePrices: in.ProcedurePrices,
		DeductInventory: in.DeductInventory,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	out := dto.SaveDailySalesResponse{Records: dto.ToSaleRecordDTOs(res.Records), Total: res.Total}
	if res.Deduction != nil {
		out.SheetsUsed = res.Deduction.SheetsUsed
		out.InventoryApplied = len(res.Deduction.Applied)
		out.InventorySkipped = res.Deduction.Skipped
	}
	if res.Warning != nil {
		out.InventoryWarning = res.Warning.Error()
	}
	return c.JSON(out)
}

// Load godoc
// @Summary      Cargar ventas del día
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        photocopierId  path  string  true  "ID de la fotocopiadora"
// @Param        date           path  string  true  "Fecha YYYY-MM-DD"
// @Success      200  {object}  dto.DailySalesResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/photocopiers/{photocopierId}/sales/{date} [get]
func (h *SalesHandler) Load(c *fiber.Ctx) error {
	date, err := entity.ParseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "fecha en formato YYYY-MM-DD"})
	}
	ds, err := h.svc.LoadDailySales(c.UserContext(), GetUserID(c), c.Params("photocopierId"), date)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DailySalesResponse{
		PhotocopierID: ds.PhotocopierID,
		Date:          entity.FormatDate(ds.Date),
		Counters:      dto.CountersToJSON(ds.Counters),
		StockItems:    ds.StockItems,
		Procedures:    ds.Procedures,
		Records:       dto.ToSaleRecordDTOs(ds.Records),
		Total:         ds.Total,
	})
}

// parseRange from/to en query; por defecto los últimos 7 días hasta hoy en la zona del negocio.
func (h *SalesHandler) parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := entity.DateIn(h.clock.Now(), h.loc)
	from := to.AddDate(0, 0, -6)
	var err error
	if s := c.Query("from"); s != "" {
		if from, err = entity.ParseDate(s); err != nil {
			return from, to, domain.Invalid("from", "formato YYYY-MM-DD")
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err = entity.ParseDate(s); err != nil {
			return from, to, domain.Invalid("to", "formato YYYY-MM-DD")
		}
	}
	return from, to, nil
}

// History godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        photocopierId  path   string  true   "ID de la fotocopiadora"
// @Param        from           query  string  false  "Desde YYYY-MM-DD"
// @Param        to             query  string  false  "Hasta YYYY-MM-DD"
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/photocopiers/{photocopierId}/history [get]
func (h *SalesHandler) History(c *fiber.Ctx) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	records, err := h.svc.ListHistory(c.UserContext(), GetUserID(c), c.Params("photocopierId"), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Total)
	}
	return c.JSON(dto.HistoryResponse{
		From:    entity.FormatDate(from),
		To:      entity.FormatDate(to),
		Records: dto.ToSaleRecordDTOs(records),
		Total:   total,
	})
}

// Summary godoc
// @Summary      Resumen de ventas por día y tipo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        photocopierId  path   string  true   "ID de la fotocopiadora"
// @Param        from           query  string  false  "Desde YYYY-MM-DD"
// @Param        to             query  string  false  "Hasta YYYY-MM-DD"
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/photocopiers/{photocopierId}/reports/summary [get]
func (h *SalesHandler) Summary(c *fiber.Ctx) error {
	from, to, err := h.parseRange(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	sum, err := h.svc.Summary(c.UserContext(), GetUserID(c), c.Params("photocopierId"), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.SummaryResponse{
		From:   entity.FormatDate(from),
		To:     entity.FormatDate(to),
		Days:   make([]dto.DaySummaryDTO, 0, len(sum.Days)),
		ByKind: kindTotals(sum.ByKind),
		Total:  sum.Total,
	}
	for _, d := range sum.Days {
		out.Days = append(out.Days, dto.DaySummaryDTO{Date: entity.FormatDate(d.Date), ByKind: kindTotals(d.ByKind), Total: d.Total})
	}
	return c.JSON(out)
}

func kindTotals(in map[entity.SaleKind]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
