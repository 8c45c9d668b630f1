// Package rollover avanza los contadores al empezar un nuevo día de negocio.
// Nunca toca el libro de ventas: solo decide qué valores muestra la captura.
package rollover

import (
	"context"
	"time"

	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// Result contadores después de evaluar el rollover.
type Result struct {
	Rolled   bool                                 `json:"rolled"`
	Date     time.Time                            `json:"date"`
	Counters map[entity.ServiceKey]entity.Counter `json:"counters"`
	// DiscardedToday unidades vendidas que traían los contadores y que el rollover colapsó.
	// Distinto de cero indica que el día anterior pudo no haberse guardado.
	DiscardedToday int `json:"discarded_today"`
}

// Apply función pura: si state no existe o su fecha no es today, cada contador pasa a
// {Yesterday: Today, Today: 0, Errors: 0}; si no, se devuelven sin cambios.
func Apply(state *entity.RolloverState, counters map[entity.ServiceKey]entity.Counter, today time.Time) Result {
	today = entity.NormalizeDate(today)
	out := make(map[entity.ServiceKey]entity.Counter, len(counters))
	if state != nil && state.LastRolloverDate != nil && entity.NormalizeDate(*state.LastRolloverDate).Equal(today) {
		for k, c := range counters {
			out[k] = c
		}
		return Result{Date: today, Counters: out}
	}
	discarded := 0
	for k, c := range counters {
		discarded += c.Sold()
		out[k] = c.RolledOver()
	}
	return Result{Rolled: true, Date: today, Counters: out, DiscardedToday: discarded}
}

// Engine aplica Apply con el estado persistido por dispositivo.
type Engine struct {
	stateRepo repository.RolloverStateRepository
	clock     clock.Clock
	loc       *time.Location
	log       *logger.Logger
}

// NewEngine construye el motor. loc es la zona horaria del negocio.
func NewEngine(stateRepo repository.RolloverStateRepository, clk clock.Clock, loc *time.Location, log *logger.Logger) *Engine {
	return &Engine{stateRepo: stateRepo, clock: clk, loc: loc, log: log.Named("rollover")}
}

// Run evalúa el rollover para el dispositivo y guarda la nueva fecha si lo aplicó.
func (e *Engine) Run(ctx context.Context, deviceID string, counters map[entity.ServiceKey]entity.Counter) (Result, error) {
	if deviceID == "" {
		return Result{}, domain.Invalid("device_id", "requerido")
	}
	for k, c := range counters {
		if !k.Valid() {
			return Result{}, domain.Invalid("counters", "servicio desconocido "+string(k))
		}
		if err := c.Validate(); err != nil {
			return Result{}, err
		}
	}

	now := e.clock.Now()
	today := entity.DateIn(now, e.loc)
	state, err := e.stateRepo.Get(ctx, deviceID)
	if err != nil {
		return Result{}, domain.Persistence("get rollover state", err)
	}
	res := Apply(state, counters, today)
	if !res.Rolled {
		return res, nil
	}
	if err := e.stateRepo.Save(ctx, &entity.RolloverState{DeviceID: deviceID, LastRolloverDate: &today, UpdatedAt: now}); err != nil {
		return Result{}, domain.Persistence("save rollover state", err)
	}
	if res.DiscardedToday > 0 {
		e.log.Warn().
			Str("device_id", deviceID).
			Str("date", entity.FormatDate(today)).
			Int("discarded_sold", res.DiscardedToday).
			Msg("rollover descartó ventas de la captura; verificar que el día anterior se guardó")
	}
	return res, nil
}
