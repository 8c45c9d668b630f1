// Package ledger escribe y lee el libro de ventas diarias por fotocopiadora.
//
// Cada guardado reemplaza completo el conjunto de líneas de (dueño, fotocopiadora, fecha):
// borra y vuelve a insertar en la misma transacción, así guardar dos veces la misma captura
// produce exactamente las mismas líneas.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/domain"
	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/internal/domain/sales"
	"github.com/jhoicas/Copias-api/pkg/clock"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

// Deps colaboradores del servicio. Locker y Deductor son opcionales.
type Deps struct {
	TxRunner        TxRunner
	SaleRepo        repository.SaleRecordRepository
	PhotocopierRepo repository.PhotocopierRepository
	PriceRepo       repository.PriceListRepository
	Access          AccessChecker
	Locker          KeyLocker
	Deductor        Deductor
	Clock           clock.Clock
	Logger          *logger.Logger
	DeductOnSave    bool
}

// Service libro de ventas.
type Service struct {
	d   Deps
	log *logger.Logger
}

// NewService construye el servicio.
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Service{d: d, log: d.Logger.Named("ledger")}
}

// SaveDailySalesInput captura del día. Los precios faltantes se toman de la lista del negocio.
// DeductInventory nil usa el valor configurado.
type SaveDailySalesInput struct {
	UserID          string
	BusinessID      string
	PhotocopierID   string
	Date            time.Time
	Counters        map[entity.ServiceKey]entity.Counter
	StockItems      map[string]entity.StockItem
	Procedures      []entity.ProcedureEntry
	ServicePrices   map[entity.ServiceKey]decimal.Decimal
	SupplyPrices    map[string]decimal.Decimal
	ProcedurePrices map[string]decimal.Decimal
	DeductInventory *bool
}

// SaveDailySalesResult líneas guardadas. Warning no nil indica que la venta quedó guardada
// pero el inventario puede estar desactualizado.
type SaveDailySalesResult struct {
	Records   []*entity.SaleRecord
	Total     decimal.Decimal
	Deduction *inventory.DeductionResult
	Warning   *domain.DeductionWarning
}

func lockKey(key entity.SaleKey) string {
	return fmt.Sprintf("ledger:%s:%s:%s", key.OwnerID, key.PhotocopierID, entity.FormatDate(key.Date))
}

// SaveDailySales valida, autoriza, calcula y reemplaza las líneas del día; luego descuenta inventario.
func (s *Service) SaveDailySales(ctx context.Context, in SaveDailySalesInput) (*SaveDailySalesResult, error) {
	if in.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	date := entity.NormalizeDate(in.Date)
	build := sales.Input{
		BusinessID:      in.BusinessID,
		PhotocopierID:   in.PhotocopierID,
		CreatedBy:       in.UserID,
		Date:            in.Date,
		Counters:        in.Counters,
		StockItems:      in.StockItems,
		Procedures:      in.Procedures,
		ServicePrices:   in.ServicePrices,
		SupplyPrices:    in.SupplyPrices,
		ProcedurePrices: in.ProcedurePrices,
	}
	if err := sales.Validate(build); err != nil {
		return nil, err
	}

	operador := entity.RoleOperador
	if err := s.d.Access.Authorize(ctx, in.UserID, in.PhotocopierID, entity.ModuleCopias, &operador); err != nil {
		return nil, err
	}
	pc, err := s.photocopier(ctx, in.PhotocopierID)
	if err != nil {
		return nil, err
	}
	if pc.BusinessID != in.BusinessID {
		return nil, domain.Invalid("business_id", "la fotocopiadora no pertenece al negocio")
	}

	if err := s.fillPrices(ctx, &build); err != nil {
		return nil, err
	}
	build.OwnerID = pc.OwnerID
	build.Now = s.d.Clock.Now()
	lines, err := sales.BuildRecords(build)
	if err != nil {
		return nil, err
	}
	records := make([]*entity.SaleRecord, len(lines))
	total := decimal.Zero
	for i := range lines {
		records[i] = &lines[i]
		total = total.Add(lines[i].Total)
	}

	key := entity.SaleKey{OwnerID: pc.OwnerID, PhotocopierID: pc.ID, Date: date}
	release, err := s.lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.d.TxRunner.RunLedger(ctx, func(repo repository.SaleRecordRepository) error {
		if err := repo.DeleteByKey(ctx, key); err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return repo.CreateBatch(ctx, records)
	})
	if err != nil {
		s.log.Error().Err(err).
			Str("photocopier_id", pc.ID).
			Str("date", entity.FormatDate(date)).
			Msg("guardado de ventas falló")
		return nil, domain.Persistence("save daily sales", err)
	}

	res := &SaveDailySalesResult{Records: records, Total: total}
	s.log.Info().
		Str("photocopier_id", pc.ID).
		Str("date", entity.FormatDate(date)).
		Str("user_id", in.UserID).
		Int("lines", len(records)).
		Str("total", total.StringFixed(2)).
		Msg("ventas del día guardadas")

	deduct := s.d.DeductOnSave
	if in.DeductInventory != nil {
		deduct = *in.DeductInventory
	}
	if deduct && s.d.Deductor != nil {
		ded, err := s.d.Deductor.DeductForSales(ctx, inventory.DeductionInput{
			BusinessID:    pc.BusinessID,
			PhotocopierID: pc.ID,
			UserID:        in.UserID,
			Date:          date,
			Counters:      in.Counters,
			StockItems:    in.StockItems,
		})
		if err != nil {
			res.Warning = &domain.DeductionWarning{BusinessID: pc.BusinessID, Err: err}
			s.log.Warn().Err(err).
				Str("business_id", pc.BusinessID).
				Str("photocopier_id", pc.ID).
				Msg("venta guardada; descuento de inventario falló")
		} else {
			res.Deduction = ded
		}
	}
	return res, nil
}

// lock toma la clave del día. Sin locker o con el backend caído se continúa sin bloqueo.
func (s *Service) lock(ctx context.Context, key entity.SaleKey) (func(), error) {
	noop := func() {}
	if s.d.Locker == nil {
		return noop, nil
	}
	k := lockKey(key)
	l, err := s.d.Locker.Obtain(ctx, k)
	if errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	if err != nil {
		s.log.Warn().Err(err).Str("lock_key", k).Msg("no se pudo obtener el bloqueo; se continúa sin bloqueo")
		return noop, nil
	}
	return func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("lock_key", k).Msg("no se pudo liberar el bloqueo")
		}
	}, nil
}

func (s *Service) photocopier(ctx context.Context, id string) (*entity.Photocopier, error) {
	pc, err := s.d.PhotocopierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("get photocopier", err)
	}
	if pc == nil {
		return nil, domain.ErrNotFound
	}
	return pc, nil
}

// fillPrices completa desde la lista de precios activa lo que la captura no trae.
func (s *Service) fillPrices(ctx context.Context, in *sales.Input) error {
	if s.d.PriceRepo == nil {
		return nil
	}
	list, err := s.d.PriceRepo.ListByBusiness(ctx, in.BusinessID, true)
	if err != nil {
		return domain.Persistence("list prices", err)
	}
	svc := copyPrices(in.ServicePrices)
	sup := copyPrices(in.SupplyPrices)
	proc := copyPrices(in.ProcedurePrices)
	for _, p := range list {
		switch p.Kind {
		case entity.SaleKindService:
			k := entity.ServiceKey(p.ItemKey)
			if _, ok := svc[k]; !ok {
				svc[k] = p.Price
			}
		case entity.SaleKindSupply:
			if _, ok := sup[p.ItemKey]; !ok {
				sup[p.ItemKey] = p.Price
			}
		case entity.SaleKindProcedure:
			if _, ok := proc[p.ItemKey]; !ok {
				proc[p.ItemKey] = p.Price
			}
		}
	}
	in.ServicePrices, in.SupplyPrices, in.ProcedurePrices = svc, sup, proc
	return nil
}

func copyPrices[K comparable](m map[K]decimal.Decimal) map[K]decimal.Decimal {
	out := make(map[K]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
