package main

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/internal/infrastructure/memory"
	"github.com/jhoicas/Copias-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Copias-api/internal/infrastructure/redis"
	"github.com/jhoicas/Copias-api/pkg/config"
	"github.com/jhoicas/Copias-api/pkg/logger"
)

type txRunner interface {
	inventory.TxRunner
	ledger.TxRunner
}

// storage repositorios del backend elegido en APP_STORAGE.
type storage struct {
	txRunner     txRunner
	sales        repository.SaleRecordRepository
	items        repository.InventoryItemRepository
	transactions repository.InventoryTransactionRepository
	businesses   repository.BusinessRepository
	roles        repository.UserBusinessRoleRepository
	superAdmins  repository.SuperAdminRepository
	photocopiers repository.PhotocopierRepository
	grants       repository.SharedAccessGrantRepository
	prices       repository.PriceListRepository
	rollover     repository.RolloverStateRepository
	locker       ledger.KeyLocker
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	var st *storage
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		mem := memory.New()
		st = &storage{
			txRunner:     memory.NewTxRunner(mem),
			sales:        mem.SaleRecords(),
			items:        mem.InventoryItems(),
			transactions: mem.InventoryTransactions(),
			businesses:   mem.Businesses(),
			roles:        mem.Roles(),
			superAdmins:  mem.SuperAdmins(),
			photocopiers: mem.Photocopiers(),
			grants:       mem.Grants(),
			prices:       mem.Prices(),
			rollover:     mem.RolloverStates(),
			close:        func() {},
		}
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		st = &storage{
			txRunner:     postgres.NewTxRunner(pool),
			sales:        postgres.NewSaleRecordRepository(pool),
			items:        postgres.NewInventoryItemRepository(pool),
			transactions: postgres.NewInventoryTransactionRepository(pool),
			businesses:   postgres.NewBusinessRepository(pool),
			roles:        postgres.NewUserBusinessRoleRepository(pool),
			superAdmins:  postgres.NewSuperAdminRepository(pool),
			photocopiers: postgres.NewPhotocopierRepository(pool),
			grants:       postgres.NewSharedAccessGrantRepository(pool),
			prices:       postgres.NewPriceListRepository(pool),
			rollover:     postgres.NewRolloverStateRepository(pool),
			close:        pool.Close,
		}
	}

	// Redis opcional: estado de rollover por dispositivo y bloqueo por clave de venta.
	client, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, se usa bloqueo local")
		client = nil
	}
	if client == nil {
		st.locker = memory.NewKeyLocker()
		return st, nil
	}
	st.rollover = infraredis.NewRolloverStateStore(client)
	st.locker = infraredis.NewKeyLocker(client, cfg.Redis.LockTTL())
	closeDB := st.close
	st.close = func() {
		_ = client.Close()
		closeDB()
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis conectado")
	return st, nil
}
