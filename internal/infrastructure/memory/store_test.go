package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
	"github.com/jhoicas/Copias-api/internal/infrastructure/memory"
)

func TestTxRunner_FalloRevierteSoloLoPropio(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	runner := memory.NewTxRunner(store)

	started := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- runner.Run(ctx, func(items repository.InventoryItemRepository, _ repository.InventoryTransactionRepository) error {
			if err := items.Create(ctx, &entity.InventoryItem{BusinessID: "biz-1", SupplyName: "Dentro"}); err != nil {
				return err
			}
			close(started)
			<-release
			return errors.New("boom")
		})
	}()
	<-started

	// Escritura suelta mientras la transacción sigue abierta.
	createErr := make(chan error, 1)
	go func() {
		createErr <- store.InventoryItems().Create(ctx, &entity.InventoryItem{BusinessID: "biz-1", SupplyName: "Fuera"})
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.EqualError(t, <-txErr, "boom")
	require.NoError(t, <-createErr)

	items, err := store.InventoryItems().ListByBusiness(ctx, "biz-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fuera", items[0].SupplyName)
}

func TestTxRunner_RunLedgerRevierteElDia(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	runner := memory.NewTxRunner(store)
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	key := entity.SaleKey{OwnerID: "owner", PhotocopierID: "pc-1", Date: day}

	require.NoError(t, store.SaleRecords().CreateBatch(ctx, []*entity.SaleRecord{
		{OwnerID: "owner", PhotocopierID: "pc-1", Date: day, Kind: entity.SaleKindService, ItemKey: "bwCopies", Quantity: decimal.NewFromInt(10)},
	}))

	store.FailOn("sale_records.create_batch", errors.New("conexión perdida"))
	err := runner.RunLedger(ctx, func(sales repository.SaleRecordRepository) error {
		if err := sales.DeleteByKey(ctx, key); err != nil {
			return err
		}
		return sales.CreateBatch(ctx, nil)
	})
	require.Error(t, err)

	recs, err := store.SaleRecords().ListByKey(ctx, key)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
