package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and ledger.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) inTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	txs repository.InventoryTransactionRepository,
) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewInventoryItemRepository(q), NewInventoryTransactionRepository(q))
	})
}

// RunLedger igual que Run pero con el repo del libro de ventas (borrar + insertar el día).
func (r *TxRunner) RunLedger(ctx context.Context, fn func(sales repository.SaleRecordRepository) error) error {
	return r.inTx(ctx, func(q Querier) error {
		return fn(NewSaleRecordRepository(q))
	})
}
