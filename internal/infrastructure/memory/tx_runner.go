package memory

import (
	"context"

	"github.com/jhoicas/Copias-api/internal/application/inventory"
	"github.com/jhoicas/Copias-api/internal/application/ledger"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks de forma atómica sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con los repos de inventario; si fn falla no queda ningún cambio.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	txs repository.InventoryTransactionRepository,
) error) error {
	return r.s.atomic(func() error {
		return fn(&InventoryItemRepo{s: r.s, inTx: true}, &InventoryTransactionRepo{s: r.s, inTx: true})
	})
}

// RunLedger ejecuta fn con el repo del libro de ventas; si fn falla no queda ningún cambio.
func (r *TxRunner) RunLedger(ctx context.Context, fn func(sales repository.SaleRecordRepository) error) error {
	return r.s.atomic(func() error {
		return fn(&SaleRecordRepo{s: r.s, inTx: true})
	})
}
