package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

// SaleRecordRepository define el puerto de persistencia del libro de ventas diarias.
// DeleteByKey + CreateBatch deben ejecutarse dentro de la misma transacción (ver ledger.TxRunner).
type SaleRecordRepository interface {
	// DeleteByKey borra todas las líneas (de cualquier tipo) de la clave.
	DeleteByKey(ctx context.Context, key entity.SaleKey) error
	// CreateBatch inserta las líneas; asigna ID si viene vacío.
	CreateBatch(ctx context.Context, records []*entity.SaleRecord) error
	ListByKey(ctx context.Context, key entity.SaleKey) ([]*entity.SaleRecord, error)
	// ListByRange lista las líneas con fecha en [from, to], ordenadas por fecha.
	ListByRange(ctx context.Context, ownerID, photocopierID string, from, to time.Time) ([]*entity.SaleRecord, error)
}
