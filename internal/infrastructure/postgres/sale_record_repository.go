package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.SaleRecordRepository = (*SaleRecordRepo)(nil)

// SaleRecordRepo libro de ventas diarias sobre PostgreSQL (usable con pool o tx).
type SaleRecordRepo struct {
	q Querier
}

// NewSaleRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRecordRepository(q Querier) *SaleRecordRepo {
	return &SaleRecordRepo{q: q}
}

const saleRecordColumns = `id, owner_id, business_id, photocopier_id, sale_date, kind, item_key,
	quantity, unit_price, total, previous_counter, current_counter, error_count,
	start_stock, end_stock, created_by, created_at`

// DeleteByKey borra todas las líneas del día de la fotocopiadora.
func (r *SaleRecordRepo) DeleteByKey(ctx context.Context, key entity.SaleKey) error {
	query := `DELETE FROM sale_records WHERE owner_id = $1 AND photocopier_id = $2 AND sale_date = $3`
	_, err := r.q.Exec(ctx, query, key.OwnerID, key.PhotocopierID, entity.NormalizeDate(key.Date))
	if err != nil {
		return fmt.Errorf("delete sale records: %w", err)
	}
	return nil
}

// CreateBatch inserta las líneas con un solo round-trip (pgx.Batch).
func (r *SaleRecordRepo) CreateBatch(ctx context.Context, records []*entity.SaleRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO sale_records (` + saleRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	batch := &pgx.Batch{}
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		batch.Queue(query,
			rec.ID, rec.OwnerID, rec.BusinessID, rec.PhotocopierID, entity.NormalizeDate(rec.Date),
			string(rec.Kind), rec.ItemKey, rec.Quantity, rec.UnitPrice, rec.Total,
			rec.PreviousCounter, rec.CurrentCounter, rec.ErrorCount, rec.StartStock, rec.EndStock,
			rec.CreatedBy, rec.CreatedAt,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert sale record: %w", err)
		}
	}
	return nil
}

// ListByKey líneas del día en orden de inserción.
func (r *SaleRecordRepo) ListByKey(ctx context.Context, key entity.SaleKey) ([]*entity.SaleRecord, error) {
	query := `SELECT ` + saleRecordColumns + ` FROM sale_records
		WHERE owner_id = $1 AND photocopier_id = $2 AND sale_date = $3
		ORDER BY created_at, kind, item_key`
	return r.list(ctx, "list sale records by key", query, key.OwnerID, key.PhotocopierID, entity.NormalizeDate(key.Date))
}

// ListByRange líneas con fecha en [from, to].
func (r *SaleRecordRepo) ListByRange(ctx context.Context, ownerID, photocopierID string, from, to time.Time) ([]*entity.SaleRecord, error) {
	query := `SELECT ` + saleRecordColumns + ` FROM sale_records
		WHERE owner_id = $1 AND photocopier_id = $2 AND sale_date BETWEEN $3 AND $4
		ORDER BY sale_date, created_at, kind, item_key`
	return r.list(ctx, "list sale records by range", query, ownerID, photocopierID, entity.NormalizeDate(from), entity.NormalizeDate(to))
}

func (r *SaleRecordRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.SaleRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.SaleRecord
	for rows.Next() {
		var rec entity.SaleRecord
		var kind string
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &rec.BusinessID, &rec.PhotocopierID, &rec.Date, &kind, &rec.ItemKey,
			&rec.Quantity, &rec.UnitPrice, &rec.Total, &rec.PreviousCounter, &rec.CurrentCounter, &rec.ErrorCount,
			&rec.StartStock, &rec.EndStock, &rec.CreatedBy, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale record: %w", err)
		}
		rec.Kind = entity.SaleKind(kind)
		rec.Date = entity.NormalizeDate(rec.Date)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
