package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
	"github.com/jhoicas/Copias-api/internal/domain/repository"
)

var _ repository.SaleRecordRepository = (*SaleRecordRepo)(nil)

// SaleRecordRepo libro de ventas en memoria.
type SaleRecordRepo struct {
	s    *Store
	inTx bool
}

func matchesKey(r entity.SaleRecord, key entity.SaleKey) bool {
	return r.OwnerID == key.OwnerID && r.PhotocopierID == key.PhotocopierID &&
		r.Date.Equal(entity.NormalizeDate(key.Date))
}

// DeleteByKey borra las líneas de la clave.
func (r *SaleRecordRepo) DeleteByKey(ctx context.Context, key entity.SaleKey) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "sale_records.delete_by_key"); err != nil {
		return err
	}
	kept := r.s.d.sales[:0:0]
	for _, rec := range r.s.d.sales {
		if !matchesKey(rec, key) {
			kept = append(kept, rec)
		}
	}
	r.s.d.sales = kept
	return nil
}

// CreateBatch agrega las líneas.
func (r *SaleRecordRepo) CreateBatch(ctx context.Context, records []*entity.SaleRecord) error {
	defer r.s.lockWrite(r.inTx)()
	if err := r.s.check(ctx, "sale_records.create_batch"); err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rec.Date = entity.NormalizeDate(rec.Date)
		r.s.d.sales = append(r.s.d.sales, *rec)
	}
	return nil
}

// ListByKey lista las líneas de la clave en orden de inserción.
func (r *SaleRecordRepo) ListByKey(ctx context.Context, key entity.SaleKey) ([]*entity.SaleRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "sale_records.list_by_key"); err != nil {
		return nil, err
	}
	var out []*entity.SaleRecord
	for _, rec := range r.s.d.sales {
		if matchesKey(rec, key) {
			c := rec
			out = append(out, &c)
		}
	}
	return out, nil
}

// ListByRange lista las líneas entre from y to (inclusive), ordenadas por fecha.
func (r *SaleRecordRepo) ListByRange(ctx context.Context, ownerID, photocopierID string, from, to time.Time) ([]*entity.SaleRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.check(ctx, "sale_records.list_by_range"); err != nil {
		return nil, err
	}
	from, to = entity.NormalizeDate(from), entity.NormalizeDate(to)
	var out []*entity.SaleRecord
	for _, rec := range r.s.d.sales {
		if rec.OwnerID != ownerID || rec.PhotocopierID != photocopierID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		c := rec
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
