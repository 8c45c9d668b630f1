// Package memory implementa los puertos de persistencia en memoria (tests y APP_STORAGE=memory).
// Las transacciones se serializan y se revierten restaurando una copia del estado; toda escritura,
// dentro o fuera de una transacción, toma txMu, así que la copia nunca pisa cambios ajenos.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Copias-api/internal/domain/entity"
)

type roleKey struct{ userID, businessID string }

type grantKey struct {
	ownerID, granteeID, photocopierID string
	module                            entity.Module
}

type priceKey struct {
	businessID string
	kind       entity.SaleKind
	itemKey    string
}

type data struct {
	sales        []entity.SaleRecord
	items        []entity.InventoryItem
	txs          []entity.InventoryTransaction
	businesses   map[string]entity.Business
	roles        map[roleKey]entity.UserBusinessRole
	superAdmins  map[string]bool
	photocopiers map[string]entity.Photocopier
	grants       map[grantKey]entity.SharedAccessGrant
	prices       map[priceKey]entity.PriceListEntry
	rollover     map[string]entity.RolloverState
}

func newData() data {
	return data{
		businesses:   map[string]entity.Business{},
		roles:        map[roleKey]entity.UserBusinessRole{},
		superAdmins:  map[string]bool{},
		photocopiers: map[string]entity.Photocopier{},
		grants:       map[grantKey]entity.SharedAccessGrant{},
		prices:       map[priceKey]entity.PriceListEntry{},
		rollover:     map[string]entity.RolloverState{},
	}
}

func (d data) clone() data {
	out := data{
		sales:        append([]entity.SaleRecord(nil), d.sales...),
		items:        append([]entity.InventoryItem(nil), d.items...),
		txs:          append([]entity.InventoryTransaction(nil), d.txs...),
		businesses:   make(map[string]entity.Business, len(d.businesses)),
		roles:        make(map[roleKey]entity.UserBusinessRole, len(d.roles)),
		superAdmins:  make(map[string]bool, len(d.superAdmins)),
		photocopiers: make(map[string]entity.Photocopier, len(d.photocopiers)),
		grants:       make(map[grantKey]entity.SharedAccessGrant, len(d.grants)),
		prices:       make(map[priceKey]entity.PriceListEntry, len(d.prices)),
		rollover:     make(map[string]entity.RolloverState, len(d.rollover)),
	}
	for k, v := range d.businesses {
		out.businesses[k] = v
	}
	for k, v := range d.roles {
		out.roles[k] = v
	}
	for k, v := range d.superAdmins {
		out.superAdmins[k] = v
	}
	for k, v := range d.photocopiers {
		out.photocopiers[k] = v
	}
	for k, v := range d.grants {
		out.grants[k] = v
	}
	for k, v := range d.prices {
		out.prices[k] = v
	}
	for k, v := range d.rollover {
		out.rollover[k] = v
	}
	return out
}

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex // escritores: una transacción abierta o una escritura suelta
	d        data
	failures map[string]error
}

// New crea un store vacío.
func New() *Store {
	return &Store{d: newData(), failures: map[string]error{}}
}

// FailOn hace que la operación op devuelva err hasta ClearFailures. Solo para tests.
// Nombres de operación: "<tabla>.<método>", p. ej. "sale_records.create_batch".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures elimina los fallos inyectados.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// check se llama con s.mu tomado.
func (s *Store) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[op]
}

// lockWrite toma los candados de escritura y devuelve la función que los libera.
// inTx indica que el llamador corre dentro de atomic y ya tiene txMu.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// atomic ejecuta fn de forma serializada; si fn falla el estado vuelve al previo.
func (s *Store) atomic(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.d.clone()
	s.mu.RUnlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// Accesores de repositorios.

func (s *Store) SaleRecords() *SaleRecordRepo                     { return &SaleRecordRepo{s: s} }
func (s *Store) InventoryItems() *InventoryItemRepo               { return &InventoryItemRepo{s: s} }
func (s *Store) InventoryTransactions() *InventoryTransactionRepo { return &InventoryTransactionRepo{s: s} }
func (s *Store) Businesses() *BusinessRepo                        { return &BusinessRepo{s: s} }
func (s *Store) Roles() *UserBusinessRoleRepo                     { return &UserBusinessRoleRepo{s: s} }
func (s *Store) SuperAdmins() *SuperAdminRepo                     { return &SuperAdminRepo{s: s} }
func (s *Store) Photocopiers() *PhotocopierRepo                   { return &PhotocopierRepo{s: s} }
func (s *Store) Grants() *SharedAccessGrantRepo                   { return &SharedAccessGrantRepo{s: s} }
func (s *Store) Prices() *PriceListRepo                           { return &PriceListRepo{s: s} }
func (s *Store) RolloverStates() *RolloverStateRepo               { return &RolloverStateRepo{s: s} }
