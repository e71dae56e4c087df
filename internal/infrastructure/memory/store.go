// Package memory implementa los puertos del motor en memoria. Las transacciones se
// serializan y trabajan sobre una copia del estado que se publica solo al confirmar.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type counterKey struct {
	partCode string
	state    entity.State
}

type data struct {
	lots     map[string]*entity.Lot
	counters map[counterKey]*entity.StateCounter
	ledger   []*entity.LedgerEntry
	seq      int64
}

func newData() *data {
	return &data{
		lots:     make(map[string]*entity.Lot),
		counters: make(map[counterKey]*entity.StateCounter),
	}
}

func (d *data) clone() *data {
	c := &data{
		lots:     make(map[string]*entity.Lot, len(d.lots)),
		counters: make(map[counterKey]*entity.StateCounter, len(d.counters)),
		ledger:   append([]*entity.LedgerEntry(nil), d.ledger...),
		seq:      d.seq,
	}
	for id, l := range d.lots {
		c.lots[id] = l.Clone()
	}
	for k, v := range d.counters {
		cp := *v
		c.counters[k] = &cp
	}
	return c
}

// Store almacenamiento en memoria para pruebas y para STORE_DRIVER=memory.
type Store struct {
	txMu      sync.Mutex   // una transacción a la vez
	dataMu    sync.RWMutex // protege committed
	committed *data
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{committed: newData()}
}

// Run ejecuta fn sobre una copia privada del estado. Si fn devuelve nil la copia
// reemplaza al estado confirmado; si no, se descarta.
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	counterRepo repository.CounterRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.dataMu.RLock()
	work := s.committed.clone()
	s.dataMu.RUnlock()

	v := &view{tx: work}
	if err := fn(&lotRepo{v}, &counterRepo{v}, &ledgerRepo{v}); err != nil {
		return err
	}

	s.dataMu.Lock()
	s.committed = work
	s.dataMu.Unlock()
	return nil
}

// Lots repositorio de lecturas confirmadas.
func (s *Store) Lots() repository.LotRepository { return &lotRepo{&view{store: s}} }

// Counters repositorio de lecturas confirmadas.
func (s *Store) Counters() repository.CounterRepository { return &counterRepo{&view{store: s}} }

// Ledger repositorio de lecturas confirmadas.
func (s *Store) Ledger() repository.LedgerRepository { return &ledgerRepo{&view{store: s}} }

// view da acceso a la copia de la transacción (tx) o al estado confirmado (store).
type view struct {
	tx    *data
	store *Store
}

func (v *view) read(fn func(d *data)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.dataMu.RLock()
	defer v.store.dataMu.RUnlock()
	fn(v.store.committed)
}

func (v *view) write(fn func(d *data) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.dataMu.Lock()
	defer v.store.dataMu.Unlock()
	return fn(v.store.committed)
}
