package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

var (
	_ repository.LotRepository     = (*lotRepo)(nil)
	_ repository.CounterRepository = (*counterRepo)(nil)
	_ repository.LedgerRepository  = (*ledgerRepo)(nil)
)

type lotRepo struct{ v *view }

func (r *lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	return r.v.write(func(d *data) error {
		if _, ok := d.lots[lot.ID]; ok {
			return domain.Validation("el lote %s ya existe", lot.ID)
		}
		d.lots[lot.ID] = lot.Clone()
		return nil
	})
}

func (r *lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	r.v.read(func(d *data) { out = d.lots[id].Clone() })
	return out, nil
}

// GetForUpdate: dentro de la transacción el estado ya es exclusivo.
func (r *lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *lotRepo) Update(_ context.Context, lot *entity.Lot) error {
	return r.v.write(func(d *data) error {
		if _, ok := d.lots[lot.ID]; !ok {
			return domain.ConcurrentModification("lote %s no existe", lot.ID)
		}
		d.lots[lot.ID] = lot.Clone()
		return nil
	})
}

func (r *lotRepo) ListByPart(_ context.Context, partCode string, limit, offset int) ([]*entity.Lot, error) {
	var list []*entity.Lot
	r.v.read(func(d *data) {
		for _, l := range d.lots {
			if l.PartCode == partCode {
				list = append(list, l.Clone())
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

func (r *lotRepo) ListDue(_ context.Context, state entity.State, now time.Time, limit int) ([]*entity.Lot, error) {
	var list []*entity.Lot
	r.v.read(func(d *data) {
		for _, l := range d.lots {
			if l.Active && l.State == state && l.ScheduledAt != nil && !l.ScheduledAt.After(now) {
				list = append(list, l.Clone())
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].ScheduledAt.Equal(*list[j].ScheduledAt) {
			return list[i].ScheduledAt.Before(*list[j].ScheduledAt)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, 0), nil
}

func (r *lotRepo) SumActive(_ context.Context, partCode string) (int64, error) {
	var total int64
	r.v.read(func(d *data) {
		for _, l := range d.lots {
			if l.Active && l.PartCode == partCode {
				total += l.Quantity
			}
		}
	})
	return total, nil
}

func page(list []*entity.Lot, limit, offset int) []*entity.Lot {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

type counterRepo struct{ v *view }

func (r *counterRepo) Get(_ context.Context, partCode string, state entity.State) (*entity.StateCounter, error) {
	out := &entity.StateCounter{PartCode: partCode, State: state}
	r.v.read(func(d *data) {
		if c, ok := d.counters[counterKey{partCode, state}]; ok {
			cp := *c
			out = &cp
		}
	})
	return out, nil
}

func (r *counterRepo) GetForUpdate(ctx context.Context, partCode string, state entity.State) (*entity.StateCounter, error) {
	var out *entity.StateCounter
	err := r.v.write(func(d *data) error {
		k := counterKey{partCode, state}
		c, ok := d.counters[k]
		if !ok {
			c = &entity.StateCounter{PartCode: partCode, State: state, UpdatedAt: time.Now()}
			d.counters[k] = c
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *counterRepo) Upsert(_ context.Context, counter *entity.StateCounter) error {
	return r.v.write(func(d *data) error {
		cp := *counter
		d.counters[counterKey{counter.PartCode, counter.State}] = &cp
		return nil
	})
}

func (r *counterRepo) ListByPart(_ context.Context, partCode string) ([]*entity.StateCounter, error) {
	var list []*entity.StateCounter
	r.v.read(func(d *data) {
		for k, c := range d.counters {
			if k.partCode == partCode {
				cp := *c
				list = append(list, &cp)
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].State < list[j].State })
	return list, nil
}

type ledgerRepo struct{ v *view }

func (r *ledgerRepo) Append(_ context.Context, entry *entity.LedgerEntry) error {
	return r.v.write(func(d *data) error {
		d.seq++
		entry.Seq = d.seq
		cp := *entry
		d.ledger = append(d.ledger, &cp)
		return nil
	})
}

func (r *ledgerRepo) QueryByPartAndState(_ context.Context, partCode string, state entity.State, from, to *time.Time) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	r.v.read(func(d *data) {
		for _, e := range d.ledger {
			if e.PartCode != partCode || e.State != state {
				continue
			}
			if from != nil && e.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && e.CreatedAt.After(*to) {
				continue
			}
			cp := *e
			list = append(list, &cp)
		}
	})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].Seq < list[j].Seq
	})
	return list, nil
}

func (r *ledgerRepo) QueryByLot(_ context.Context, lotID string) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	r.v.read(func(d *data) {
		for _, e := range d.ledger {
			if e.LotID == lotID {
				cp := *e
				list = append(list, &cp)
			}
		}
	})
	entity.SortBySeq(list)
	return list, nil
}
