package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/pkg/config"
)

var (
	_ inventory.ReferenceResolver = (*Resolver)(nil)
	_ inventory.IdempotencyGuard  = (*IdempotencyGuard)(nil)
)

// Resolver datos maestros en memoria.
type Resolver struct {
	mu          sync.RWMutex
	parts       map[string]entity.Part
	vendors     map[string]struct{}
	employees   map[string]string // nombre en minúsculas → ID
	unavailable error
}

// NewResolver crea un resolvedor vacío.
func NewResolver() *Resolver {
	return &Resolver{
		parts:     make(map[string]entity.Part),
		vendors:   make(map[string]struct{}),
		employees: make(map[string]string),
	}
}

func (r *Resolver) AddPart(code, name, model string) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[code] = entity.Part{Code: code, Name: name, Model: model}
	return r
}

func (r *Resolver) AddVendor(code string) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vendors[code] = struct{}{}
	return r
}

func (r *Resolver) AddEmployee(id, name string) *Resolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[strings.ToLower(name)] = id
	return r
}

// SetUnavailable hace que todas las consultas fallen con err (nil restablece).
func (r *Resolver) SetUnavailable(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = err
}

func (r *Resolver) check() error {
	if r.unavailable != nil {
		return domain.Wrap(domain.KindTransient, r.unavailable, "datos maestros no disponibles")
	}
	return nil
}

func (r *Resolver) FindPart(_ context.Context, code string) (*entity.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return nil, err
	}
	p, ok := r.parts[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *Resolver) VendorExists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return false, err
	}
	_, ok := r.vendors[code]
	return ok, nil
}

func (r *Resolver) ResolveActorID(_ context.Context, name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return "", err
	}
	return r.employees[strings.ToLower(name)], nil
}

// IdempotencyGuard reserva de claves en memoria (un solo proceso).
type IdempotencyGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewIdempotencyGuard() *IdempotencyGuard {
	return &IdempotencyGuard{keys: make(map[string]struct{})}
}

func (g *IdempotencyGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = struct{}{}
	return true, nil
}

func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

// NewResolverFromSeed crea un resolvedor con los datos maestros del archivo de semilla.
func NewResolverFromSeed(seed *config.Seed) *Resolver {
	r := NewResolver()
	for _, p := range seed.Parts {
		r.AddPart(p.Code, p.Name, p.Model)
	}
	for _, v := range seed.Vendors {
		r.AddVendor(v)
	}
	for _, e := range seed.Employees {
		r.AddEmployee(e.ID, e.Name)
	}
	return r
}
