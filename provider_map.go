package entmap

import (
	"reflect"
	"sort"
	"sync"

	"github.com/go-pg/entmap/internal"
	"github.com/go-pg/entmap/orm"
)

// MapProvider is a Provider backed by explicitly added registrations.
// It never scans, so installing it skips discovery altogether.
type MapProvider struct {
	mu   sync.RWMutex
	regs map[reflect.Type]*Registration
}

var _ Provider = (*MapProvider)(nil)

func NewMapProvider() *MapProvider {
	return &MapProvider{
		regs: make(map[reflect.Type]*Registration),
	}
}

// Add adds the registration. Adding a second registration for the same
// type fails with *DuplicateMappingError.
func (p *MapProvider) Add(reg *Registration) error {
	if reg == nil || reg.Type == nil {
		return ErrInvalidArgument
	}
	if reg.Source == "" {
		reg.Source = internal.Caller(2)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.regs[reg.Type]; ok {
		return &DuplicateMappingError{
			Type:   reg.Type,
			First:  prev.Source,
			Second: reg.Source,
		}
	}
	p.regs[reg.Type] = reg
	return nil
}

func (p *MapProvider) EnsureReady() error {
	return nil
}

func (p *MapProvider) Lookup(typ reflect.Type) (*Registration, error) {
	p.mu.RLock()
	reg, ok := p.regs[typ]
	p.mu.RUnlock()
	if !ok {
		return nil, &MappingNotFoundError{Type: typ}
	}
	return reg, nil
}

func (p *MapProvider) Registrations() []*Registration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedRegistrations(p.regs)
}

// Register adds m to the provider.
func Register[T any](p *MapProvider, m orm.EntityMapper[T]) error {
	reg, err := NewRegistration[T](m)
	if err != nil {
		return err
	}
	reg.Source = internal.Caller(2)
	return p.Add(reg)
}

func sortedRegistrations(m map[reflect.Type]*Registration) []*Registration {
	regs := make([]*Registration, 0, len(m))
	for _, reg := range m {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].Type.String() < regs[j].Type.String()
	})
	return regs
}
