package entmap

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-pg/entmap/orm"
)

// Registry resolves mappers through a replaceable Provider. The provider
// is made ready (discovery for a ScanningProvider) on the first lookup.
//
// A Registry is safe for concurrent use. Most programs use the package
// registry through GetMapper and GetCrudMapper; construct your own when
// mappings should not be process wide.
type Registry struct {
	mu       sync.RWMutex
	provider Provider
	ready    Provider
}

// NewRegistry returns a registry using p. A nil p selects a
// ScanningProvider over DefaultCatalog.
func NewRegistry(p Provider) *Registry {
	if isNil(p) {
		p = NewScanningProvider(DefaultCatalog, nil)
	}
	return &Registry{
		provider: p,
	}
}

func (r *Registry) Provider() Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.provider
}

// SetProvider replaces the active provider. It fails with
// ErrInvalidArgument when p is nil and keeps the current provider.
func (r *Registry) SetProvider(p Provider) error {
	if isNil(p) {
		return fmt.Errorf("%w: nil provider", ErrInvalidArgument)
	}

	r.mu.Lock()
	r.provider = p
	r.mu.Unlock()
	return nil
}

// ensureReady returns the active provider after it reported ready.
// A failed EnsureReady is retried on the next lookup.
func (r *Registry) ensureReady() (Provider, error) {
	r.mu.RLock()
	p := r.provider
	ready := sameProvider(r.ready, p)
	r.mu.RUnlock()

	if ready {
		return p, nil
	}

	if err := p.EnsureReady(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if sameProvider(r.provider, p) {
		r.ready = p
	}
	r.mu.Unlock()

	return p, nil
}

func (r *Registry) lookup(typ reflect.Type) (*Registration, error) {
	p, err := r.ensureReady()
	if err != nil {
		return nil, err
	}
	return p.Lookup(typ)
}

// LookupCrud returns the CRUD mapper registered for T in r.
func LookupCrud[T any](r *Registry) (orm.CrudEntityMapper[T], error) {
	typ := typeOf[T]()

	reg, err := r.lookup(typ)
	if err != nil {
		return nil, err
	}

	if reg.Capability.Satisfies(CapabilityCRUD) {
		if m, ok := reg.Mapper.(orm.CrudEntityMapper[T]); ok {
			return m, nil
		}
	}

	return nil, &MappingCapabilityError{
		Type:     typ,
		Required: CapabilityCRUD,
		Found:    fmt.Sprintf("%T", reg.Mapper),
	}
}

// Lookup returns the mapper registered for T in r, whatever its capability.
func Lookup[T any](r *Registry) (orm.EntityMapper[T], error) {
	typ := typeOf[T]()

	reg, err := r.lookup(typ)
	if err != nil {
		return nil, err
	}

	m, ok := reg.Mapper.(orm.EntityMapper[T])
	if !ok {
		return nil, &MappingCapabilityError{
			Type:     typ,
			Required: CapabilityRead,
			Found:    fmt.Sprintf("%T", reg.Mapper),
		}
	}
	return m, nil
}

func sameProvider(a, b Provider) bool {
	if a == nil || b == nil {
		return false
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}
