package entmap

import (
	"fmt"
	"reflect"

	"github.com/go-pg/entmap/orm"
)

// Provider owns a set of mappings and answers lookups by entity type.
type Provider interface {
	// EnsureReady prepares the provider for lookups. It must be idempotent;
	// providers that don't discover anything return nil.
	EnsureReady() error
	// Lookup returns the registration for typ or a *MappingNotFoundError.
	Lookup(typ reflect.Type) (*Registration, error)
}

// Capability is the level of mapping support a registration offers.
type Capability uint8

const (
	CapabilityRead Capability = iota + 1
	CapabilityCRUD
)

func (c Capability) String() string {
	switch c {
	case CapabilityRead:
		return "read-only"
	case CapabilityCRUD:
		return "CRUD"
	}
	return fmt.Sprintf("Capability(%d)", uint8(c))
}

// Satisfies reports whether c covers the required capability.
func (c Capability) Satisfies(required Capability) bool {
	return c >= required
}

// Registration binds an entity type to its mapper.
type Registration struct {
	Type       reflect.Type
	Mapper     interface{}
	Capability Capability

	// Source is the file:line that declared the mapping.
	Source string
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s -> %T (%s)", r.Type, r.Mapper, r.Capability)
}

// NewRegistration creates a registration for m. The capability is
// CapabilityCRUD when m implements orm.CrudEntityMapper[T].
func NewRegistration[T any](m orm.EntityMapper[T]) (*Registration, error) {
	if isNil(m) {
		return nil, fmt.Errorf("%w: nil mapper for %s", ErrInvalidArgument, typeOf[T]())
	}

	capability := CapabilityRead
	if _, ok := m.(orm.CrudEntityMapper[T]); ok {
		capability = CapabilityCRUD
	}

	return &Registration{
		Type:       typeOf[T](),
		Mapper:     m,
		Capability: capability,
	}, nil
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
