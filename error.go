package entmap

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-pg/entmap/internal"
)

var (
	// ErrInvalidArgument is returned when a nil provider is installed.
	ErrInvalidArgument = errors.New("entmap: invalid argument")

	// ErrMappingNotFound matches every MappingNotFoundError.
	ErrMappingNotFound = errors.New("entmap: mapping not found")

	// ErrNoRows is returned by GetByKey, First, Update and Delete
	// when no row matches.
	ErrNoRows = internal.ErrNoRows

	// ErrMultiRows is returned when a key lookup matches more than one row.
	ErrMultiRows = internal.ErrMultiRows
)

// MappingNotFoundError is returned by providers when no mapping is
// registered for the requested entity type.
type MappingNotFoundError struct {
	Type reflect.Type
}

func (err *MappingNotFoundError) Error() string {
	return fmt.Sprintf("entmap: no mapping registered for %s", err.Type)
}

func (err *MappingNotFoundError) Is(target error) bool {
	return target == ErrMappingNotFound
}

// MappingCapabilityError is returned when the mapping registered for Type
// does not support the Required capability. Found is the concrete type of
// the registered mapper.
type MappingCapabilityError struct {
	Type     reflect.Type
	Required Capability
	Found    string
}

func (err *MappingCapabilityError) Error() string {
	return fmt.Sprintf(
		"entmap: mapping for %s must be %s capable, found mapper %s",
		err.Type, err.Required, err.Found,
	)
}

// DuplicateMappingError is returned when two declarations map the same type.
type DuplicateMappingError struct {
	Type   reflect.Type
	First  string
	Second string
}

func (err *DuplicateMappingError) Error() string {
	return fmt.Sprintf(
		"entmap: %s is mapped twice (declared at %s and %s)",
		err.Type, err.First, err.Second,
	)
}
