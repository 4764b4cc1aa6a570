/*
Package entmap resolves entity mappers by entity type.

Mappers are declared from init functions, usually with DeclareTable for
structs described by `pg` tags, and discovered on the first lookup:

	func init() {
		entmap.DeclareTable[Order]()
		entmap.DeclareView[SalesReport]()
	}

	m, err := entmap.GetCrudMapper[Order]()

The provider behind the package registry can be replaced with SetProvider,
e.g. with a MapProvider filled by hand in tests.
*/
package entmap

import (
	"github.com/go-pg/entmap/internal"
	"github.com/go-pg/entmap/orm"
)

// DefaultCatalog receives the declarations made with Declare,
// DeclareFunc, DeclareTable and DeclareView.
var DefaultCatalog = NewCatalog()

var (
	defaultProvider = NewScanningProvider(DefaultCatalog, nil)
	defaultRegistry = NewRegistry(defaultProvider)
)

// SetLogger sets the logger used for warnings and by pgext hooks.
func SetLogger(logger internal.Logging) {
	internal.Logger = logger
}

// DefaultRegistry returns the registry used by the package level functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// DefaultProvider returns the ScanningProvider installed in the package
// registry at startup.
func DefaultProvider() *ScanningProvider {
	return defaultProvider
}

// CurrentProvider returns the provider of the package registry.
func CurrentProvider() Provider {
	return defaultRegistry.Provider()
}

// SetProvider replaces the provider of the package registry. Installing a
// provider before the first lookup means DefaultCatalog is never scanned.
func SetProvider(p Provider) error {
	return defaultRegistry.SetProvider(p)
}

// GetCrudMapper returns the mapper registered for T. It fails with
// *MappingCapabilityError when the mapper only supports reads, and with
// the provider's error (usually *MappingNotFoundError) when there is none.
func GetCrudMapper[T any]() (orm.CrudEntityMapper[T], error) {
	return LookupCrud[T](defaultRegistry)
}

// GetMapper returns the mapper registered for T narrowed to reads.
func GetMapper[T any]() (orm.EntityMapper[T], error) {
	return Lookup[T](defaultRegistry)
}

// Declare adds m to DefaultCatalog. It is meant to be called from init.
func Declare[T any](m orm.EntityMapper[T]) {
	AddMapper[T](DefaultCatalog, m)
}

// DeclareFunc adds a mapper built by fn at scan time to DefaultCatalog.
func DeclareFunc[T any](fn func() (orm.EntityMapper[T], error)) {
	AddFunc[T](DefaultCatalog, fn)
}

// DeclareTable declares a CRUD mapper derived from the `pg` tags of T.
func DeclareTable[T any]() {
	AddTable[T](DefaultCatalog)
}

// DeclareView declares a read-only mapper derived from the `pg` tags of T.
func DeclareView[T any]() {
	AddView[T](DefaultCatalog)
}
