package entmap

import (
	"reflect"
	"sync"

	"github.com/go-pg/entmap/internal"
	"github.com/go-pg/entmap/orm"
)

type declaration struct {
	typ    reflect.Type
	source string
	build  func() (*Registration, error)
}

// Catalog collects mapping declarations. Declarations are cheap: mappers
// are only built when a ScanningProvider scans the catalog.
type Catalog struct {
	mu    sync.Mutex
	decls []declaration
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) add(decl declaration) {
	c.mu.Lock()
	c.decls = append(c.decls, decl)
	c.mu.Unlock()
}

// Len returns the number of declarations.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.decls)
}

func (c *Catalog) snapshot() []declaration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]declaration(nil), c.decls...)
}

// AddFunc declares a mapper for T that is built by fn at scan time.
func AddFunc[T any](c *Catalog, fn func() (orm.EntityMapper[T], error)) {
	addFunc(c, internal.Caller(2), fn)
}

// AddMapper declares an already constructed mapper for T.
func AddMapper[T any](c *Catalog, m orm.EntityMapper[T]) {
	addFunc(c, internal.Caller(2), func() (orm.EntityMapper[T], error) {
		return m, nil
	})
}

// AddTable declares a CRUD mapper for T derived from its struct tags.
func AddTable[T any](c *Catalog) {
	addFunc(c, internal.Caller(2), newCrudMapper[T])
}

// AddView declares a read-only mapper for T derived from its struct tags.
func AddView[T any](c *Catalog) {
	addFunc(c, internal.Caller(2), newStructMapper[T])
}

func addFunc[T any](c *Catalog, source string, fn func() (orm.EntityMapper[T], error)) {
	c.add(declaration{
		typ:    typeOf[T](),
		source: source,
		build: func() (*Registration, error) {
			m, err := fn()
			if err != nil {
				return nil, err
			}
			return NewRegistration[T](m)
		},
	})
}

func newCrudMapper[T any]() (orm.EntityMapper[T], error) {
	m, err := orm.NewCrudMapper[T]()
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newStructMapper[T any]() (orm.EntityMapper[T], error) {
	m, err := orm.NewStructMapper[T]()
	if err != nil {
		return nil, err
	}
	return m, nil
}
