package orm

import (
	"reflect"
)

// EntityMapper maps rows to entities of type T. It is the read-only
// capability: views, reports and projections only need this.
type EntityMapper[T any] interface {
	EntityType() reflect.Type
	TableName() string

	// Create allocates a new entity and maps the current record into it.
	Create(rec Record) (*T, error)
	// Map maps the current record into an existing entity.
	Map(rec Record, dst *T) error
}

// CrudEntityMapper adds the commands needed to create, update and delete
// entities of type T.
type CrudEntityMapper[T any] interface {
	EntityMapper[T]

	Table() *Table

	InsertCommand(d Dialect, entity *T) (*Command, error)
	UpdateCommand(d Dialect, entity *T) (*Command, error)
	DeleteCommand(d Dialect, entity *T) (*Command, error)
	SelectCommand(d Dialect, where string, args ...interface{}) (*Command, error)
	SelectByKeyCommand(d Dialect, keys ...interface{}) (*Command, error)

	// SetKeys assigns primary key values, e.g. the ones generated on insert.
	SetKeys(entity *T, keys ...interface{}) error
}
