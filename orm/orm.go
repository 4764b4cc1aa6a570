/*
Package orm describes how Go structs map to relational tables.

It builds table metadata from `pg` struct tags, provides the mapper contracts
used by the entmap registry (EntityMapper for reads, CrudEntityMapper for
create/read/update/delete), reflection based implementations of both, and
the SQL commands those mappers generate.
*/
package orm

// Record is a single result row. *sql.Rows implements it.
type Record interface {
	Columns() ([]string, error)
	Scan(dest ...interface{}) error
}

const (
	InsertOp = "INSERT"
	UpdateOp = "UPDATE"
	DeleteOp = "DELETE"
	SelectOp = "SELECT"
)
