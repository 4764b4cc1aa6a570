package entmap

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"

	"github.com/go-pg/entmap/orm"
)

// Conn executes SQL. It is implemented by *sql.DB, *sql.Tx and *sql.Conn.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Beginner starts transactions. It is implemented by *sql.DB and *sql.Conn.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// DB runs the commands generated by registered mappers on a Conn.
type DB struct {
	conn Conn
	opt  *Options

	queryHooks []QueryHook
}

func NewDB(conn Conn, opt *Options) *DB {
	if opt == nil {
		opt = new(Options)
	}
	opt.init()

	return &DB{
		conn: conn,
		opt:  opt,
	}
}

func (db *DB) String() string {
	return fmt.Sprintf("DB<dialect=%s>", db.opt.Dialect.Name())
}

// Options returns read-only Options that were used to create the DB.
func (db *DB) Options() *Options {
	return db.opt
}

func (db *DB) Dialect() orm.Dialect {
	return db.opt.Dialect
}

func (db *DB) Registry() *Registry {
	return db.opt.Registry
}

// WithConn returns a copy of the DB that uses conn, e.g. a transaction.
func (db *DB) WithConn(conn Conn) *DB {
	return &DB{
		conn:       conn,
		opt:        db.opt,
		queryHooks: copyQueryHooks(db.queryHooks),
	}
}

// RunInTransaction runs fn in a transaction. The transaction is rolled back
// when fn returns an error or panics and committed otherwise.
func (db *DB) RunInTransaction(ctx context.Context, fn func(*DB) error) error {
	beginner, ok := db.conn.(Beginner)
	if !ok {
		return fmt.Errorf("entmap: %T can't begin transactions", db.conn)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(db.WithConn(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *DB) exec(ctx context.Context, entity interface{}, cmd *orm.Command) (sql.Result, error) {
	ctx, evt, err := db.beforeQuery(ctx, entity, cmd)
	if err != nil {
		return nil, err
	}

	res, err := db.conn.ExecContext(ctx, cmd.Query, cmd.Args...)

	if hookErr := db.afterQuery(ctx, evt, res, err); hookErr != nil {
		return nil, hookErr
	}
	return res, err
}

func (db *DB) query(
	ctx context.Context,
	entity interface{},
	cmd *orm.Command,
	fn func(rows *sql.Rows) error,
) error {
	ctx, evt, err := db.beforeQuery(ctx, entity, cmd)
	if err != nil {
		return err
	}

	err = db.scanRows(ctx, cmd, fn)

	if hookErr := db.afterQuery(ctx, evt, nil, err); hookErr != nil {
		return hookErr
	}
	return err
}

func (db *DB) scanRows(ctx context.Context, cmd *orm.Command, fn func(rows *sql.Rows) error) (err error) {
	rows, err := db.conn.QueryContext(ctx, cmd.Query, cmd.Args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Insert inserts the entity. Primary keys left zero are filled from
// RETURNING, or from LastInsertId on dialects without RETURNING.
func Insert[T any](ctx context.Context, db *DB, entity *T) error {
	m, err := LookupCrud[T](db.opt.Registry)
	if err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.BeforeInsertHook); ok {
		ctx, err = h.BeforeInsert(ctx)
		if err != nil {
			return err
		}
	}

	cmd, err := m.InsertCommand(db.opt.Dialect, entity)
	if err != nil {
		return err
	}

	strct := reflect.ValueOf(entity).Elem()
	switch {
	case len(cmd.Returning) > 0 && db.opt.Dialect.HasReturning():
		var n int
		err = db.query(ctx, entity, cmd, func(rows *sql.Rows) error {
			n++
			dests := make([]interface{}, len(cmd.Returning))
			for i, f := range cmd.Returning {
				dests[i] = f.ScanDest(strct)
			}
			return rows.Scan(dests...)
		})
		if err == nil && n == 0 {
			err = ErrNoRows
		}
	default:
		var res sql.Result
		res, err = db.exec(ctx, entity, cmd)
		if err == nil && len(cmd.Returning) == 1 && isIntegerKind(cmd.Returning[0].Type.Kind()) {
			var id int64
			id, err = res.LastInsertId()
			if err == nil {
				err = cmd.Returning[0].SetValue(strct, id)
			}
		}
	}
	if err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.AfterInsertHook); ok {
		return h.AfterInsert(ctx)
	}
	return nil
}

// Update updates every mapped column of the entity by primary key.
// It returns ErrNoRows when nothing was updated.
func Update[T any](ctx context.Context, db *DB, entity *T) error {
	m, err := LookupCrud[T](db.opt.Registry)
	if err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.BeforeUpdateHook); ok {
		ctx, err = h.BeforeUpdate(ctx)
		if err != nil {
			return err
		}
	}

	cmd, err := m.UpdateCommand(db.opt.Dialect, entity)
	if err != nil {
		return err
	}

	res, err := db.exec(ctx, entity, cmd)
	if err != nil {
		return err
	}
	if err := assertAffected(res); err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.AfterUpdateHook); ok {
		return h.AfterUpdate(ctx)
	}
	return nil
}

// Delete deletes the entity by primary key.
// It returns ErrNoRows when nothing was deleted.
func Delete[T any](ctx context.Context, db *DB, entity *T) error {
	m, err := LookupCrud[T](db.opt.Registry)
	if err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.BeforeDeleteHook); ok {
		ctx, err = h.BeforeDelete(ctx)
		if err != nil {
			return err
		}
	}

	cmd, err := m.DeleteCommand(db.opt.Dialect, entity)
	if err != nil {
		return err
	}

	res, err := db.exec(ctx, entity, cmd)
	if err != nil {
		return err
	}
	if err := assertAffected(res); err != nil {
		return err
	}

	if h, ok := interface{}(entity).(orm.AfterDeleteHook); ok {
		return h.AfterDelete(ctx)
	}
	return nil
}

// GetByKey selects the entity with the given primary key values.
func GetByKey[T any](ctx context.Context, db *DB, keys ...interface{}) (*T, error) {
	m, err := LookupCrud[T](db.opt.Registry)
	if err != nil {
		return nil, err
	}

	cmd, err := m.SelectByKeyCommand(db.opt.Dialect, keys...)
	if err != nil {
		return nil, err
	}

	entities, err := selectEntities[T](ctx, db, m, cmd)
	if err != nil {
		return nil, err
	}
	switch len(entities) {
	case 0:
		return nil, ErrNoRows
	case 1:
		return entities[0], nil
	default:
		return nil, ErrMultiRows
	}
}

// Select selects entities matching where. The where clause uses the
// placeholders of the DB dialect; an empty clause selects every row.
func Select[T any](ctx context.Context, db *DB, where string, args ...interface{}) ([]*T, error) {
	m, err := LookupCrud[T](db.opt.Registry)
	if err != nil {
		return nil, err
	}

	cmd, err := m.SelectCommand(db.opt.Dialect, where, args...)
	if err != nil {
		return nil, err
	}

	return selectEntities[T](ctx, db, m, cmd)
}

// First returns the first entity matching where or ErrNoRows.
func First[T any](ctx context.Context, db *DB, where string, args ...interface{}) (*T, error) {
	entities, err := Select[T](ctx, db, where, args...)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, ErrNoRows
	}
	return entities[0], nil
}

// Query runs a raw query and maps rows with the mapper registered for T.
// Read-only mappings are enough, so it works for views and reports.
func Query[T any](ctx context.Context, db *DB, query string, args ...interface{}) ([]*T, error) {
	m, err := Lookup[T](db.opt.Registry)
	if err != nil {
		return nil, err
	}

	cmd := &orm.Command{
		Op:    orm.SelectOp,
		Table: m.TableName(),
		Query: query,
		Args:  args,
	}
	return selectEntities[T](ctx, db, m, cmd)
}

func selectEntities[T any](
	ctx context.Context, db *DB, m orm.EntityMapper[T], cmd *orm.Command,
) ([]*T, error) {
	var entities []*T
	err := db.query(ctx, nil, cmd, func(rows *sql.Rows) error {
		entity, err := m.Create(rows)
		if err != nil {
			return err
		}
		entities = append(entities, entity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entity := range entities {
		if h, ok := interface{}(entity).(orm.AfterSelectHook); ok {
			if err := h.AfterSelect(ctx); err != nil {
				return nil, err
			}
		}
	}
	return entities, nil
}

func assertAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		// Driver doesn't report affected rows.
		return nil
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

func isIntegerKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
