package orm

import (
	"fmt"
	"reflect"
)

// CrudMapper is a StructMapper that also generates insert, update and
// delete commands. The struct must have at least one primary key.
type CrudMapper[T any] struct {
	StructMapper[T]
}

var _ CrudEntityMapper[struct{ ID int }] = (*CrudMapper[struct{ ID int }])(nil)

func NewCrudMapper[T any]() (*CrudMapper[T], error) {
	sm, err := NewStructMapper[T]()
	if err != nil {
		return nil, err
	}
	if err := sm.table.checkPKs(); err != nil {
		return nil, err
	}
	return &CrudMapper[T]{
		StructMapper: *sm,
	}, nil
}

func (m *CrudMapper[T]) Table() *Table {
	return m.table
}

func (m *CrudMapper[T]) InsertCommand(d Dialect, entity *T) (*Command, error) {
	strct, err := m.structValue(entity)
	if err != nil {
		return nil, err
	}

	var fields, returning []*Field
	for _, f := range m.table.Fields {
		if f.HasFlag(ReadOnlyFlag) {
			continue
		}
		if f.HasFlag(PrimaryKeyFlag) && f.HasZeroValue(strct) {
			returning = append(returning, f)
			continue
		}
		fields = append(fields, f)
	}

	b := newCommandBuilder(d)
	b.WriteString("INSERT INTO ")
	b.WriteIdent(m.table.Name)

	if len(fields) == 0 {
		if d.Name() == MySQL.Name() {
			b.WriteString(" () VALUES ()")
		} else {
			b.WriteString(" DEFAULT VALUES")
		}
	} else {
		b.WriteString(" (")
		b.WriteColumns(fields)
		b.WriteString(") VALUES (")
		for i, f := range fields {
			if i > 0 {
				b.WriteString(", ")
			}
			v, err := f.ArgValue(strct)
			if err != nil {
				return nil, fmt.Errorf("orm: %s.%s: %w", m.table.Type.Name(), f.GoName, err)
			}
			b.WriteArg(v)
		}
		b.WriteString(")")
	}

	if len(returning) > 0 && d.HasReturning() {
		b.WriteString(" RETURNING ")
		b.WriteColumns(returning)
	}

	cmd := b.Command(InsertOp, m.table.Name)
	cmd.Returning = returning
	return cmd, nil
}

func (m *CrudMapper[T]) UpdateCommand(d Dialect, entity *T) (*Command, error) {
	strct, err := m.structValue(entity)
	if err != nil {
		return nil, err
	}
	keys, err := m.keyValues(strct)
	if err != nil {
		return nil, err
	}

	var fields []*Field
	for _, f := range m.table.DataFields {
		if !f.HasFlag(ReadOnlyFlag) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("orm: %s has no columns to update", m.table)
	}

	b := newCommandBuilder(d)
	b.WriteString("UPDATE ")
	b.WriteIdent(m.table.Name)
	b.WriteString(" SET ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		v, err := f.ArgValue(strct)
		if err != nil {
			return nil, fmt.Errorf("orm: %s.%s: %w", m.table.Type.Name(), f.GoName, err)
		}
		b.WriteIdent(f.SQLName)
		b.WriteString(" = ")
		b.WriteArg(v)
	}
	b.WriteString(" WHERE ")
	b.WriteKeyFilter(m.table.PKs, keys)

	return b.Command(UpdateOp, m.table.Name), nil
}

func (m *CrudMapper[T]) DeleteCommand(d Dialect, entity *T) (*Command, error) {
	strct, err := m.structValue(entity)
	if err != nil {
		return nil, err
	}
	keys, err := m.keyValues(strct)
	if err != nil {
		return nil, err
	}

	b := newCommandBuilder(d)
	b.WriteString("DELETE FROM ")
	b.WriteIdent(m.table.Name)
	b.WriteString(" WHERE ")
	b.WriteKeyFilter(m.table.PKs, keys)

	return b.Command(DeleteOp, m.table.Name), nil
}

// SelectCommand selects all mapped columns. The where clause is appended
// as is, so it must use the dialect's placeholders.
func (m *CrudMapper[T]) SelectCommand(d Dialect, where string, args ...interface{}) (*Command, error) {
	b := m.selectBuilder(d)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	cmd := b.Command(SelectOp, m.table.Name)
	cmd.Args = args
	return cmd, nil
}

func (m *CrudMapper[T]) SelectByKeyCommand(d Dialect, keys ...interface{}) (*Command, error) {
	if len(keys) != len(m.table.PKs) {
		return nil, fmt.Errorf(
			"orm: %s has %d primary keys, got %d values", m.table, len(m.table.PKs), len(keys))
	}

	b := m.selectBuilder(d)
	b.WriteString(" WHERE ")
	b.WriteKeyFilter(m.table.PKs, keys)
	return b.Command(SelectOp, m.table.Name), nil
}

func (m *CrudMapper[T]) SetKeys(entity *T, keys ...interface{}) error {
	strct, err := m.structValue(entity)
	if err != nil {
		return err
	}
	if len(keys) != len(m.table.PKs) {
		return fmt.Errorf(
			"orm: %s has %d primary keys, got %d values", m.table, len(m.table.PKs), len(keys))
	}
	for i, pk := range m.table.PKs {
		if err := pk.SetValue(strct, keys[i]); err != nil {
			return err
		}
	}
	return nil
}

// KeyValues returns primary key values of the entity.
func (m *CrudMapper[T]) KeyValues(entity *T) ([]interface{}, error) {
	strct, err := m.structValue(entity)
	if err != nil {
		return nil, err
	}
	return m.keyValues(strct)
}

func (m *CrudMapper[T]) selectBuilder(d Dialect) *commandBuilder {
	b := newCommandBuilder(d)
	b.WriteString("SELECT ")
	b.WriteColumns(m.table.Fields)
	b.WriteString(" FROM ")
	b.WriteIdent(m.table.Name)
	return b
}

func (m *CrudMapper[T]) structValue(entity *T) (reflect.Value, error) {
	if entity == nil {
		return reflect.Value{}, fmt.Errorf("orm: nil %T", entity)
	}
	return reflect.ValueOf(entity).Elem(), nil
}

func (m *CrudMapper[T]) keyValues(strct reflect.Value) ([]interface{}, error) {
	keys := make([]interface{}, len(m.table.PKs))
	for i, pk := range m.table.PKs {
		if pk.HasZeroValue(strct) {
			return nil, fmt.Errorf("orm: %s has zero primary key %s", m.table, pk.GoName)
		}
		fv, _ := pk.Value(strct)
		keys[i] = fv.Interface()
	}
	return keys, nil
}
