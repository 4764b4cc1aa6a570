package orm

import (
	"fmt"
	"reflect"

	"github.com/go-pg/entmap/internal"
)

// StructMapper maps records to structs using Table metadata. It only
// supports reads.
type StructMapper[T any] struct {
	table *Table
}

var _ EntityMapper[struct{}] = (*StructMapper[struct{}])(nil)

func NewStructMapper[T any]() (*StructMapper[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("orm: got %s, wanted %s", typ, reflect.Struct)
	}
	return &StructMapper[T]{
		table: GetTable(typ),
	}, nil
}

func (m *StructMapper[T]) EntityType() reflect.Type {
	return m.table.Type
}

func (m *StructMapper[T]) TableName() string {
	return m.table.Name
}

func (m *StructMapper[T]) Create(rec Record) (*T, error) {
	dst := new(T)
	if err := m.Map(rec, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

func (m *StructMapper[T]) Map(rec Record, dst *T) error {
	if dst == nil {
		return fmt.Errorf("orm: Map(nil %T)", dst)
	}

	cols, err := rec.Columns()
	if err != nil {
		return err
	}

	strct := reflect.ValueOf(dst).Elem()
	dests := make([]interface{}, len(cols))
	for i, col := range cols {
		field, ok := m.table.FieldsMap[normalizeColumn(col)]
		if !ok {
			dests[i] = new(interface{})
			continue
		}
		dests[i] = field.ScanDest(strct)
	}

	return rec.Scan(dests...)
}

// normalizeColumn strips identifier quotes and lower-cases the name.
func normalizeColumn(s string) string {
	if l := len(s); l >= 2 {
		switch s[0] {
		case '"':
			if s[l-1] == '"' {
				s = s[1 : l-1]
			}
		case '`':
			if s[l-1] == '`' {
				s = s[1 : l-1]
			}
		case '[':
			if s[l-1] == ']' {
				s = s[1 : l-1]
			}
		}
	}
	return internal.ToLower(s)
}
