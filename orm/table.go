package orm

import (
	"fmt"
	"reflect"

	"github.com/go-pg/zerochecker"
	"github.com/vmihailenco/tagparser"

	"github.com/go-pg/entmap/internal"
)

// Table holds the mapping between a struct type and a SQL table.
type Table struct {
	Type      reflect.Type
	Name      string
	ModelName string

	Fields     []*Field          // all mapped fields in declaration order
	FieldsMap  map[string]*Field // lower-case SQL name -> field
	PKs        []*Field
	DataFields []*Field // fields that are not part of the primary key
}

func newTable(typ reflect.Type) *Table {
	modelName := internal.Underscore(typ.Name())
	return &Table{
		Type:      typ,
		Name:      tableNameInflector(modelName),
		ModelName: modelName,
		Fields:    make([]*Field, 0, typ.NumField()),
		FieldsMap: make(map[string]*Field, typ.NumField()),
	}
}

func (t *Table) init() {
	t.addFields(t.Type, nil)
	t.initPKs()
}

func (t *Table) String() string {
	return "model=" + t.Type.Name()
}

func (t *Table) checkPKs() error {
	if len(t.PKs) == 0 {
		return fmt.Errorf("orm: %s does not have primary keys", t)
	}
	return nil
}

// AddField adds the field to the table. A field with the same column name
// that is declared closer to the root struct wins, following Go's own
// promotion rules for embedded fields.
func (t *Table) AddField(field *Field) {
	key := internal.ToLower(field.SQLName)
	if prev, ok := t.FieldsMap[key]; ok {
		if len(prev.Index) <= len(field.Index) {
			return
		}
		t.removeField(prev)
	}
	t.Fields = append(t.Fields, field)
	t.FieldsMap[key] = field
}

func (t *Table) removeField(field *Field) {
	for i, f := range t.Fields {
		if f == field {
			t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
			break
		}
	}
	delete(t.FieldsMap, internal.ToLower(field.SQLName))
}

// GetField returns the field for the column name. Lookup is case-insensitive.
func (t *Table) GetField(name string) (*Field, error) {
	field, ok := t.FieldsMap[internal.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("orm: can't find column=%s in table=%s", name, t.Name)
	}
	return field, nil
}

func (t *Table) HasField(name string) bool {
	_, ok := t.FieldsMap[internal.ToLower(name)]
	return ok
}

func (t *Table) addFields(typ reflect.Type, baseIndex []int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)

		if f.Name == "tableName" {
			if len(baseIndex) == 0 {
				t.setName(f)
			}
			continue
		}

		if f.Anonymous {
			tag := tagparser.Parse(f.Tag.Get("pg"))
			if tag.Name == "-" {
				continue
			}

			// Nil unexported pointers can't be allocated while scanning.
			if f.PkgPath != "" && f.Type.Kind() == reflect.Ptr {
				continue
			}

			fieldType := indirectType(f.Type)
			if fieldType.Kind() == reflect.Struct && tag.Name == "" {
				t.addFields(fieldType, withIndex(baseIndex, f.Index))
				continue
			}
		}

		// Unexported.
		if f.PkgPath != "" {
			continue
		}

		field := t.newField(f, baseIndex)
		if field != nil {
			t.AddField(field)
		}
	}
}

func (t *Table) setName(f reflect.StructField) {
	tag := tagparser.Parse(f.Tag.Get("pg"))
	if tag.Name == "" || tag.Name == "_" {
		return
	}
	name, _ := tagparser.Unquote(tag.Name)
	t.Name = name
}

func (t *Table) newField(f reflect.StructField, baseIndex []int) *Field {
	tag := tagparser.Parse(f.Tag.Get("pg"))
	if tag.Name == "-" {
		return nil
	}

	sqlName := internal.Underscore(f.Name)
	if tag.Name != "" {
		sqlName, _ = tagparser.Unquote(tag.Name)
	}

	field := &Field{
		Type:    f.Type,
		GoName:  f.Name,
		SQLName: sqlName,
		Index:   withIndex(baseIndex, f.Index),

		isZero: zerochecker.Checker(f.Type),
	}

	if _, ok := tag.Options["pk"]; ok {
		field.setFlag(PrimaryKeyFlag)
	}
	if _, ok := tag.Options["use_zero"]; ok {
		field.setFlag(UseZeroFlag)
	}
	if _, ok := tag.Options["msgpack"]; ok {
		field.setFlag(MsgpackFlag)
	}
	if _, ok := tag.Options["json"]; ok {
		field.setFlag(JSONFlag)
	}
	if _, ok := tag.Options["readonly"]; ok {
		field.setFlag(ReadOnlyFlag)
	}

	return field
}

func (t *Table) initPKs() {
	t.PKs = t.PKs[:0]
	t.DataFields = t.DataFields[:0]

	for _, f := range t.Fields {
		if f.HasFlag(PrimaryKeyFlag) {
			t.PKs = append(t.PKs, f)
		}
	}

	if len(t.PKs) == 0 {
		if f, ok := t.FieldsMap["id"]; ok {
			f.setFlag(PrimaryKeyFlag)
			t.PKs = append(t.PKs, f)
		}
	}

	for _, f := range t.Fields {
		if !f.HasFlag(PrimaryKeyFlag) {
			t.DataFields = append(t.DataFields, f)
		}
	}
}
