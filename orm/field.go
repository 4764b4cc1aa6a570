package orm

import (
	"database/sql"
	"database/sql/driver"
	"reflect"

	"github.com/go-pg/zerochecker"
)

const (
	PrimaryKeyFlag = uint8(1) << iota
	UseZeroFlag
	MsgpackFlag
	JSONFlag
	ReadOnlyFlag
)

type Field struct {
	Type reflect.Type

	GoName  string // struct field name, e.g. CustomerID
	SQLName string // SQL name, .e.g. customer_id
	Index   []int

	flags uint8

	isZero zerochecker.Func
}

func (f *Field) Clone() *Field {
	cp := *f
	cp.Index = cp.Index[:len(f.Index):len(f.Index)]
	return &cp
}

func (f *Field) String() string {
	return f.SQLName
}

func (f *Field) setFlag(flag uint8) {
	f.flags |= flag
}

func (f *Field) HasFlag(flag uint8) bool {
	return f.flags&flag != 0
}

// Value returns the field value and false when a nil embedded pointer
// prevents reaching it.
func (f *Field) Value(strct reflect.Value) (reflect.Value, bool) {
	return fieldByIndex(strct, f.Index)
}

func (f *Field) HasZeroValue(strct reflect.Value) bool {
	fv, ok := f.Value(strct)
	if !ok {
		return true
	}
	return f.isZero(fv)
}

// NullZero reports whether Go zero values are stored as NULL.
func (f *Field) NullZero() bool {
	return !f.HasFlag(UseZeroFlag)
}

// ArgValue returns the value passed to the driver for the field.
func (f *Field) ArgValue(strct reflect.Value) (interface{}, error) {
	fv, ok := f.Value(strct)
	if !ok {
		return nil, nil
	}
	if f.NullZero() && f.isZero(fv) {
		return nil, nil
	}
	if f.HasFlag(MsgpackFlag) {
		return msgpackEncode(fv)
	}
	if f.HasFlag(JSONFlag) {
		return jsonEncode(fv)
	}
	if fv.Kind() == reflect.Ptr && fv.IsNil() {
		return nil, nil
	}
	if fv.CanInterface() {
		v := fv.Interface()
		if valuer, ok := v.(driver.Valuer); ok {
			return valuer, nil
		}
		return v, nil
	}
	return nil, nil
}

// ScanDest returns a sql.Scanner that stores a column value into the field.
// NULL resets the field to its zero value.
func (f *Field) ScanDest(strct reflect.Value) sql.Scanner {
	fv := fieldByIndexAlloc(strct, f.Index)
	if f.HasFlag(MsgpackFlag) {
		return msgpackScanner{v: fv}
	}
	if f.HasFlag(JSONFlag) {
		return jsonScanner{v: fv}
	}
	return fieldScanner{v: fv}
}

// SetValue assigns v to the field converting between compatible kinds.
func (f *Field) SetValue(strct reflect.Value, v interface{}) error {
	fv := fieldByIndexAlloc(strct, f.Index)
	return assignValue(fv, v)
}
