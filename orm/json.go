package orm

import (
	"fmt"
	"reflect"

	"github.com/go-pg/entmap/pgjson"
)

func jsonEncode(v reflect.Value) ([]byte, error) {
	return pgjson.Marshal(v.Interface())
}

type jsonScanner struct {
	v reflect.Value
}

func (s jsonScanner) Scan(src interface{}) error {
	var b []byte
	switch src := src.(type) {
	case nil:
	case []byte:
		b = src
	case string:
		b = []byte(src)
	default:
		return fmt.Errorf("orm: can't decode json from %T", src)
	}

	if len(b) == 0 {
		s.v.Set(reflect.Zero(s.v.Type()))
		return nil
	}

	// Unmarshal merges into maps and slices, so start from zero.
	s.v.Set(reflect.Zero(s.v.Type()))
	return pgjson.Unmarshal(b, s.v.Addr().Interface())
}
