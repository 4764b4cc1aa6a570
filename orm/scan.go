package orm

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

type fieldScanner struct {
	v reflect.Value
}

func (s fieldScanner) Scan(src interface{}) error {
	if s.v.CanAddr() && s.v.Addr().Type().Implements(scannerType) {
		return s.v.Addr().Interface().(sql.Scanner).Scan(src)
	}
	if s.v.Kind() == reflect.Ptr && s.v.Type().Implements(scannerType) {
		if src == nil {
			s.v.Set(reflect.Zero(s.v.Type()))
			return nil
		}
		return indirectNil(s.v).Addr().Interface().(sql.Scanner).Scan(src)
	}

	// Drivers may reuse the buffer after Scan returns.
	if b, ok := src.([]byte); ok {
		src = append([]byte(nil), b...)
	}
	return scanValue(s.v, src)
}

// scanValue stores a driver value into dst. On top of assignValue it
// parses textual numbers, booleans and timestamps that some drivers return.
func scanValue(dst reflect.Value, src interface{}) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Ptr {
		return scanValue(indirectNil(dst), src)
	}

	var text string
	switch v := src.(type) {
	case []byte:
		if dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes(v)
			return nil
		}
		text = string(v)
	case string:
		text = v
	default:
		if dst.Kind() == reflect.Bool && isNumberKind(reflect.TypeOf(src).Kind()) {
			dst.SetBool(reflect.ValueOf(src).Convert(reflect.TypeOf(int64(0))).Int() != 0)
			return nil
		}
		return assignValue(dst, src)
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(text)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(text, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(text, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetFloat(n)
		return nil
	}

	if dst.Type() == timeType {
		tm, err := parseTime(text)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(tm))
		return nil
	}

	return fmt.Errorf("orm: can't scan %T into %s", src, dst.Type())
}

var timeType = reflect.TypeOf(time.Time{})

var timeLayouts = []string{
	time.RFC3339Nano,
	timeFormat,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("orm: can't parse time=%q", s)
}
