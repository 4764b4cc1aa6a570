package orm

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/vmihailenco/bufpool"
	"github.com/vmihailenco/msgpack/v5"
)

var msgpackPool bufpool.Pool

func msgpackEncode(v reflect.Value) ([]byte, error) {
	buf := msgpackPool.Get()
	defer msgpackPool.Put(buf)

	if err := msgpack.NewEncoder(buf).EncodeValue(v); err != nil {
		return nil, err
	}

	b := make([]byte, buf.Len())
	copy(b, buf.Bytes())
	return b, nil
}

func msgpackDecode(v reflect.Value, b []byte) error {
	if len(b) == 0 {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	return msgpack.NewDecoder(bytes.NewReader(b)).DecodeValue(v)
}

type msgpackScanner struct {
	v reflect.Value
}

func (s msgpackScanner) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		return msgpackDecode(s.v, nil)
	case []byte:
		return msgpackDecode(s.v, src)
	case string:
		return msgpackDecode(s.v, []byte(src))
	default:
		return fmt.Errorf("orm: can't decode msgpack from %T", src)
	}
}
