package pgjson

import (
	"encoding/json"
	"io"

	json2 "github.com/segmentio/encoding/json"
)

// Provider encodes values of columns tagged with `pg:",json"`.
type Provider interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	NewEncoder(w io.Writer) Encoder
	NewDecoder(r io.Reader) Decoder
}

type Decoder interface {
	Decode(v interface{}) error
	UseNumber()
}

type Encoder interface {
	Encode(v interface{}) error
}

var _ Provider = (*StdProvider)(nil)

type StdProvider struct{}

func (StdProvider) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (StdProvider) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (StdProvider) NewEncoder(w io.Writer) Encoder {
	return json.NewEncoder(w)
}

func (StdProvider) NewDecoder(r io.Reader) Decoder {
	return json.NewDecoder(r)
}

var _ Provider = (*SegmentioProvider)(nil)

// SegmentioProvider uses github.com/segmentio/encoding, a faster drop-in
// replacement of encoding/json.
type SegmentioProvider struct{}

func (SegmentioProvider) Marshal(v interface{}) ([]byte, error) {
	return json2.Marshal(v)
}

func (SegmentioProvider) Unmarshal(data []byte, v interface{}) error {
	return json2.Unmarshal(data, v)
}

func (SegmentioProvider) NewEncoder(w io.Writer) Encoder {
	return json2.NewEncoder(w)
}

func (SegmentioProvider) NewDecoder(r io.Reader) Decoder {
	return json2.NewDecoder(r)
}

var provider Provider = StdProvider{}

// SetProvider replaces the provider used by Marshal and Unmarshal.
func SetProvider(p Provider) {
	provider = p
}

func Marshal(v interface{}) ([]byte, error) {
	return provider.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return provider.Unmarshal(data, v)
}

func NewEncoder(w io.Writer) Encoder {
	return provider.NewEncoder(w)
}

func NewDecoder(r io.Reader) Decoder {
	return provider.NewDecoder(r)
}
