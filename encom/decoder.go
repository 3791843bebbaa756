package encom

import (
	"io"
	"reflect"
)

// Decoder decodes a single EnCom document (§9's top-level permissiveness:
// a bare value is wrapped in a length-1 sequence, brace-less maps/seqs are
// accepted) from an io.Reader or byte slice.
type Decoder struct {
	p *Parser
}

// NewDecoder returns a Decoder reading the whole document from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{p: NewParser(newStreamReader(r))}
}

// NewDecoderBytes returns a Decoder reading the whole document from b,
// borrowing strings and bytes payloads directly from b where possible.
func NewDecoderBytes(b []byte) *Decoder {
	return &Decoder{p: NewParser(newSliceReader(b))}
}

// Decode parses the document into target, which must be a non-nil
// pointer, and requires that nothing but whitespace follow it.
func (d *Decoder) Decode(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return messageError("Decode requires a non-nil pointer, got %T", target)
	}
	if _, err := d.p.ParseDocument(reflectVisitor{rv: rv.Elem()}); err != nil {
		return err
	}
	return d.p.expectDocumentEnd()
}

// DecodeValue parses the document into a dynamic Value tree.
func (d *Decoder) DecodeValue() (Value, error) {
	result, err := d.p.ParseDocument(valueVisitor{})
	if err != nil {
		return Value{}, err
	}
	if err := d.p.expectDocumentEnd(); err != nil {
		return Value{}, err
	}
	return result.(Value), nil
}

// Unmarshal decodes data into target, which must be a non-nil pointer.
func Unmarshal(data []byte, target any) error {
	return NewDecoderBytes(data).Decode(target)
}

// DecodeValue parses data into a dynamic Value tree.
func DecodeValue(data []byte) (Value, error) {
	return NewDecoderBytes(data).DecodeValue()
}
