package encom

import (
	"io"
	"reflect"
)

// StreamDecoder reads a sequence of whitespace-separated top-level values
// from a single input, the way encoding/json.Decoder does, rather than
// requiring the caller to wrap everything in one outer sequence. Grounded
// on original_source's StreamDeserializer (§7): after any error the decoder
// latches a failure and every subsequent call returns that same error
// without touching the reader again.
type StreamDecoder struct {
	p   *Parser
	err error
}

// NewStreamDecoder returns a StreamDecoder reading from r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{p: NewParser(newStreamReader(r))}
}

// NewStreamDecoderBytes returns a StreamDecoder reading from b with
// zero-copy borrowing for strings and bytes payloads.
func NewStreamDecoderBytes(b []byte) *StreamDecoder {
	return &StreamDecoder{p: NewParser(newSliceReader(b))}
}

// ByteOffset reports the reader's absolute cursor offset in the input.
// After a successful Decode or DecodeValue this is just past the value
// decoded (plus any whitespace More has since skipped). After a failed
// call it is wherever parsing stopped, which may lie inside the failed
// value; it does not roll back to the start of that value.
func (d *StreamDecoder) ByteOffset() int64 {
	return d.p.r.byteOffset()
}

// More reports whether another value remains. It consumes leading
// whitespace to do so, so a well-formed stream with only trailing
// whitespace after the last value correctly reports false rather than
// requiring the caller to special-case it.
func (d *StreamDecoder) More() bool {
	if d.err != nil {
		return false
	}
	if err := d.p.skipWhitespace(); err != nil {
		d.err = err
		return false
	}
	_, hasByte := d.p.r.peek()
	return hasByte
}

// Decode parses the next value into target, which must be a non-nil
// pointer.
func (d *StreamDecoder) Decode(target any) error {
	if d.err != nil {
		return d.err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return messageError("Decode requires a non-nil pointer, got %T", target)
	}
	_, err := d.decodeNext(reflectVisitor{rv: rv.Elem()})
	return err
}

// DecodeValue parses the next value into a dynamic Value tree.
func (d *StreamDecoder) DecodeValue() (Value, error) {
	if d.err != nil {
		return Value{}, d.err
	}
	val, err := d.decodeNext(valueVisitor{})
	if err != nil {
		return Value{}, err
	}
	return val.(Value), nil
}

func (d *StreamDecoder) decodeNext(v Visitor) (any, error) {
	if err := d.p.skipWhitespace(); err != nil {
		d.err = err
		return nil, err
	}
	b, hasByte := d.p.r.peek()
	if !hasByte {
		d.err = io.EOF
		return nil, io.EOF
	}
	selfDelineated := b == '{' || b == '['
	value, err := d.p.ParseAny(v)
	if err != nil {
		d.err = err
		return nil, err
	}
	if !selfDelineated {
		if err := d.peekEndOfValue(); err != nil {
			d.err = err
			return nil, err
		}
	}
	d.p.r.reset()
	return value, nil
}

// peekEndOfValue requires that a non-self-delineated value (a bare number,
// or a bare n/t/f) be immediately followed by whitespace, a brace/bracket,
// a ':', or EOF — otherwise two values could run together unparseably,
// e.g. "12" following "3" with no separator.
func (d *StreamDecoder) peekEndOfValue() error {
	b, hasByte := d.p.r.peek()
	if !hasByte {
		return nil
	}
	if whitespace.get(b) || b == '{' || b == '}' || b == '[' || b == ']' || b == ':' {
		return nil
	}
	return d.p.errHere(TrailingCharacters)
}
