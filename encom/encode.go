package encom

import (
	"io"
	"reflect"
	"strconv"
)

// Formatter controls the compact-vs-indented layout of an Encoder,
// mirroring original_source's CompactFormatter/PrettyFormatter (§4.7).
type Formatter interface {
	BeginContainer(e *Encoder)
	EndContainer(e *Encoder, empty bool)
	BeforeElement(e *Encoder, first bool)
}

// CompactFormatter separates entries with a single space and writes empty
// containers with no interior bytes.
type CompactFormatter struct{}

func (CompactFormatter) BeginContainer(e *Encoder)          {}
func (CompactFormatter) EndContainer(e *Encoder, empty bool) {}
func (CompactFormatter) BeforeElement(e *Encoder, first bool) {
	if !first {
		e.writeByte(' ')
	}
}

// PrettyFormatter indents nested containers, one level per depth, using
// Indent (defaulting to two spaces).
type PrettyFormatter struct {
	Indent string
}

func (f *PrettyFormatter) indent() string {
	if f.Indent == "" {
		return "  "
	}
	return f.Indent
}

func (f *PrettyFormatter) BeginContainer(e *Encoder) {
	e.depth++
}

func (f *PrettyFormatter) EndContainer(e *Encoder, empty bool) {
	e.depth--
	if !empty {
		e.writeByte('\n')
		e.writeIndent(f.indent())
	}
}

func (f *PrettyFormatter) BeforeElement(e *Encoder, first bool) {
	if !first {
		// separator handled by the newline written for every element,
		// including the first.
	}
	e.writeByte('\n')
	e.writeIndent(f.indent())
}

// Encoder stages bytes in a buffer and flushes with a single Write call
// rather than one syscall per field.
type Encoder struct {
	buf       []byte
	fmt       Formatter
	depth     int
	lastError error
}

// NewEncoder returns a compact encoder writing into buf (use Bytes to
// retrieve the result).
func NewEncoder() *Encoder {
	return &Encoder{fmt: CompactFormatter{}}
}

// SetPretty switches the encoder to indented output.
func (e *Encoder) SetPretty(indent string) *Encoder {
	e.fmt = &PrettyFormatter{Indent: indent}
	return e
}

func (e *Encoder) writeByte(b byte)      { e.buf = append(e.buf, b) }
func (e *Encoder) writeString(s string)  { e.buf = append(e.buf, s...) }
func (e *Encoder) writeBytes(b []byte)   { e.buf = append(e.buf, b...) }
func (e *Encoder) writeIndent(unit string) {
	for i := 0; i < e.depth; i++ {
		e.writeString(unit)
	}
}

// Bytes returns the bytes staged so far.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset clears the staging buffer for reuse.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Encode appends v's wire representation to the staging buffer. v may be
// an encom.Value or any Go value reachable via reflect (structs,
// maps, slices, and scalars, mirroring Unmarshal's target types).
//
// The top-level map/sequence is written bare, mirroring the decoder's
// init-seq/init-map adapter: a map's entries are written without
// enclosing braces and a sequence's elements without enclosing brackets,
// since those are exactly the shapes ParseDocument accepts back (§9).
// An empty top-level sequence has no bare form at all, so it falls back
// to an explicit "[]" (§8's serializer-side check).
func (e *Encoder) Encode(v any) error {
	if val, ok := v.(Value); ok {
		return e.encodeTop(val)
	}
	return e.encodeReflectTop(reflect.ValueOf(v))
}

func (e *Encoder) encodeTop(v Value) error {
	switch v.Kind() {
	case KindMap:
		return e.encodeMapEntries(len(v.mapv),
			func(i int) (string, error) { return v.mapv[i].Key, nil },
			func(i int) error { return e.encodeValue(v.mapv[i].Value) })
	case KindSeq:
		if len(v.seq) == 0 {
			e.writeByte('[')
			e.writeByte(']')
			return nil
		}
		return e.encodeSeqElements(len(v.seq), func(i int) error { return e.encodeValue(v.seq[i]) })
	default:
		return e.encodeValue(v)
	}
}

func (e *Encoder) encodeReflectTop(rv reflect.Value) error {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			e.writeByte('n')
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		return e.encodeMapEntries(len(keys),
			func(i int) (string, error) { return mapKeyString(keys[i]) },
			func(i int) error { return e.encodeReflect(rv.MapIndex(keys[i])) })
	case reflect.Struct:
		fields := structFields(rv)
		return e.encodeMapEntries(len(fields),
			func(i int) (string, error) { return fields[i].name, nil },
			func(i int) error { return e.encodeReflect(fields[i].v) })
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			e.writeBytesPayload(rv.Bytes())
			return nil
		}
		if rv.Len() == 0 {
			e.writeByte('[')
			e.writeByte(']')
			return nil
		}
		return e.encodeSeqElements(rv.Len(), func(i int) error { return e.encodeReflect(rv.Index(i)) })
	default:
		return e.encodeReflect(rv)
	}
}

func (e *Encoder) encodeValue(v Value) error {
	switch v.Kind() {
	case KindNull:
		e.writeByte('n')
	case KindBool:
		if v.BoolV() {
			e.writeByte('t')
		} else {
			e.writeByte('f')
		}
	case KindUint:
		e.buf = strconv.AppendUint(e.buf, v.UintV(), 10)
	case KindInt:
		e.buf = strconv.AppendInt(e.buf, v.IntV(), 10)
	case KindFloat:
		e.writeFloat(v.FloatV())
	case KindString:
		e.writeLengthPrefixed(v.StringV(), '=')
	case KindBytes:
		e.writeBytesPayload(v.BytesV())
	case KindSeq:
		return e.encodeSeq(len(v.seq), func(i int) error { return e.encodeValue(v.seq[i]) })
	case KindMap:
		return e.encodeMap(len(v.mapv), func(i int) (string, error) { return v.mapv[i].Key, nil },
			func(i int) error { return e.encodeValue(v.mapv[i].Value) })
	}
	return nil
}

func (e *Encoder) writeFloat(f float64) {
	start := len(e.buf)
	e.buf = strconv.AppendFloat(e.buf, f, 'f', -1, 64)
	hasDot := false
	for _, b := range e.buf[start:] {
		if b == '.' {
			hasDot = true
			break
		}
	}
	if !hasDot {
		e.writeString(".0")
	}
}

func (e *Encoder) writeLengthPrefixed(s string, marker byte) {
	e.buf = strconv.AppendInt(e.buf, int64(len(s)), 10)
	e.writeByte(marker)
	e.writeString(s)
}

func (e *Encoder) writeBytesPayload(b []byte) {
	e.buf = strconv.AppendInt(e.buf, int64(len(b)), 10)
	e.writeByte('~')
	e.writeBytes(b)
}

func (e *Encoder) encodeSeqElements(n int, elem func(i int) error) error {
	for i := 0; i < n; i++ {
		e.fmt.BeforeElement(e, i == 0)
		if err := elem(i); err != nil {
			return err
		}
	}
	return nil
}

// encodeSeq writes a sequence using '[' / ']' unconditionally: the decoder
// always treats a '['-opened group as a heterogeneous sequence, so this
// sidesteps the look-ahead classifier entirely on the encode side while
// staying within the grammar (§4.1's seq production allows either
// bracket).
func (e *Encoder) encodeSeq(n int, elem func(i int) error) error {
	e.writeByte('[')
	e.fmt.BeginContainer(e)
	if err := e.encodeSeqElements(n, elem); err != nil {
		return err
	}
	e.fmt.EndContainer(e, n == 0)
	e.writeByte(']')
	return nil
}

func (e *Encoder) encodeMapEntries(n int, key func(i int) (string, error), value func(i int) error) error {
	for i := 0; i < n; i++ {
		e.fmt.BeforeElement(e, i == 0)
		k, err := key(i)
		if err != nil {
			return err
		}
		if !validMapKey(k) {
			return &Error{Kind: KeyMustBeAString, msg: "map key must not contain ':' or a brace"}
		}
		e.writeString(k)
		valueStart := len(e.buf)
		if err := value(i); err != nil {
			return err
		}
		// The ':' is elided when the value starts with '{' or '[' (§4.7);
		// splice it in now that we know the value's first byte.
		if valueStart < len(e.buf) && e.buf[valueStart] != '{' && e.buf[valueStart] != '[' {
			e.buf = append(e.buf, 0)
			copy(e.buf[valueStart+1:], e.buf[valueStart:])
			e.buf[valueStart] = ':'
		}
	}
	return nil
}

func (e *Encoder) encodeMap(n int, key func(i int) (string, error), value func(i int) error) error {
	e.writeByte('{')
	e.fmt.BeginContainer(e)
	if err := e.encodeMapEntries(n, key, value); err != nil {
		return err
	}
	e.fmt.EndContainer(e, n == 0)
	e.writeByte('}')
	return nil
}

func validMapKey(k string) bool {
	for i := 0; i < len(k); i++ {
		if k[i] == ':' || k[i] == '{' || k[i] == '[' {
			return false
		}
	}
	return true
}

// EncodeEnum writes {variant:payload}, or just the variant name as a
// string when payload is nil (a unit variant, §4.7).
func (e *Encoder) EncodeEnum(variant string, payload func(*Encoder) error) error {
	if payload == nil {
		e.writeLengthPrefixed(variant, '=')
		return nil
	}
	return e.encodeMap(1, func(int) (string, error) { return variant, nil }, func(int) error {
		return payload(e)
	})
}

func (e *Encoder) encodeReflect(rv reflect.Value) error {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			e.writeByte('n')
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Invalid:
		e.writeByte('n')
	case reflect.Bool:
		if rv.Bool() {
			e.writeByte('t')
		} else {
			e.writeByte('f')
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf = strconv.AppendInt(e.buf, rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf = strconv.AppendUint(e.buf, rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		e.writeFloat(rv.Float())
	case reflect.String:
		e.writeLengthPrefixed(rv.String(), '=')
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			e.writeBytesPayload(rv.Bytes())
			return nil
		}
		return e.encodeSeq(rv.Len(), func(i int) error { return e.encodeReflect(rv.Index(i)) })
	case reflect.Map:
		keys := rv.MapKeys()
		return e.encodeMap(len(keys),
			func(i int) (string, error) { return mapKeyString(keys[i]) },
			func(i int) error { return e.encodeReflect(rv.MapIndex(keys[i])) })
	case reflect.Struct:
		return e.encodeStruct(rv)
	default:
		return messageError("cannot encode Go type %s", rv.Type())
	}
	return nil
}

func mapKeyString(k reflect.Value) (string, error) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64), nil
	default:
		return "", &Error{Kind: KeyMustBeAString, msg: "map key type " + k.Type().String() + " cannot become a string"}
	}
}

type encodeField struct {
	name string
	v    reflect.Value
}

func structFields(rv reflect.Value) []encodeField {
	t := rv.Type()
	var fields []encodeField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name := f.Tag.Get("encom")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, encodeField{name: name, v: rv.Field(i)})
	}
	return fields
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	fields := structFields(rv)
	return e.encodeMap(len(fields),
		func(i int) (string, error) { return fields[i].name, nil },
		func(i int) error { return e.encodeReflect(fields[i].v) })
}

// Marshal encodes v in compact form.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalIndent encodes v with the given indent unit.
func MarshalIndent(v any, indent string) ([]byte, error) {
	e := NewEncoder().SetPretty(indent)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// MarshalString is Marshal returning a string, for callers who'd otherwise
// immediately convert.
func MarshalString(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MarshalIndentString is MarshalIndent returning a string.
func MarshalIndentString(v any, indent string) (string, error) {
	b, err := MarshalIndent(v, indent)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EncodeToWriter writes v's compact encoding to w.
func EncodeToWriter(w io.Writer, v any) error {
	e := NewEncoder()
	if err := e.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(e.Bytes())
	return err
}

// EncodeIndentToWriter writes v's indented encoding to w.
func EncodeIndentToWriter(w io.Writer, v any, indent string) error {
	e := NewEncoder().SetPretty(indent)
	if err := e.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(e.Bytes())
	return err
}
