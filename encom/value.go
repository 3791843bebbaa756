package encom

import (
	"math"
	"reflect"
)

// Kind identifies which of the nine wire value kinds a Value holds (§3).
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat
	KindString
	KindBytes
	KindSeq
	KindMap
)

// MapEntry is one key/value pair of a Map value. Maps preserve input
// order and accept duplicate keys (§3): they are a slice of entries, not a
// Go map.
type MapEntry struct {
	Key   string
	Value Value
}

// Value is the dynamic value tree: the bridge target for decoding without
// a known Go type. Scalars (Bool/Uint/Int/Float) are packed into a single
// uint64 rather than carrying one field per kind; composite kinds need
// their own slices since nothing of fixed size can hold them.
type Value struct {
	kind   Kind
	number uint64 // Bool (0/1), Uint, Int (reinterpreted bits), Float (math.Float64bits)
	str    string
	bytes  []byte
	seq    []Value
	mapv   []MapEntry
}

func Null() Value { return Value{kind: KindNull} }

func BoolValue(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: KindBool, number: n}
}

func UintValue(v uint64) Value { return Value{kind: KindUint, number: v} }
func IntValue(v int64) Value   { return Value{kind: KindInt, number: uint64(v)} }
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, number: math.Float64bits(v)}
}
func StringValue(s string) Value   { return Value{kind: KindString, str: s} }
func BytesValue(b []byte) Value    { return Value{kind: KindBytes, bytes: b} }
func SeqValue(elems []Value) Value { return Value{kind: KindSeq, seq: elems} }
func MapValue(entries []MapEntry) Value {
	return Value{kind: KindMap, mapv: entries}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) BoolV() bool       { return v.number != 0 }
func (v Value) UintV() uint64     { return v.number }
func (v Value) IntV() int64       { return int64(v.number) }
func (v Value) FloatV() float64   { return math.Float64frombits(v.number) }
func (v Value) StringV() string   { return v.str }
func (v Value) BytesV() []byte    { return v.bytes }
func (v Value) SeqV() []Value     { return v.seq }
func (v Value) MapV() []MapEntry  { return v.mapv }

// Get returns the first entry's value for key in a Map, or the zero Value
// and false if no such entry exists (duplicates resolve to the first
// occurrence, matching input order).
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.mapv {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Interface converts v into the nearest built-in Go representation:
// nil, bool, uint64, int64, float64, string, []byte, []any, or
// map[string]any (collapsing duplicate keys to their first occurrence, in
// contrast to SeqV/MapV which preserve them all).
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.BoolV()
	case KindUint:
		return v.UintV()
	case KindInt:
		return v.IntV()
	case KindFloat:
		return v.FloatV()
	case KindString:
		return v.str
	case KindBytes:
		return v.bytes
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.mapv))
		for _, e := range v.mapv {
			if _, exists := out[e.Key]; !exists {
				out[e.Key] = e.Value.Interface()
			}
		}
		return out
	default:
		return nil
	}
}

// valueVisitor implements Visitor by building a Value tree; it is the
// reference data-model bridge.
type valueVisitor struct{}

func (valueVisitor) VisitNull() (any, error)           { return Null(), nil }
func (valueVisitor) VisitBool(b bool) (any, error)     { return BoolValue(b), nil }
func (valueVisitor) VisitUint64(v uint64) (any, error) { return UintValue(v), nil }
func (valueVisitor) VisitInt64(v int64) (any, error)   { return IntValue(v), nil }
func (valueVisitor) VisitFloat64(v float64) (any, error) {
	return FloatValue(v), nil
}
func (valueVisitor) VisitString(s string) (any, error) { return StringValue(s), nil }

// VisitBytes copies its argument: the Value tree outlives the parse call,
// but a stream-backed reader's payload slice is only valid until the next
// read (see Parser.finishBytes).
func (valueVisitor) VisitBytes(b []byte) (any, error) {
	return BytesValue(append([]byte(nil), b...)), nil
}

func (vv valueVisitor) VisitSeq(a SeqAccess) (any, error) {
	var elems []Value
	for {
		val, ok, err := a.NextElement(vv)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		elems = append(elems, val.(Value))
	}
	return SeqValue(elems), nil
}

func (vv valueVisitor) VisitMap(a MapAccess) (any, error) {
	var entries []MapEntry
	for {
		key, ok, err := a.NextKey()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		val, err := a.NextValue(vv)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: key, Value: val.(Value)})
	}
	return MapValue(entries), nil
}

// visit replays v's contents into vis, the same sequence of VisitXxx calls
// a parser would make while scanning the equivalent wire bytes — the
// "from-value" deserialization path (§6), which never touches a byte
// reader.
func (v Value) visit(vis Visitor) (any, error) {
	switch v.kind {
	case KindNull:
		return vis.VisitNull()
	case KindBool:
		return vis.VisitBool(v.BoolV())
	case KindUint:
		return vis.VisitUint64(v.UintV())
	case KindInt:
		return vis.VisitInt64(v.IntV())
	case KindFloat:
		return vis.VisitFloat64(v.FloatV())
	case KindString:
		return vis.VisitString(v.str)
	case KindBytes:
		return vis.VisitBytes(v.bytes)
	case KindSeq:
		return vis.VisitSeq(&valueSeqAccess{elems: v.seq})
	case KindMap:
		return vis.VisitMap(&valueMapAccess{entries: v.mapv})
	default:
		return nil, messageError("invalid value kind %d", v.kind)
	}
}

// valueSeqAccess adapts a Value's seq slice to SeqAccess, replaying
// already-parsed elements instead of pulling from a reader.
type valueSeqAccess struct {
	elems []Value
	i     int
}

func (a *valueSeqAccess) NextElement(v Visitor) (any, bool, error) {
	if a.i >= len(a.elems) {
		return nil, false, nil
	}
	elem := a.elems[a.i]
	a.i++
	val, err := elem.visit(v)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// valueMapAccess adapts a Value's mapv slice to MapAccess.
type valueMapAccess struct {
	entries []MapEntry
	i       int
}

func (a *valueMapAccess) NextKey() (string, bool, error) {
	if a.i >= len(a.entries) {
		return "", false, nil
	}
	return a.entries[a.i].Key, true, nil
}

func (a *valueMapAccess) NextValue(v Visitor) (any, error) {
	val, err := a.entries[a.i].Value.visit(v)
	a.i++
	return val, err
}

// UnmarshalValue decodes a previously-parsed Value into target, which must
// be a non-nil pointer, without re-scanning any bytes (the "from-value"
// entry point, §6).
func UnmarshalValue(v Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return messageError("UnmarshalValue requires a non-nil pointer, got %T", target)
	}
	_, err := v.visit(reflectVisitor{rv: rv.Elem()})
	return err
}

// ValueOf converts v into a dynamic Value tree via reflection, without
// producing any wire bytes (the "to-value" mirror of UnmarshalValue, §6).
// v may be a struct, map, slice, pointer, or scalar Go value — the same
// shapes Marshal accepts. If v is already a Value, it is returned as-is.
func ValueOf(v any) (Value, error) {
	if val, ok := v.(Value); ok {
		return val, nil
	}
	return reflectToValue(reflect.ValueOf(v))
}

func reflectToValue(rv reflect.Value) (Value, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if !rv.IsValid() || rv.IsNil() {
			return Null(), nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return UintValue(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return BytesValue(append([]byte(nil), rv.Bytes()...)), nil
		}
		elems := make([]Value, rv.Len())
		for i := range elems {
			ev, err := reflectToValue(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			elems[i] = ev
		}
		return SeqValue(elems), nil
	case reflect.Map:
		keys := rv.MapKeys()
		entries := make([]MapEntry, 0, len(keys))
		for _, k := range keys {
			ks, err := mapKeyString(k)
			if err != nil {
				return Value{}, err
			}
			ev, err := reflectToValue(rv.MapIndex(k))
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: ks, Value: ev})
		}
		return MapValue(entries), nil
	case reflect.Struct:
		fields := structFields(rv)
		entries := make([]MapEntry, 0, len(fields))
		for _, f := range fields {
			ev, err := reflectToValue(f.v)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: f.name, Value: ev})
		}
		return MapValue(entries), nil
	default:
		return Value{}, messageError("cannot convert Go type %s to Value", rv.Type())
	}
}
