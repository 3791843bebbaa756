package encom

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// reflectVisitor implements Visitor by decoding directly into an
// addressable Go value: the struct/map/slice data-model bridge alongside
// the reference Value tree. Grounded on encoding/json's
// indirect-then-dispatch shape — no third-party struct-mapping library
// fits this role, so this is the ecosystem-idiomatic approach rather than
// a shortcut.
type reflectVisitor struct {
	rv reflect.Value
}

// indirectAlloc follows pointers, allocating nil ones as it goes, until it
// reaches a non-pointer type.
func indirectAlloc(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			if !rv.CanSet() {
				return rv
			}
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	return rv
}

func (rvv reflectVisitor) mismatch(wire string) error {
	return messageError("cannot decode %s into Go type %s", wire, rvv.rv.Type())
}

func (rvv reflectVisitor) VisitNull() (any, error) {
	if rvv.rv.CanSet() {
		rvv.rv.Set(reflect.Zero(rvv.rv.Type()))
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitBool(b bool) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(b)
	case reflect.Interface:
		rv.Set(reflect.ValueOf(b))
	default:
		return nil, rvv.mismatch("a bool")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitUint64(v uint64) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.OverflowUint(v) {
			return nil, messageError("value %d overflows %s", v, rv.Type())
		}
		rv.SetUint(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v > math.MaxInt64 || rv.OverflowInt(int64(v)) {
			return nil, messageError("value %d overflows %s", v, rv.Type())
		}
		rv.SetInt(int64(v))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(v))
	case reflect.Interface:
		rv.Set(reflect.ValueOf(v))
	default:
		return nil, rvv.mismatch("an unsigned integer")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitInt64(v int64) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(v) {
			return nil, messageError("value %d overflows %s", v, rv.Type())
		}
		rv.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v < 0 || rv.OverflowUint(uint64(v)) {
			return nil, messageError("value %d cannot be represented as %s", v, rv.Type())
		}
		rv.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(v))
	case reflect.Interface:
		rv.Set(reflect.ValueOf(v))
	default:
		return nil, rvv.mismatch("a signed integer")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitFloat64(v float64) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(v)
	case reflect.Interface:
		rv.Set(reflect.ValueOf(v))
	default:
		return nil, rvv.mismatch("a float")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitString(s string) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
	case reflect.Interface:
		rv.Set(reflect.ValueOf(s))
	default:
		return nil, rvv.mismatch("a string")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitBytes(b []byte) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch {
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		rv.SetBytes(append([]byte(nil), b...))
	case rv.Kind() == reflect.Interface:
		rv.Set(reflect.ValueOf(append([]byte(nil), b...)))
	default:
		return nil, rvv.mismatch("a bytes payload")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitSeq(a SeqAccess) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch {
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		// A []byte target names a single bytes payload, the same way the
		// encoder special-cases it (writeBytesPayload): unwrap rather than
		// build element-by-element.
		return rvv.unwrapSingle(a)
	}
	switch rv.Kind() {
	case reflect.Slice:
		rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
		for {
			elem := reflect.New(rv.Type().Elem()).Elem()
			_, ok, err := a.NextElement(reflectVisitor{rv: elem})
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			rv.Set(reflect.Append(rv, elem))
		}
		return nil, nil
	case reflect.Array:
		i := 0
		for {
			var elem reflect.Value
			if i < rv.Len() {
				elem = rv.Index(i)
			} else {
				elem = reflect.New(rv.Type().Elem()).Elem() // overflow elements are parsed and discarded
			}
			_, ok, err := a.NextElement(reflectVisitor{rv: elem})
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			i++
		}
		return nil, nil
	case reflect.Interface:
		val, err := (valueVisitor{}).VisitSeq(a)
		if err != nil {
			return nil, err
		}
		rv.Set(reflect.ValueOf(val.(Value).Interface()))
		return nil, nil
	default:
		// Not a slice-like target: unwrap a single-element sequence
		// transparently, matching the bare-top-level convenience (§9).
		return rvv.unwrapSingle(a)
	}
}

// unwrapSingle decodes a's single element directly into rvv.rv, erroring if
// the sequence is empty or holds more than one element.
func (rvv reflectVisitor) unwrapSingle(a SeqAccess) (any, error) {
	_, ok, err := a.NextElement(reflectVisitor{rv: rvv.rv})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, messageError("expected a value, found an empty sequence")
	}
	_, ok2, err := a.NextElement(valueVisitor{})
	if err != nil {
		return nil, err
	}
	if ok2 {
		return nil, messageError("expected a single value, found a sequence of more than one")
	}
	return nil, nil
}

func (rvv reflectVisitor) VisitMap(a MapAccess) (any, error) {
	rv := indirectAlloc(rvv.rv)
	switch rv.Kind() {
	case reflect.Struct:
		return nil, rvv.decodeStruct(rv, a)
	case reflect.Map:
		return nil, rvv.decodeMap(rv, a)
	case reflect.Interface:
		val, err := (valueVisitor{}).VisitMap(a)
		if err != nil {
			return nil, err
		}
		rv.Set(reflect.ValueOf(val.(Value).Interface()))
		return nil, nil
	default:
		return nil, rvv.mismatch("a map")
	}
}

func (rvv reflectVisitor) decodeStruct(rv reflect.Value, a MapAccess) error {
	t := rv.Type()
	for {
		key, ok, err := a.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		idx := findStructField(t, key)
		if idx < 0 {
			if _, err := a.NextValue(valueVisitor{}); err != nil {
				return err
			}
			continue
		}
		field := rv.Field(idx)
		if !field.CanSet() {
			if _, err := a.NextValue(valueVisitor{}); err != nil {
				return err
			}
			continue
		}
		if _, err := a.NextValue(reflectVisitor{rv: field}); err != nil {
			return err
		}
	}
	return nil
}

// findStructField resolves a wire key to a struct field index, preferring
// an exact match on the `encom` tag or field name and falling back to a
// case-insensitive match.
func findStructField(t reflect.Type, key string) int {
	fallback := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("encom")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if name == key {
			return i
		}
		if fallback < 0 && strings.EqualFold(name, key) {
			fallback = i
		}
	}
	return fallback
}

func (rvv reflectVisitor) decodeMap(rv reflect.Value, a MapAccess) error {
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(t))
	}
	keyType := t.Key()
	elemType := t.Elem()
	for {
		key, ok, err := a.NextKey()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		keyVal, err := convertMapKey(keyType, key)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType).Elem()
		if _, err := a.NextValue(reflectVisitor{rv: elem}); err != nil {
			return err
		}
		rv.SetMapIndex(keyVal, elem)
	}
	return nil
}

// convertMapKey implements the numeric map-key quirk (§9): map keys are
// always strings on the wire; when the target wants a numeric key, this
// tries to parse the string as one, rather than rejecting it outright.
// Dropping this fallback changes which schemas can round-trip.
func convertMapKey(keyType reflect.Type, key string) (reflect.Value, error) {
	switch keyType.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(keyType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return reflect.Value{}, &Error{Kind: ExpectedNumericKey, msg: "map key " + strconv.Quote(key) + " is not numeric"}
		}
		v := reflect.New(keyType).Elem()
		if v.OverflowInt(n) {
			return reflect.Value{}, messageError("map key %q overflows %s", key, keyType)
		}
		v.SetInt(n)
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return reflect.Value{}, &Error{Kind: ExpectedNumericKey, msg: "map key " + strconv.Quote(key) + " is not numeric"}
		}
		v := reflect.New(keyType).Elem()
		if v.OverflowUint(n) {
			return reflect.Value{}, messageError("map key %q overflows %s", key, keyType)
		}
		v.SetUint(n)
		return v, nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return reflect.Value{}, &Error{Kind: ExpectedNumericKey, msg: "map key " + strconv.Quote(key) + " is not numeric"}
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return reflect.Value{}, &Error{Kind: FloatKeyMustBeFinite, msg: "map key " + strconv.Quote(key) + " is not finite"}
		}
		v := reflect.New(keyType).Elem()
		v.SetFloat(f)
		return v, nil
	default:
		return reflect.Value{}, messageError("unsupported map key type %s", keyType)
	}
}
