package encom

import (
	"bytes"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMarshalMapCompact(t *testing.T) {
	// §8's serializer-side check, verbatim.
	c := qt.New(t)
	b, err := Marshal(map[string]string{"name": "John Doe"})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "name:8=John Doe")
}

func TestMarshalEmptySeqTopLevel(t *testing.T) {
	c := qt.New(t)
	b, err := Marshal([]int{})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "[]")
}

func TestMarshalTopLevelSeqIsBare(t *testing.T) {
	c := qt.New(t)
	b, err := Marshal([]int{15, 66})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "15 66")
}

func TestMarshalValueScenario4RoundTrip(t *testing.T) {
	// §8 scenario 4: a top-level sequence of maps keeps each map braced,
	// since only the outer sequence is bare.
	c := qt.New(t)
	v := SeqValue([]Value{
		MapValue([]MapEntry{{Key: "a", Value: UintValue(1)}}),
		MapValue([]MapEntry{{Key: "d", Value: UintValue(4)}}),
	})
	b, err := Marshal(v)
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "{a:1} {d:4}")

	got, err := DecodeValue(b)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Interface(), qt.DeepEquals, v.Interface())
}

func TestMarshalFloatAlwaysHasDot(t *testing.T) {
	c := qt.New(t)
	b, err := Marshal(float64(3))
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "3.0")

	b, err = Marshal(1.5)
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "1.5")
}

func TestMarshalBytesTopLevel(t *testing.T) {
	c := qt.New(t)
	b, err := Marshal([]byte("abc"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "3~abc")
}

func TestMarshalStructTopLevelOmitsTagged(t *testing.T) {
	c := qt.New(t)
	b, err := Marshal(person{Name: "John Doe", Age: 43, Email: "ignored"})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "name:8=John Doe age:43")
}

func TestMarshalColonElidedBeforeContainer(t *testing.T) {
	// The ':' is elided when a value begins with '{' or '[' (§4.7). Wrap
	// the map in a one-element outer sequence so it's nested, not bare.
	c := qt.New(t)
	inner := MapValue([]MapEntry{
		{Key: "items", Value: SeqValue([]Value{UintValue(1)})},
	})
	b, err := Marshal(SeqValue([]Value{inner}))
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals, "{items[1]}")
}

func TestMarshalMapKeyRejectsInvalidChars(t *testing.T) {
	c := qt.New(t)
	_, err := Marshal(map[string]int{"a:b": 1})
	var e *Error
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, KeyMustBeAString)
}

func TestEncodeEnumUnit(t *testing.T) {
	c := qt.New(t)
	e := NewEncoder()
	err := e.EncodeEnum("Some", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(string(e.Bytes()), qt.Equals, "4=Some")
}

func TestEncodeEnumWithPayload(t *testing.T) {
	c := qt.New(t)
	e := NewEncoder()
	err := e.EncodeEnum("Some", func(e *Encoder) error {
		return e.Encode(UintValue(5))
	})
	c.Assert(err, qt.IsNil)
	c.Assert(string(e.Bytes()), qt.Equals, "{Some:5}")
}

func TestEncodeToWriter(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	err := EncodeToWriter(&buf, []int{1, 2, 3})
	c.Assert(err, qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "1 2 3")
}

func TestMarshalIndentNestedSeq(t *testing.T) {
	c := qt.New(t)
	b, err := MarshalIndentString(map[string]any{"a": []int{1, 2}}, "  ")
	c.Assert(err, qt.IsNil)
	c.Assert(b, qt.Equals, "\na[\n  1\n  2\n]")
}
