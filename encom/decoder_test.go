package encom

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDecoderDecodeStruct(t *testing.T) {
	c := qt.New(t)
	d := NewDecoder(strings.NewReader("name:8=John Doe age:43"))
	var p person
	err := d.Decode(&p)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.DeepEquals, person{Name: "John Doe", Age: 43})
}

func TestDecoderDecodeValue(t *testing.T) {
	c := qt.New(t)
	d := NewDecoderBytes([]byte("15 66"))
	v, err := d.DecodeValue()
	c.Assert(err, qt.IsNil)
	c.Assert(v.Kind(), qt.Equals, KindSeq)
	c.Assert(v.Interface(), qt.DeepEquals, []any{uint64(15), uint64(66)})
}

func TestDecoderRejectsTrailingCharacters(t *testing.T) {
	c := qt.New(t)
	// A leading '{' is a classifier trigger byte, so "extra" is read as a
	// would-be second top-level element and fails there rather than at
	// expectDocumentEnd.
	d := NewDecoderBytes([]byte("{a:1}extra"))
	var m map[string]int
	err := d.Decode(&m)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestDecoderRequiresNonNilPointer(t *testing.T) {
	c := qt.New(t)
	d := NewDecoderBytes([]byte("15"))
	var n int
	err := d.Decode(n)
	c.Assert(err, qt.Not(qt.IsNil))

	var pn *int
	err = NewDecoderBytes([]byte("15")).Decode(pn)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestUnmarshalConvenience(t *testing.T) {
	c := qt.New(t)
	var xs []int
	err := Unmarshal([]byte("1 2 3"), &xs)
	c.Assert(err, qt.IsNil)
	c.Assert(xs, qt.DeepEquals, []int{1, 2, 3})
}

func TestDecodeValueConvenience(t *testing.T) {
	c := qt.New(t)
	v, err := DecodeValue([]byte("a:n b:n"))
	c.Assert(err, qt.IsNil)
	c.Assert(v.Kind(), qt.Equals, KindMap)
	c.Assert(v.Interface(), qt.DeepEquals, map[string]any{"a": nil, "b": nil})
}

// TestUnmarshalValueFromValue exercises the "from-value" entry point:
// decoding a previously-parsed Value into a typed target with no byte
// reader involved.
func TestUnmarshalValueFromValue(t *testing.T) {
	c := qt.New(t)
	v, err := DecodeValue([]byte("name:8=John Doe age:43"))
	c.Assert(err, qt.IsNil)

	var p person
	err = UnmarshalValue(v, &p)
	c.Assert(err, qt.IsNil)
	c.Assert(p, qt.DeepEquals, person{Name: "John Doe", Age: 43})
}

func TestUnmarshalValueRequiresNonNilPointer(t *testing.T) {
	c := qt.New(t)
	v := UintValue(5)
	var n int
	c.Assert(UnmarshalValue(v, n), qt.Not(qt.IsNil))
}

// TestValueOfFromGoValue exercises the "to-value" entry point: building a
// Value tree from a Go value via reflection, with no wire bytes produced.
func TestValueOfFromGoValue(t *testing.T) {
	c := qt.New(t)
	v, err := ValueOf(person{Name: "Ada", Age: 36})
	c.Assert(err, qt.IsNil)
	c.Assert(v.Kind(), qt.Equals, KindMap)
	c.Assert(v.Interface(), qt.DeepEquals, map[string]any{"name": "Ada", "age": int64(36)})
}

func TestValueOfRoundTripsThroughUnmarshalValue(t *testing.T) {
	c := qt.New(t)
	v, err := ValueOf([]int{1, 2, 3})
	c.Assert(err, qt.IsNil)

	var xs []int
	c.Assert(UnmarshalValue(v, &xs), qt.IsNil)
	c.Assert(xs, qt.DeepEquals, []int{1, 2, 3})
}

func TestValueOfPassesThroughExistingValue(t *testing.T) {
	c := qt.New(t)
	orig := UintValue(7)
	v, err := ValueOf(orig)
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, orig)
}
