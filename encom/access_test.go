package encom

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMapAccessDuplicateKeysPreserved(t *testing.T) {
	c := qt.New(t)
	v, err := DecodeValue([]byte("{a:1 a:2}"))
	c.Assert(err, qt.IsNil)
	inner := v.SeqV()[0]
	c.Assert(inner.Kind(), qt.Equals, KindMap)
	entries := inner.MapV()
	c.Assert(entries, qt.HasLen, 2)
	c.Assert(entries[0].Key, qt.Equals, "a")
	c.Assert(entries[0].Value.UintV(), qt.Equals, uint64(1))
	c.Assert(entries[1].Key, qt.Equals, "a")
	c.Assert(entries[1].Value.UintV(), qt.Equals, uint64(2))
}

func TestSeqAccessTrailingComma(t *testing.T) {
	c := qt.New(t)
	// ']' closing a '{'-opened container (or vice versa) is a mismatched
	// bracket, reported as a trailing comma per the original's error
	// taxonomy.
	p := NewParser(newSliceReader([]byte("{1 2]")))
	_, err := p.ParseAny(valueVisitor{})
	var e *Error
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, TrailingComma)
}

func TestSeqAccessEofWhileParsingList(t *testing.T) {
	c := qt.New(t)
	p := NewParser(newSliceReader([]byte("{1 2")))
	_, err := p.ParseAny(valueVisitor{})
	var e *Error
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, EofWhileParsingList)
}

func TestMapAccessEofWhileParsingObject(t *testing.T) {
	c := qt.New(t)
	p := NewParser(newSliceReader([]byte("{a:1")))
	_, err := p.ParseAny(valueVisitor{})
	var e *Error
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, EofWhileParsingObject)
}
