package encom

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestByteSetBasics(t *testing.T) {
	c := qt.New(t)
	s := newByteSet("ab\x00\xff")
	c.Assert(s.get('a'), qt.IsTrue)
	c.Assert(s.get('b'), qt.IsTrue)
	c.Assert(s.get(0), qt.IsTrue)
	c.Assert(s.get(0xff), qt.IsTrue)
	c.Assert(s.get('c'), qt.IsFalse)
}

func TestByteSetRange(t *testing.T) {
	c := qt.New(t)
	s := newByteSetRange('0', '9')
	for b := 0; b < 256; b++ {
		want := b >= '0' && b <= '9'
		c.Assert(s.get(byte(b)), qt.Equals, want, qt.Commentf("byte %d", b))
	}
}

func TestByteSetOps(t *testing.T) {
	c := qt.New(t)
	a := newByteSet("a")
	b := newByteSet("b")
	u := a.union(b)
	c.Assert(u.get('a'), qt.IsTrue)
	c.Assert(u.get('b'), qt.IsTrue)
	c.Assert(u.get('c'), qt.IsFalse)

	inv := a.invert()
	c.Assert(inv.get('a'), qt.IsFalse)
	c.Assert(inv.get('b'), qt.IsTrue)

	w := u.without(a)
	c.Assert(w.get('a'), qt.IsFalse)
	c.Assert(w.get('b'), qt.IsTrue)
}

func TestWellKnownSets(t *testing.T) {
	c := qt.New(t)
	c.Assert(whitespace.get(' '), qt.IsTrue)
	c.Assert(whitespace.get('\t'), qt.IsTrue)
	c.Assert(whitespace.get(0x20), qt.IsTrue)
	c.Assert(whitespace.get(0x21), qt.IsFalse)
	c.Assert(digits.get('0'), qt.IsTrue)
	c.Assert(digits.get('9'), qt.IsTrue)
	c.Assert(digits.get('a'), qt.IsFalse)
	c.Assert(terminators.get('}'), qt.IsTrue)
	c.Assert(terminators.get(']'), qt.IsTrue)
	c.Assert(terminators.get(' '), qt.IsTrue)
	c.Assert(terminators.get('a'), qt.IsFalse)
}
