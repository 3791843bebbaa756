package encom

import (
	"errors"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestScanUint(t *testing.T) {
	c := qt.New(t)
	p := NewParser(newSliceReader([]byte("1234}")))
	v, n, err, ok := p.scanUint()
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, uint64(1234))
	c.Assert(n, qt.Equals, 4)
}

func TestScanUintOverflow(t *testing.T) {
	c := qt.New(t)
	p := NewParser(newSliceReader([]byte("99999999999999999999999}")))
	_, _, err, ok := p.scanUint()
	c.Assert(ok, qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, ".*")
	var e *Error
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, NumberOutOfRange)
}

var finishFloatTests = []struct {
	testName string
	data     string
	positive bool
	want     float64
}{{
	testName: "simple",
	data:     "5",
	positive: true,
	want:     1.5,
}, {
	testName: "negative",
	data:     "25",
	positive: false,
	want:     -1.25,
}, {
	testName: "exponent",
	data:     "5e2",
	positive: true,
	want:     150,
}, {
	testName: "negative-exponent",
	data:     "5e-2",
	positive: true,
	want:     0.015,
}}

func TestFinishFloat(t *testing.T) {
	c := qt.New(t)
	for _, test := range finishFloatTests {
		c.Run(test.testName, func(c *qt.C) {
			p := NewParser(newSliceReader([]byte("." + test.data)))
			f, err := p.finishFloat(test.positive, 1, 1)
			c.Assert(err, qt.IsNil)
			c.Assert(f, qt.Equals, test.want)
		})
	}
}

func TestFinishFloatNoFracDigits(t *testing.T) {
	c := qt.New(t)
	p := NewParser(newSliceReader([]byte(".}")))
	_, err := p.finishFloat(true, 1, 1)
	var e *Error
	c.Assert(errors.As(err, &e), qt.IsTrue)
	c.Assert(e.Kind, qt.Equals, InvalidNumber)
}

func TestNegateUint64(t *testing.T) {
	c := qt.New(t)

	// A negated zero has no negative int64 representation, so it
	// escalates to -0.0 rather than a plain 0 (§4.3's signed-zero
	// convention).
	i, f, isFloat := negateUint64(0)
	c.Assert(isFloat, qt.IsTrue)
	c.Assert(math.Signbit(f), qt.IsTrue)
	c.Assert(f, qt.Equals, float64(0))

	i, f, isFloat = negateUint64(1 << 63)
	c.Assert(isFloat, qt.IsFalse)
	c.Assert(i, qt.Equals, int64(math.MinInt64))

	// A magnitude beyond int64's range escalates to a negative float
	// rather than erroring.
	_, f, isFloat = negateUint64(1<<63 + 1)
	c.Assert(isFloat, qt.IsTrue)
	c.Assert(f, qt.Equals, -float64(1<<63+1))
}

func TestParseNegativeNumberZeroEscalatesToFloat(t *testing.T) {
	c := qt.New(t)
	v, err := DecodeValue([]byte("-0"))
	c.Assert(err, qt.IsNil)
	got := v.Interface().([]any)[0]
	f, ok := got.(float64)
	c.Assert(ok, qt.IsTrue)
	c.Assert(math.Signbit(f), qt.IsTrue)
	c.Assert(f, qt.Equals, float64(0))
}
