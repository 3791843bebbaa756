package encom

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

var classifyTests = []struct {
	testName  string
	data      string
	wantShape containerShape
	wantSaved string
}{{
	testName:  "heterogeneous-brace",
	data:      "{1",
	wantShape: shapeHeterogeneousSeq,
}, {
	testName:  "heterogeneous-bracket",
	data:      "[1",
	wantShape: shapeHeterogeneousSeq,
}, {
	testName:  "heterogeneous-negative",
	data:      "-5",
	wantShape: shapeHeterogeneousSeq,
}, {
	testName:  "heterogeneous-true",
	data:      "true",
	wantShape: shapeHeterogeneousSeq,
}, {
	testName:  "heterogeneous-false",
	data:      "false",
	wantShape: shapeHeterogeneousSeq,
}, {
	testName:  "map-via-colon",
	data:      "name:8=John Doe}",
	wantShape: shapeMap,
	wantSaved: "name",
}, {
	testName:  "map-key-then-brace",
	data:      "bar{1}}",
	wantShape: shapeMap,
	wantSaved: "bar",
}, {
	testName:  "str-seq",
	data:      "3=abc",
	wantShape: shapeStrSeq,
	wantSaved: "3",
}, {
	testName:  "bytes-seq",
	data:      "3~abc",
	wantShape: shapeBytesSeq,
	wantSaved: "3",
}, {
	testName:  "float-seq",
	data:      "1.5}",
	wantShape: shapeFloatSeq,
	wantSaved: "1",
}, {
	testName:  "int-seq-terminator",
	data:      "15}",
	wantShape: shapeIntSeq,
	wantSaved: "15",
}, {
	testName:  "int-seq-whitespace",
	data:      "15 20}",
	wantShape: shapeIntSeq,
	wantSaved: "15",
}, {
	testName:  "int-seq-eof",
	data:      "15",
	wantShape: shapeIntSeq,
	wantSaved: "15",
}, {
	testName:  "bare-n-is-not-null",
	data:      "n}",
	wantShape: shapeIntSeq,
	wantSaved: "n",
}}

func TestClassify(t *testing.T) {
	c := qt.New(t)
	for _, test := range classifyTests {
		c.Run(test.testName, func(c *qt.C) {
			p := NewParser(newSliceReader([]byte(test.data)))
			shape, err := p.classify()
			c.Assert(err, qt.IsNil)
			c.Assert(shape, qt.Equals, test.wantShape)
			if test.wantSaved != "" {
				c.Assert(string(p.r.getSaved()), qt.Equals, test.wantSaved)
			}
		})
	}
}
