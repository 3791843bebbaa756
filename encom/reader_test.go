package encom

import (
	"bytes"
	"io"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSliceReaderZeroCopy(t *testing.T) {
	c := qt.New(t)
	buf := []byte("5=hello")
	r := newSliceReader(buf)
	_, ok := r.readExact(2) // past "5="
	c.Assert(ok, qt.IsTrue)
	got, ok := r.readExact(5)
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(got), qt.Equals, "hello")
	// Zero-copy: the returned slice shares storage with buf.
	c.Assert(&got[0], qt.Equals, &buf[2])
}

func TestStreamReaderCopies(t *testing.T) {
	c := qt.New(t)
	r := newStreamReader(strings.NewReader("5=hello"))
	_, ok := r.readExact(2)
	c.Assert(ok, qt.IsTrue)
	got, ok := r.readExact(5)
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(got), qt.Equals, "hello")
}

func TestStreamReaderGrowsAcrossSmallReads(t *testing.T) {
	c := qt.New(t)
	// A reader that trickles one byte at a time forces readMore to be
	// called repeatedly, exercising the grow/slide path.
	data := strings.Repeat("a", minGrow*2)
	r := newStreamReader(&oneByteReader{data: []byte(data)})
	got, ok := r.readExact(len(data))
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(got), qt.Equals, data)
}

func TestByteOffsetStableAcrossSlides(t *testing.T) {
	c := qt.New(t)
	data := strings.Repeat("x", minGrow*3)
	r := newStreamReader(bytes.NewReader([]byte(data)))
	for i := 0; i < len(data); i += 997 {
		n := 997
		if i+n > len(data) {
			n = len(data) - i
		}
		_, ok := r.readExact(n)
		c.Assert(ok, qt.IsTrue)
		// reset moves r0 up to the cursor, so later readMore calls slide
		// buf instead of only growing it.
		r.reset()
		c.Assert(r.byteOffset(), qt.Equals, int64(i+n))
	}
}

func TestPositionTracksNewlines(t *testing.T) {
	c := qt.New(t)
	r := newSliceReader([]byte("ab\ncd\nef"))
	r.discard(7) // past the second '\n', at 'f'
	line, col := r.position()
	c.Assert(line, qt.Equals, 3)
	c.Assert(col, qt.Equals, 2)
}

type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}
