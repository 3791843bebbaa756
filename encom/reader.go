package encom

import "io"

const (
	// When the buffer is grown, it will be grown by a minimum of 8K.
	minGrow = 8192
	// The buffer will be grown if there's less than minRead space available
	// to read into.
	minRead = minGrow / 2
)

// reader is the input reader: a byte-level cursor over either a slice or
// an io.Reader, tracking the most recent "saved span" the look-ahead
// classifier records (§4.2, §4.4).
//
// The zero value is not usable; use newSliceReader or newStreamReader.
type reader struct {
	// rd holds the stream, if any. If rd is nil, complete is true and buf
	// holds the entire input.
	rd io.Reader

	// buf holds data that's been read. For a slice-backed reader this is
	// the caller's slice itself, never reallocated.
	buf []byte

	// r0 holds the earliest position in buf that's still needed (the start
	// of the current token). Data in buf[:r0] is considered discarded.
	r0 int

	// r1 holds the read position: buf[r1:] is unread, buf[len(buf):cap(buf)]
	// is available to read into.
	r1 int

	// complete reports whether buf holds all the data that will ever be
	// available.
	complete bool

	// err holds a non-EOF error returned by rd.
	err error

	// saveStartOff/saveEndOff hold offsets (relative to the start of buf,
	// not to r0) of the most recent saved span.
	saveStartOff int
	saveEndOff   int

	// scratch backs read results that have to be copied because the
	// reader isn't slice-backed (or a grow/slide moved the data out from
	// under a borrowed slice).
	scratch []byte

	// consumedBase holds the absolute stream offset of buf[0], incremented
	// by r0 every time readMore slides or regrows buf. consumedBase+r1 is
	// therefore the absolute byte offset of the cursor regardless of how
	// many times buf has been shifted (§7, StreamDecoder.ByteOffset).
	consumedBase int64
}

// newSliceReader returns a reader over buf with no further input available.
// Reads are zero-copy: returned slices borrow directly from buf.
func newSliceReader(buf []byte) *reader {
	return &reader{buf: buf, complete: true}
}

// newStreamReader returns a reader that pulls more data from rd as needed.
// Every readExact result is copied into an internal scratch buffer.
func newStreamReader(rd io.Reader) *reader {
	return &reader{rd: rd}
}

// peek returns the next unread byte without consuming it.
func (r *reader) peek() (byte, bool) {
	if !r.ensure(1) {
		return 0, false
	}
	return r.buf[r.r1], true
}

// next consumes and returns the next unread byte.
func (r *reader) next() (byte, bool) {
	if !r.ensure(1) {
		return 0, false
	}
	b := r.buf[r.r1]
	r.r1++
	return b, true
}

// discard consumes n bytes already known (via peek/ensure) to be available.
func (r *reader) discard(n int) {
	r.r1 += n
}

// ensure guarantees that at least n unread bytes are available, pulling
// more input if necessary. It reports whether enough bytes are available.
func (r *reader) ensure(n int) bool {
	if r.r1+n <= len(r.buf) {
		return true
	}
	return r.ensureSlow(n)
}

func (r *reader) ensureSlow(n int) bool {
	for {
		if r.complete {
			return false
		}
		r.readMore()
		if r.r1+n <= len(r.buf) {
			return true
		}
	}
}

// readMore reads more data into buf, growing or sliding it first if needed.
func (r *reader) readMore() {
	if r.complete {
		return
	}
	avail := cap(r.buf) - len(r.buf)
	if avail < minRead {
		if r.r0+avail >= minRead {
			copy(r.buf, r.buf[r.r0:])
			r.buf = r.buf[:len(r.buf)-r.r0]
			r.r1 -= r.r0
			r.saveStartOff -= r.r0
			r.saveEndOff -= r.r0
			r.consumedBase += int64(r.r0)
			r.r0 = 0
		} else {
			used := len(r.buf) - r.r0
			newCap := cap(r.buf) * 2
			if newCap-used < minGrow {
				newCap = used + minGrow
			}
			buf1 := make([]byte, used, newCap)
			copy(buf1, r.buf[r.r0:])
			r.buf = buf1
			r.r1 -= r.r0
			r.saveStartOff -= r.r0
			r.saveEndOff -= r.r0
			r.consumedBase += int64(r.r0)
			r.r0 = 0
		}
	}
	n, err := r.rd.Read(r.buf[len(r.buf):cap(r.buf)])
	r.buf = r.buf[:len(r.buf)+n]
	if err == nil {
		return
	}
	r.complete = true
	if err != io.EOF {
		r.err = err
	}
}

// readExact consumes exactly n bytes and returns them, borrowed when the
// reader is slice-backed, copied into scratch when it is stream-backed.
func (r *reader) readExact(n int) ([]byte, bool) {
	if !r.ensure(n) {
		return nil, false
	}
	start := r.r1
	r.r1 += n
	if r.rd == nil {
		// Slice-backed: buf never moves, always safe to borrow.
		return r.buf[start:r.r1], true
	}
	// Stream-backed: buf can be slid/reallocated on a later read, so copy
	// out now rather than hand back a slice that might be invalidated.
	r.scratch = append(r.scratch[:0], r.buf[start:r.r1]...)
	return r.scratch, true
}

// saveStart records the current cursor as the start of a saved span.
func (r *reader) saveStart() {
	r.saveStartOff = r.r1
}

// saveEnd records the current cursor as the (exclusive) end of the saved
// span. It does not consume the byte at the cursor.
func (r *reader) saveEnd() {
	r.saveEndOff = r.r1
}

// getSaved returns the bytes captured by the most recent saveStart/saveEnd
// pair.
func (r *reader) getSaved() []byte {
	return r.buf[r.saveStartOff:r.saveEndOff]
}

// clearSaved empties the saved span (§3 invariant: end == start means
// "no saved data").
func (r *reader) clearSaved() {
	r.saveEndOff = r.saveStartOff
}

// savedEmpty reports whether there is currently no saved span.
func (r *reader) savedEmpty() bool {
	return r.saveEndOff == r.saveStartOff
}

// reset discards everything up to the current cursor; called between
// top-level values so r0 doesn't retain memory unnecessarily.
func (r *reader) reset() {
	r.r0 = r.r1
}

// byteOffset returns the absolute number of bytes consumed from the start
// of the input, independent of any internal sliding/growth of buf.
func (r *reader) byteOffset() int64 {
	return r.consumedBase + int64(r.r1)
}

// position computes the 1-based (line, column) of the current cursor by
// rescanning buf[:r1]. This is only ever called when constructing an error,
// so its O(n) cost doesn't matter on the happy path (§4.2).
func (r *reader) position() (line, col int) {
	return r.positionOf(r.r1)
}

func (r *reader) positionOf(offset int) (line, col int) {
	line, col = 1, 1
	limit := offset
	if limit > len(r.buf) {
		limit = len(r.buf)
	}
	for _, b := range r.buf[:limit] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

