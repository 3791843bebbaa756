package encom

// newByteSet returns a set representation of the bytes in the given string.
func newByteSet(s string) *byteSet {
	var set byteSet
	for i := 0; i < len(s); i++ {
		set.set(s[i])
	}
	return &set
}

// newByteSetRange returns a set containing every byte in [lo, hi].
func newByteSetRange(lo, hi byte) *byteSet {
	var set byteSet
	for b := int(lo); b <= int(hi); b++ {
		set.set(byte(b))
	}
	return &set
}

// byteSet is a compact 256-bit membership set, good cache behaviour for the
// hot scanning loops in parser.go, classify.go and number.go.
type byteSet [4]uint64

// get reports whether b holds the byte x.
func (b *byteSet) get(x byte) bool {
	return b[x>>6]&(1<<(x&63)) != 0
}

// set ensures that x is in the set.
func (b *byteSet) set(x byte) {
	b[x>>6] |= 1 << (x & 63)
}

// union returns the union of b and b1.
func (b *byteSet) union(b1 *byteSet) *byteSet {
	r := *b
	for i := range r {
		r[i] |= b1[i]
	}
	return &r
}

// invert returns everything not in b.
func (b *byteSet) invert() *byteSet {
	r := *b
	for i := range r {
		r[i] = ^r[i]
	}
	return &r
}

// without returns b with every byte of b1 removed.
func (b *byteSet) without(b1 *byteSet) *byteSet {
	r := *b
	for i := range r {
		r[i] &^= b1[i]
	}
	return &r
}

var (
	// whitespace holds every byte the grammar treats as insignificant:
	// anything strictly less than 0x21 (spec.md §4.1).
	whitespace = newByteSetRange(0, 0x20)

	// digits holds '0'..'9'.
	digits = newByteSet("0123456789")

	// terminators holds the bytes that may legally follow a number or a
	// string/bytes payload: whitespace, '}' or ']'. EOF is handled
	// separately since it isn't a byte value.
	terminators = whitespace.union(newByteSet("}]"))
)
