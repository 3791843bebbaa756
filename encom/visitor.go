package encom

// Visitor is the data-model bridge: the caller-supplied interface through
// which the parser emits primitive events, a plain Go interface standing
// in for a pull-style callback set.
type Visitor interface {
	VisitNull() (any, error)
	VisitBool(b bool) (any, error)
	VisitUint64(v uint64) (any, error)
	VisitInt64(v int64) (any, error)
	VisitFloat64(v float64) (any, error)
	VisitString(s string) (any, error)
	VisitBytes(b []byte) (any, error)
	VisitSeq(a SeqAccess) (any, error)
	VisitMap(a MapAccess) (any, error)
}

// SeqAccess is a pull iterator over a sequence's elements: "give me the
// next thing or tell me there isn't one" rather than a push/registration
// style.
type SeqAccess interface {
	// NextElement parses the next element using v, or reports ok=false
	// once the sequence is exhausted.
	NextElement(v Visitor) (value any, ok bool, err error)
}

// MapAccess is a pull iterator over a map's entries.
type MapAccess interface {
	// NextKey returns the next entry's key, or ok=false once the map is
	// exhausted.
	NextKey() (key string, ok bool, err error)
	// NextValue parses the value for the key most recently returned by
	// NextKey.
	NextValue(v Visitor) (any, error)
}
