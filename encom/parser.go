package encom

import (
	"math"
	"unicode/utf8"
)

// maxDepth is the recursion budget (§3 Parser state): a container that
// would need more than this many levels of nesting fails with
// RecursionLimitExceeded rather than growing the Go call stack unbounded.
const maxDepth = 128

// Parser is the core parser: it drives dispatch on the input reader and
// emits primitive events to a caller-supplied Visitor.
type Parser struct {
	r     *reader
	depth int
}

// NewParser wraps r for parsing. The zero Parser is not usable.
func NewParser(r *reader) *Parser {
	return &Parser{r: r, depth: maxDepth}
}

func (p *Parser) errHere(kind ErrorKind) error {
	line, col := p.r.position()
	return syntaxError(kind, line, col)
}

func (p *Parser) dataError(format string, args ...any) error {
	line, col := p.r.position()
	e := messageError(format, args...)
	e.Line, e.Column = line, col
	return e
}

func (p *Parser) skipWhitespace() error {
	for {
		b, ok := p.r.peek()
		if !ok || !whitespace.get(b) {
			return nil
		}
		p.r.discard(1)
	}
}

func (p *Parser) enterDepth() error {
	if p.depth <= 0 {
		return p.errHere(RecursionLimitExceeded)
	}
	p.depth--
	return nil
}

func (p *Parser) exitDepth() {
	p.depth++
}

// Depth reports the remaining recursion budget; used by tests to confirm
// the depth bound is restored after a container exits (§3 invariant).
func (p *Parser) Depth() int {
	return p.depth
}

func isTerminatorByte(b byte, hasByte bool) bool {
	return !hasByte || terminators.get(b)
}

func otherCloser(closer byte) byte {
	if closer == '}' {
		return ']'
	}
	return '}'
}

func (p *Parser) expectTerminator(kind ErrorKind) error {
	b, hasByte := p.r.peek()
	if isTerminatorByte(b, hasByte) {
		return nil
	}
	return p.errHere(kind)
}

func (p *Parser) lengthAsInt(length uint64) (int, error) {
	if length > math.MaxInt32 {
		return 0, p.errHere(NumberOutOfRange)
	}
	return int(length), nil
}

// negateUint64 applies a '-' sign to an already-scanned unsigned magnitude.
// A magnitude of zero has no negative int64 representation, and a
// magnitude beyond int64's range can't be negated in place either; both
// escalate to a float64 instead of erroring, matching the format's
// signed-zero convention (§4.3) and the original parser's handling of an
// out-of-range negative magnitude.
func negateUint64(magnitude uint64) (asInt int64, asFloat float64, isFloat bool) {
	const minMagnitude = 1 << 63
	switch {
	case magnitude == 0:
		return 0, math.Copysign(0, -1), true
	case magnitude == minMagnitude:
		return math.MinInt64, 0, false
	case magnitude > minMagnitude:
		return 0, -float64(magnitude), true
	default:
		return -int64(magnitude), 0, false
	}
}

// ParseAny implements §4.5: dispatch on the next non-whitespace byte with
// no prior expectation about the value's shape.
func (p *Parser) ParseAny(v Visitor) (any, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	b, hasByte := p.r.peek()
	if !hasByte {
		return nil, p.errHere(EofWhileParsingValue)
	}
	switch {
	case b == 'n':
		p.r.discard(1)
		return v.VisitNull()
	case b == 't':
		p.r.discard(1)
		return v.VisitBool(true)
	case b == 'f':
		p.r.discard(1)
		return v.VisitBool(false)
	case b == '-':
		p.r.discard(1)
		return p.parseNegativeNumber(v)
	case digits.get(b):
		return p.parsePositiveNumber(v)
	case b == '{' || b == '[':
		return p.parseContainer(v, b)
	default:
		return nil, p.errHere(ExpectedSomeValue)
	}
}

// ParseOption implements §4.5's Option encoding: peek for 'n' -> None,
// otherwise recurse into the wrapped value.
func (p *Parser) ParseOption(v Visitor) (isNull bool, value any, err error) {
	if err := p.skipWhitespace(); err != nil {
		return false, nil, err
	}
	b, hasByte := p.r.peek()
	if hasByte && b == 'n' {
		p.r.discard(1)
		return true, nil, nil
	}
	value, err = p.ParseAny(v)
	return false, value, err
}

// ParseString implements the deserialize_str typed entry: expects a
// digit-prefix and '=', bypassing the look-ahead classifier entirely.
func (p *Parser) ParseString() (string, error) {
	if err := p.skipWhitespace(); err != nil {
		return "", err
	}
	length, err := p.scanUintChecked()
	if err != nil {
		return "", err
	}
	b, hasByte := p.r.peek()
	if !hasByte || b != '=' {
		return "", p.errHere(ExpectedSomeValue)
	}
	result, err := p.finishString(rawVisitor{}, length)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// ParseBytes implements the deserialize_bytes typed entry.
func (p *Parser) ParseBytes() ([]byte, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	length, err := p.scanUintChecked()
	if err != nil {
		return nil, err
	}
	b, hasByte := p.r.peek()
	if !hasByte || b != '~' {
		return nil, p.errHere(ExpectedSomeValue)
	}
	result, err := p.finishBytes(rawVisitor{}, length)
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// ParseMap implements the deserialize_map typed entry: expects '{' and
// always uses the Plain access adapter (no classifier, no saved span).
func (p *Parser) ParseMap(v Visitor) (any, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	b, hasByte := p.r.peek()
	if !hasByte || b != '{' {
		return nil, p.errHere(ExpectedSomeValue)
	}
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()
	p.r.discard(1)
	return v.VisitMap(&mapAccess{p: p, closer: '}'})
}

// ParseSeq implements the deserialize_seq typed entry: expects '{' or '[',
// always the Plain access adapter.
func (p *Parser) ParseSeq(v Visitor) (any, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	b, hasByte := p.r.peek()
	if !hasByte || (b != '{' && b != '[') {
		return nil, p.errHere(ExpectedSomeValue)
	}
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()
	closer := byte('}')
	if b == '[' {
		closer = ']'
	}
	p.r.discard(1)
	return v.VisitSeq(&seqAccess{p: p, closer: closer, kind: shapeHeterogeneousSeq})
}

// ParseEnum implements the deserialize_enum typed entry: a unit variant is
// a length-prefixed string; otherwise expects '{variant:payload}' and
// returns an EnumAccess so the caller can parse the payload with whatever
// Visitor the variant's type needs.
func (p *Parser) ParseEnum() (EnumAccess, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	b, hasByte := p.r.peek()
	if !hasByte {
		return nil, p.errHere(EofWhileParsingValue)
	}
	if digits.get(b) {
		name, err := p.ParseString()
		if err != nil {
			return nil, err
		}
		return &unitVariantAccess{name: name}, nil
	}
	if b != '{' {
		return nil, p.errHere(ExpectedSomeValue)
	}
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	p.r.discard(1)
	shape, err := p.classify()
	if err != nil {
		p.exitDepth()
		return nil, err
	}
	if shape != shapeMap {
		p.exitDepth()
		return nil, p.dataError("expected {variant:payload}, found a sequence")
	}
	name := string(p.r.getSaved())
	p.r.clearSaved()
	if nb, hasNb := p.r.peek(); hasNb && nb == ':' {
		p.r.discard(1)
	}
	return &variantAccess{p: p, name: name}, nil
}

// ParseDocument implements the Init access variant (§4.6 item 4): the
// top-level entry point, with no enclosing braces expected and EOF instead
// of a closer. A bare top-level value is exposed as a one-element
// sequence (§9's documented permissiveness).
func (p *Parser) ParseDocument(v Visitor) (any, error) {
	if err := p.skipWhitespace(); err != nil {
		return nil, err
	}
	if _, hasByte := p.r.peek(); !hasByte {
		return v.VisitSeq(&seqAccess{p: p, closer: 0, kind: shapeHeterogeneousSeq})
	}
	shape, err := p.classify()
	if err != nil {
		return nil, err
	}
	if shape == shapeMap {
		return v.VisitMap(&mapAccess{p: p, closer: 0, first: true})
	}
	return v.VisitSeq(&seqAccess{p: p, closer: 0, kind: shape, first: true})
}

// expectDocumentEnd checks the §3 invariant that after a successful
// top-level decode either the input is exhausted or only whitespace
// remains.
func (p *Parser) expectDocumentEnd() error {
	if err := p.skipWhitespace(); err != nil {
		return err
	}
	if _, hasByte := p.r.peek(); hasByte {
		return p.errHere(TrailingCharacters)
	}
	return nil
}

func (p *Parser) parseContainer(v Visitor, opener byte) (any, error) {
	if err := p.enterDepth(); err != nil {
		return nil, err
	}
	defer p.exitDepth()
	p.r.discard(1)

	if opener == '[' {
		return v.VisitSeq(&seqAccess{p: p, closer: ']', kind: shapeHeterogeneousSeq})
	}
	shape, err := p.classify()
	if err != nil {
		return nil, err
	}
	if shape == shapeMap {
		return v.VisitMap(&mapAccess{p: p, closer: '}', first: true})
	}
	return v.VisitSeq(&seqAccess{p: p, closer: '}', kind: shape, first: true})
}

func (p *Parser) parseNegativeNumber(v Visitor) (any, error) {
	firstDigit, hasByte := p.r.peek()
	if !hasByte || !digits.get(firstDigit) {
		return nil, p.errHere(InvalidNumber)
	}
	value, n, err, _ := p.scanUint()
	if err != nil {
		return nil, err
	}
	if firstDigit == '0' && n > 1 {
		return nil, p.errHere(InvalidNumber)
	}
	next, hasNext := p.r.peek()
	if hasNext && next == '.' {
		f, err := p.finishFloat(false, value, n)
		if err != nil {
			return nil, err
		}
		if err := p.expectTerminator(TrailingCharacters); err != nil {
			return nil, err
		}
		return v.VisitFloat64(f)
	}
	if !isTerminatorByte(next, hasNext) {
		return nil, p.errHere(InvalidNumber)
	}
	i, f, isFloat := negateUint64(value)
	if isFloat {
		return v.VisitFloat64(f)
	}
	return v.VisitInt64(i)
}

func (p *Parser) parsePositiveNumber(v Visitor) (any, error) {
	firstDigit, _ := p.r.peek()
	value, n, err, _ := p.scanUint()
	if err != nil {
		return nil, err
	}
	next, hasNext := p.r.peek()
	switch {
	case hasNext && next == '=':
		if firstDigit == '0' && n > 1 {
			return nil, p.errHere(InvalidNumber)
		}
		return p.finishString(v, value)
	case hasNext && next == '~':
		if firstDigit == '0' && n > 1 {
			return nil, p.errHere(InvalidNumber)
		}
		return p.finishBytes(v, value)
	case hasNext && next == '.':
		if firstDigit == '0' && n > 1 {
			return nil, p.errHere(InvalidNumber)
		}
		f, ferr := p.finishFloat(true, value, n)
		if ferr != nil {
			return nil, ferr
		}
		if err := p.expectTerminator(TrailingCharacters); err != nil {
			return nil, err
		}
		return v.VisitFloat64(f)
	default:
		if firstDigit == '0' && n > 1 {
			return nil, p.errHere(InvalidNumber)
		}
		if !isTerminatorByte(next, hasNext) {
			return nil, p.errHere(TrailingCharacters)
		}
		return v.VisitUint64(value)
	}
}

func (p *Parser) finishString(v Visitor, length uint64) (any, error) {
	p.r.discard(1) // '='
	n, err := p.lengthAsInt(length)
	if err != nil {
		return nil, err
	}
	raw, ok := p.r.readExact(n)
	if !ok {
		return nil, p.errHere(UnexpectedEndOfString)
	}
	if !utf8.Valid(raw) {
		return nil, p.errHere(InvalidUnicodeCodePoint)
	}
	s := string(raw)
	if err := p.expectTerminator(TrailingCharacters); err != nil {
		return nil, err
	}
	return v.VisitString(s)
}

// finishBytes hands the Visitor a slice that, for a slice-backed reader, is
// a borrowed view of the original input (valid for the caller's whole
// lifetime) but for a stream-backed reader is the reader's scratch buffer
// (valid only until the next read). A Visitor that needs to retain bytes
// across multiple calls — valueVisitor, in particular — must copy.
func (p *Parser) finishBytes(v Visitor, length uint64) (any, error) {
	p.r.discard(1) // '~'
	n, err := p.lengthAsInt(length)
	if err != nil {
		return nil, err
	}
	raw, ok := p.r.readExact(n)
	if !ok {
		return nil, p.errHere(UnexpectedEndOfString)
	}
	if err := p.expectTerminator(TrailingCharacters); err != nil {
		return nil, err
	}
	return v.VisitBytes(raw)
}

// parseSavedDigits validates and parses the current saved span (written by
// classify) as an unsigned decimal integer.
func (p *Parser) parseSavedDigits() (uint64, int, error) {
	saved := p.r.getSaved()
	if len(saved) == 0 || !digits.get(saved[0]) {
		return 0, 0, p.errHere(InvalidNumber)
	}
	if saved[0] == '0' && len(saved) > 1 {
		return 0, 0, p.errHere(InvalidNumber)
	}
	var value uint64
	for _, b := range saved {
		if !digits.get(b) {
			return 0, 0, p.errHere(InvalidNumber)
		}
		d := uint64(b - '0')
		if value > (math.MaxUint64-d)/10 {
			return 0, 0, p.errHere(NumberOutOfRange)
		}
		value = value*10 + d
	}
	return value, len(saved), nil
}

// parseSavedPrimitive hands the first child of a SavedSeq container its
// value, built from the saved span plus (for str/bytes/float) whatever
// follows it directly in the stream (§4.6 item 3).
func (p *Parser) parseSavedPrimitive(v Visitor, kind containerShape) (any, error) {
	value, n, err := p.parseSavedDigits()
	p.r.clearSaved()
	if err != nil {
		return nil, err
	}
	switch kind {
	case shapeIntSeq:
		if err := p.expectTerminator(TrailingCharacters); err != nil {
			return nil, err
		}
		return v.VisitUint64(value)
	case shapeFloatSeq:
		f, err := p.finishFloat(true, value, n)
		if err != nil {
			return nil, err
		}
		if err := p.expectTerminator(TrailingCharacters); err != nil {
			return nil, err
		}
		return v.VisitFloat64(f)
	case shapeStrSeq:
		return p.finishString(v, value)
	case shapeBytesSeq:
		return p.finishBytes(v, value)
	default:
		return nil, p.dataError("unexpected saved container kind")
	}
}

// readKeyFromStream scans a bare map key: bytes up to the first ':', '{',
// or '[', consuming ':' if that's what ended it (§4.6).
func (p *Parser) readKeyFromStream() (string, error) {
	p.r.saveStart()
	for {
		b, hasByte := p.r.peek()
		if !hasByte {
			p.r.saveEnd()
			p.r.clearSaved()
			return "", p.errHere(EofWhileParsingObject)
		}
		if b == ':' {
			p.r.saveEnd()
			key := string(p.r.getSaved())
			p.r.clearSaved()
			p.r.discard(1)
			return key, nil
		}
		if b == '{' || b == '[' {
			p.r.saveEnd()
			key := string(p.r.getSaved())
			p.r.clearSaved()
			return key, nil
		}
		p.r.discard(1)
	}
}

// mapNextKey is shared by every map access variant once the saved first key
// (if any) has been consumed: skip whitespace, check for the closer (or
// EOF, for the Init variant), else read the next key from the stream.
func (p *Parser) mapNextKey(closer byte) (string, bool, error) {
	if err := p.skipWhitespace(); err != nil {
		return "", false, err
	}
	b, hasByte := p.r.peek()
	if closer == 0 {
		if !hasByte {
			return "", false, nil
		}
		if b == '}' || b == ']' {
			return "", false, p.errHere(TrailingCharacters)
		}
	} else {
		if !hasByte {
			return "", false, p.errHere(EofWhileParsingObject)
		}
		if b == closer {
			p.r.discard(1)
			return "", false, nil
		}
		if b == otherCloser(closer) {
			return "", false, p.errHere(TrailingComma)
		}
	}
	key, err := p.readKeyFromStream()
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// seqCheckNext is shared by every seq access variant: skip whitespace,
// check for the closer (or EOF, for the Init variant).
func (p *Parser) seqCheckNext(closer byte) (done bool, err error) {
	if err := p.skipWhitespace(); err != nil {
		return false, err
	}
	b, hasByte := p.r.peek()
	if closer == 0 {
		if !hasByte {
			return true, nil
		}
		if b == '}' || b == ']' {
			return false, p.errHere(TrailingCharacters)
		}
		return false, nil
	}
	if !hasByte {
		return false, p.errHere(EofWhileParsingList)
	}
	if b == closer {
		p.r.discard(1)
		return true, nil
	}
	if b == otherCloser(closer) {
		return false, p.errHere(TrailingComma)
	}
	return false, nil
}

// rawVisitor recovers plain Go values from the typed scalar entry points
// (ParseString, ParseBytes), which never invoke VisitSeq/VisitMap.
type rawVisitor struct{}

func (rawVisitor) VisitNull() (any, error)            { return nil, nil }
func (rawVisitor) VisitBool(b bool) (any, error)      { return b, nil }
func (rawVisitor) VisitUint64(v uint64) (any, error)  { return v, nil }
func (rawVisitor) VisitInt64(v int64) (any, error)    { return v, nil }
func (rawVisitor) VisitFloat64(v float64) (any, error) { return v, nil }
func (rawVisitor) VisitString(s string) (any, error)  { return s, nil }
func (rawVisitor) VisitBytes(b []byte) (any, error)   { return b, nil }
func (rawVisitor) VisitSeq(a SeqAccess) (any, error) {
	return nil, messageError("unexpected composite value")
}
func (rawVisitor) VisitMap(a MapAccess) (any, error) {
	return nil, messageError("unexpected composite value")
}
