package encom

// containerShape is the outcome of the look-ahead classifier: which of
// the six shapes a '{'-delimited group turns out to hold.
type containerShape int

const (
	shapeHeterogeneousSeq containerShape = iota
	shapeMap
	shapeStrSeq
	shapeBytesSeq
	shapeFloatSeq
	shapeIntSeq
)

// classify implements §4.4. parseContainer and ParseEnum call it right after
// an opening '{' has been consumed (parseContainer treats an opening '['
// as a heterogeneous sequence without calling it); ParseDocument calls it
// at the start of the document, where a leading '{' or '[' is a trigger
// byte like any other. It leaves the cursor exactly
// where it stopped — at the first delimiter/marker byte, uninspected and
// unconsumed — so the caller resumes scanning from there.
func (p *Parser) classify() (containerShape, error) {
	if err := p.skipWhitespace(); err != nil {
		return 0, err
	}
	b, hasByte := p.r.peek()
	if !hasByte {
		return 0, p.errHere(EofWhileParsingValue)
	}
	switch b {
	case '{', '[', '-', 't', 'f':
		return shapeHeterogeneousSeq, nil
	}

	p.r.saveStart()
	for {
		b, hasByte := p.r.peek()
		if !hasByte {
			p.r.saveEnd()
			return shapeIntSeq, nil
		}
		switch {
		case b == ':', b == '{', b == '[':
			p.r.saveEnd()
			return shapeMap, nil
		case b == '=':
			p.r.saveEnd()
			return shapeStrSeq, nil
		case b == '~':
			p.r.saveEnd()
			return shapeBytesSeq, nil
		case b == '.':
			p.r.saveEnd()
			return shapeFloatSeq, nil
		case b == '}', b == ']', whitespace.get(b):
			p.r.saveEnd()
			return shapeIntSeq, nil
		}
		p.r.discard(1)
	}
}
