package encom

// seqAccess is the sequence access adapter. It serves all four
// variants from §4.6 through two fields: closer (0 means Init — terminate
// at EOF instead of a bracket) and kind/first (non-zero kind with
// first==true means Saved-seq: the first element is read from the saved
// span left by the classifier; kind==shapeHeterogeneousSeq means Plain —
// every element, including the first, parses normally).
type seqAccess struct {
	p      *Parser
	closer byte
	kind   containerShape
	first  bool
}

func (a *seqAccess) NextElement(v Visitor) (any, bool, error) {
	if a.first && a.kind != shapeHeterogeneousSeq && !a.p.r.savedEmpty() {
		a.first = false
		value, err := a.p.parseSavedPrimitive(v, a.kind)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	a.first = false
	done, err := a.p.seqCheckNext(a.closer)
	if err != nil {
		return nil, false, err
	}
	if done {
		return nil, false, nil
	}
	value, err := a.p.ParseAny(v)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// mapAccess is the map access adapter, serving Plain (first==false),
// Saved-map (first==true) and Init (closer==0) from a single type.
type mapAccess struct {
	p      *Parser
	closer byte
	first  bool
}

func (a *mapAccess) NextKey() (string, bool, error) {
	if a.first {
		a.first = false
		key := string(a.p.r.getSaved())
		a.p.r.clearSaved()
		if b, ok := a.p.r.peek(); ok && b == ':' {
			a.p.r.discard(1)
		}
		return key, true, nil
	}
	return a.p.mapNextKey(a.closer)
}

func (a *mapAccess) NextValue(v Visitor) (any, error) {
	return a.p.ParseAny(v)
}

// EnumAccess is returned by Parser.ParseEnum: a unit variant carries no
// payload, a tuple/struct-like variant's payload is parsed on demand with
// whatever Visitor the variant's target type needs (grounded on
// VariantAccess in the original's access/variant.rs).
type EnumAccess interface {
	Variant() string
	IsUnit() bool
	// ParsePayload parses the variant's associated value. Must not be
	// called when IsUnit() is true, and must be called exactly once
	// otherwise.
	ParsePayload(v Visitor) (any, error)
}

type unitVariantAccess struct {
	name string
}

func (a *unitVariantAccess) Variant() string { return a.name }
func (a *unitVariantAccess) IsUnit() bool    { return true }
func (a *unitVariantAccess) ParsePayload(v Visitor) (any, error) {
	return nil, messageError("unit variant %q has no payload", a.name)
}

type variantAccess struct {
	p    *Parser
	name string
}

func (a *variantAccess) Variant() string { return a.name }
func (a *variantAccess) IsUnit() bool    { return false }

func (a *variantAccess) ParsePayload(v Visitor) (any, error) {
	value, err := a.p.ParseAny(v)
	if err != nil {
		a.p.exitDepth()
		return nil, err
	}
	if err := a.p.skipWhitespace(); err != nil {
		a.p.exitDepth()
		return nil, err
	}
	b, hasByte := a.p.r.peek()
	if !hasByte || b != '}' {
		a.p.exitDepth()
		return nil, a.p.errHere(ExpectedObjectCommaOrEnd)
	}
	a.p.r.discard(1)
	a.p.exitDepth()
	return value, nil
}
