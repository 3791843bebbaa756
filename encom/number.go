package encom

import "math"

// powersOfTen is used by the float finisher to scale a parsed mantissa by
// a power of ten without a call into strconv for the common case.
var powersOfTen = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7,
	1e8, 1e9, 1e10, 1e11, 1e12, 1e13, 1e14, 1e15,
	1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

const maxExponent = 308 // beyond this an f64 is always +/-Inf.

// scanUint consumes the longest run of ASCII digits at the cursor and
// returns it as a u64. It fails with NumberOutOfRange on overflow, or
// reports ok=false if no digit is present at all.
func (p *Parser) scanUint() (value uint64, digitCount int, err error, ok bool) {
	for {
		b, hasByte := p.r.peek()
		if !hasByte || !digits.get(b) {
			break
		}
		d := uint64(b - '0')
		if value > (math.MaxUint64-d)/10 {
			// Keep consuming so the cursor lands after the whole
			// malformed token, then report out-of-range.
			for {
				b, hasByte := p.r.peek()
				if !hasByte || !digits.get(b) {
					break
				}
				p.r.discard(1)
				digitCount++
			}
			return 0, digitCount, p.errHere(NumberOutOfRange), true
		}
		value = value*10 + d
		p.r.discard(1)
		digitCount++
	}
	if digitCount == 0 {
		return 0, 0, nil, false
	}
	return value, digitCount, nil, true
}

// scanUintChecked is scanUint plus the "leading zero followed by another
// digit" canonicality rule from spec.md §4.1, applied to both integer
// values and string/bytes length prefixes.
func (p *Parser) scanUintChecked() (uint64, error) {
	b, hasByte := p.r.peek()
	if !hasByte || !digits.get(b) {
		return 0, p.errHere(ExpectedSomeValue)
	}
	firstDigit := b
	value, n, err, _ := p.scanUint()
	if err != nil {
		return 0, err
	}
	if firstDigit == '0' && n > 1 {
		return 0, p.errHere(InvalidNumber)
	}
	return value, nil
}

// finishFloat extends an already-scanned integer part (significand, with
// the decimal point about to be consumed) into a float64. positive
// indicates the overall sign; significand is the unsigned value of the
// integer part scanned so far.
//
// Digits beyond the point where the mantissa would overflow a uint64 are
// still consumed (so the cursor lands correctly) but dropped; since they
// fall after digits already significant well past float64's precision,
// dropping them rather than erroring matches f64_from_parts in the Rust
// original.
func (p *Parser) finishFloat(positive bool, significand uint64, significandDigits int) (float64, error) {
	p.r.discard(1) // '.'

	mantissa := significand
	mantissaDigits := significandDigits
	fracDigits := 0
	for {
		b, hasByte := p.r.peek()
		if !hasByte || !digits.get(b) {
			break
		}
		d := uint64(b - '0')
		if mantissaDigits < 19 && mantissa <= (math.MaxUint64-d)/10 {
			mantissa = mantissa*10 + d
			mantissaDigits++
		}
		p.r.discard(1)
		fracDigits++
	}
	if fracDigits == 0 {
		return 0, p.errHere(InvalidNumber)
	}

	// Only the digits actually folded into mantissa shift the decimal
	// point; any dropped tail digits were already insignificant.
	keptFracDigits := mantissaDigits - significandDigits
	exponent := -keptFracDigits

	if b, hasByte := p.r.peek(); hasByte && (b == 'e' || b == 'E') {
		p.r.discard(1)
		var err error
		exponent, err = p.finishExponent(exponent)
		if err != nil {
			return 0, err
		}
	}

	f := scaleByPowerOfTen(float64(mantissa), exponent)
	if !positive {
		f = -f
	}
	// A zero mantissa times an overflowed (infinite) scale is NaN, not Inf.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		if mantissa == 0 {
			if positive {
				return 0, nil
			}
			return math.Copysign(0, -1), nil
		}
		return 0, p.errHere(NumberOutOfRange)
	}
	return f, nil
}

// finishExponent consumes an optional sign and a digit run after 'e'/'E',
// folding it into baseExponent. Saturates (rather than erroring) on
// exponent overflow, per spec.md §4.3.
func (p *Parser) finishExponent(baseExponent int) (exponent int, err error) {
	sign := 1
	if b, hasByte := p.r.peek(); hasByte && (b == '+' || b == '-') {
		if b == '-' {
			sign = -1
		}
		p.r.discard(1)
	}
	value, n, serr, ok := p.scanUint()
	if !ok || n == 0 {
		return 0, p.errHere(InvalidNumber)
	}
	if serr != nil || value > math.MaxInt32 {
		// Too many exponent digits to hold: saturate in the sign's direction.
		value = math.MaxInt32
	}
	total := baseExponent + int(value)*sign
	if total > maxExponent {
		total = maxExponent + 1 // saturate; scaleByPowerOfTen will overflow to Inf
	}
	if total < -maxExponent {
		total = -maxExponent - 1
	}
	return total, nil
}

// scaleByPowerOfTen multiplies (or divides) mantissa by 10^exponent using
// the precomputed table for small magnitudes and math.Pow for the rest.
func scaleByPowerOfTen(mantissa float64, exponent int) float64 {
	if exponent == 0 {
		return mantissa
	}
	neg := exponent < 0
	if neg {
		exponent = -exponent
	}
	var scale float64
	if exponent < len(powersOfTen) {
		scale = powersOfTen[exponent]
	} else {
		scale = math.Pow(10, float64(exponent))
	}
	if neg {
		return mantissa / scale
	}
	return mantissa * scale
}
