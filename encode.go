package main

import (
	"math"
	"strconv"
	"strings"
)

//
// The expression encoder: source text in, compact op-code stream out.
// It is a straight tokenizer driven by one bit of state, whether the
// next token should be an operand or an operator.  That bit is what
// tells a '+' or '-' apart from its unary twin, and a '.' apart from
// a decimal point.
//
// The encoder deliberately does not police expression structure; it
// encodes the whole input and lets the evaluation driver decide where
// the expression ends.  The relational chaining rule depends on that:
// '3>1=0' must encode fully so the driver can stop early and leave
// the '=0' in the stream
//

type encoder struct {
	text string
	pos  int
	code []byte
}

func compileExpression(text string) *program {

	enc := &encoder{text: text}
	enc.run()

	return &program{code: enc.code, refs: make(map[int]*symtabNode)}
}

func (enc *encoder) run() {

	expectOperand := true

	for {
		enc.skipSpaces()
		if enc.atEnd() {
			break
		}

		if expectOperand {
			expectOperand = enc.encodeOperand()
		} else {
			expectOperand = enc.encodeOperator()
		}
	}

	enc.emit(opEnd)
}

//
// Byte stream helpers
//

func (enc *encoder) atEnd() bool {

	return enc.pos >= len(enc.text)
}

func (enc *encoder) curr() byte {

	if enc.atEnd() {
		return 0
	}

	return enc.text[enc.pos]
}

func (enc *encoder) peek(ahead int) byte {

	if enc.pos+ahead >= len(enc.text) {
		return 0
	}

	return enc.text[enc.pos+ahead]
}

func (enc *encoder) skipSpaces() {

	for !enc.atEnd() &&
		(enc.text[enc.pos] == ' ' || enc.text[enc.pos] == '\t') {
		enc.pos++
	}
}

func (enc *encoder) emit(b byte) {

	enc.code = append(enc.code, b)
}

func (enc *encoder) emitUint16(v int) {

	enc.emit(byte(v))
	enc.emit(byte(v >> 8))
}

func (enc *encoder) emitUint32(v uint32) {

	for n := 0; n < 4; n++ {
		enc.emit(byte(v >> (8 * n)))
	}
}

func (enc *encoder) emitUint64(v uint64) {

	for n := 0; n < 8; n++ {
		enc.emit(byte(v >> (8 * n)))
	}
}

func (enc *encoder) emitName(name string) {

	runtimeCheck(len(name) > 0 && len(name) <= 255, EBADEXPR)

	enc.emit(byte(len(name)))
	enc.code = append(enc.code, name...)
}

//
// Operand position.  The prefixes (unary sign, indirection, an open
// bracket) leave us still wanting an operand; an actual value flips
// us to wanting an operator
//

func isNameStart(c byte) bool {

	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func isNameChar(c byte) bool {

	return isNameStart(c) || c >= '0' && c <= '9'
}

func isDigit(c byte) bool {

	return c >= '0' && c <= '9'
}

func (enc *encoder) encodeOperand() bool {

	c := enc.curr()

	switch {
	case c == '+':
		enc.pos++
		enc.emit(opPlus)
		return true

	case c == '-':
		enc.pos++
		enc.emit(opMinus)
		return true

	case c == '?':
		enc.pos++
		enc.emit(opQuery)
		return true

	case c == '!':
		enc.pos++
		enc.emit(opPling)
		return true

	case c == '|':
		enc.pos++
		enc.emit(opBar)
		return true

	case c == '$':
		enc.pos++
		enc.emit(opDollar)
		return true

	case c == '(':
		enc.pos++
		enc.emit(opLparen)
		return true

	case c == '"':
		enc.encodeString()
		return false

	case c == '&':
		enc.encodeHex()
		return false

	case isDigit(c) || c == '.' && isDigit(enc.peek(1)):
		enc.encodeNumber()
		return false

	case isNameStart(c):
		enc.encodeIdent()
		return false
	}

	runtimeError(EBADEXPR)
	panic(nil) // not reached
}

//
// Operator position.  ')' keeps us in operator position, everything
// else wants an operand next
//

func (enc *encoder) encodeOperator() bool {

	c := enc.curr()

	switch c {
	case '+':
		enc.pos++
		enc.emit(opPlus)

	case '-':
		enc.pos++
		enc.emit(opMinus)

	case '*':
		enc.pos++
		enc.emit(opStar)

	case '/':
		enc.pos++
		enc.emit(opSlash)

	case '^':
		enc.pos++
		enc.emit(opPow)

	case '.':
		enc.pos++
		enc.emit(opMatmul)

	case '=':
		enc.pos++
		enc.emit(opEq)

	case ',':
		enc.pos++
		enc.emit(opComma)

	case '(':
		enc.pos++
		enc.emit(opLparen)

	case ')':
		enc.pos++
		enc.emit(opRparen)
		return false

	case '?':
		//
		// In operator position '?' and '!' are the dyadic indirection
		// forms, 'base?offset'
		//
		enc.pos++
		enc.emit(opQuery)

	case '!':
		enc.pos++
		enc.emit(opPling)

	case '<':
		switch enc.peek(1) {
		case '>':
			enc.pos += 2
			enc.emit(opNe)
		case '=':
			enc.pos += 2
			enc.emit(opLe)
		case '<':
			enc.pos += 2
			enc.emit(opLsl)
		default:
			enc.pos++
			enc.emit(opLt)
		}

	case '>':
		switch {
		case enc.peek(1) == '>' && enc.peek(2) == '>':
			enc.pos += 3
			enc.emit(opLsr)
		case enc.peek(1) == '>':
			enc.pos += 2
			enc.emit(opAsr)
		case enc.peek(1) == '=':
			enc.pos += 2
			enc.emit(opGe)
		default:
			enc.pos++
			enc.emit(opGt)
		}

	default:
		if !isNameStart(c) {
			runtimeError(EBADEXPR)
		}

		start := enc.pos
		for !enc.atEnd() && isNameChar(enc.text[enc.pos]) {
			enc.pos++
		}

		switch strings.ToUpper(enc.text[start:enc.pos]) {
		default:
			runtimeError(EBADEXPR)

		case "DIV":
			enc.emit(opIntDiv)
		case "MOD":
			enc.emit(opMod)
		case "AND":
			enc.emit(opAnd)
		case "OR":
			enc.emit(opOr)
		case "EOR":
			enc.emit(opEor)
		}
	}

	return true
}

//
// Identifiers.  The trailing sigil is part of the name.  An 'FN'
// prefix makes a function call; a name glued to '()' is a whole-array
// reference; a name followed by '(' is left as a variable op-code
// with the bracket encoded after it, which is how the factor
// evaluator spots an array element
//

func (enc *encoder) encodeIdent() {

	start := enc.pos
	for !enc.atEnd() && isNameChar(enc.text[enc.pos]) {
		enc.pos++
	}

	if strings.HasPrefix(enc.text[enc.pos:], "%%") {
		enc.pos += 2
	} else if enc.curr() == '%' || enc.curr() == '$' {
		enc.pos++
	}

	name := enc.text[start:enc.pos]

	if len(name) > 2 && name[0] == 'F' && name[1] == 'N' {
		enc.emit(opFnCall)
		enc.emitName(name[2:])
		return
	}

	if strings.HasPrefix(enc.text[enc.pos:], "()") {
		enc.pos += 2
		enc.emit(opArrayRef)
		enc.emitName(name)
		return
	}

	enc.emit(opVariable)
	enc.emitName(name)
}

//
// Numeric literals.  A '.' only belongs to the number when a digit
// follows, so '3.a()' still parses as a matrix product.  An integer
// too big for 64 bits quietly becomes a float, the same as writing it
// with a decimal point
//

func (enc *encoder) encodeNumber() {

	start := enc.pos
	isFloat := false

	for !enc.atEnd() && isDigit(enc.text[enc.pos]) {
		enc.pos++
	}

	if enc.curr() == '.' && isDigit(enc.peek(1)) {
		isFloat = true
		enc.pos++
		for !enc.atEnd() && isDigit(enc.text[enc.pos]) {
			enc.pos++
		}
	}

	if enc.curr() == 'E' || enc.curr() == 'e' {
		expEnd := enc.pos + 1
		if expEnd < len(enc.text) &&
			(enc.text[expEnd] == '+' || enc.text[expEnd] == '-') {
			expEnd++
		}
		if expEnd < len(enc.text) && isDigit(enc.text[expEnd]) {
			isFloat = true
			enc.pos = expEnd
			for !enc.atEnd() && isDigit(enc.text[enc.pos]) {
				enc.pos++
			}
		}
	}

	text := enc.text[start:enc.pos]

	if !isFloat {
		v, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			enc.encodeIntValue(v)
			return
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		runtimeError(EBADEXPR)
	}

	enc.encodeFloatValue(f)
}

//
// Hexadecimal literals.  Up to 8 digits give a 32-bit value with the
// top bit going to the sign, so &FFFFFFFF is -1; up to 16 digits the
// same in 64 bits
//

func (enc *encoder) encodeHex() {

	enc.pos++ // the '&'

	start := enc.pos
	for !enc.atEnd() && isHexDigit(enc.text[enc.pos]) {
		enc.pos++
	}
	runtimeCheck(enc.pos > start, EBADEXPR)

	v, err := strconv.ParseUint(enc.text[start:enc.pos], 16, 64)
	if err != nil {
		runtimeError(ERANGE)
	}

	if v <= 0xFFFFFFFF {
		enc.encodeIntValue(int64(int32(uint32(v))))
	} else {
		enc.encodeIntValue(int64(v))
	}
}

func isHexDigit(c byte) bool {

	return isDigit(c) || c >= 'A' && c <= 'F' || c >= 'a' && c <= 'f'
}

//
// Integer encodings, smallest first: dedicated op-codes for 0 and 1,
// one operand byte for 2..256 (stored minus one), then the full 32 or
// 64 bit little-endian forms
//

func (enc *encoder) encodeIntValue(v int64) {

	switch {
	case v == 0:
		enc.emit(opIntZero)

	case v == 1:
		enc.emit(opIntOne)

	case v >= 2 && v <= 256:
		enc.emit(opSmallConst)
		enc.emit(byte(v - 1))

	case int64(int32(v)) == v:
		enc.emit(opIntConst)
		enc.emitUint32(uint32(int32(v)))

	default:
		enc.emit(opInt64Const)
		enc.emitUint64(uint64(v))
	}
}

func (enc *encoder) encodeFloatValue(f float64) {

	switch f {
	case 0.0:
		enc.emit(opFloatZero)

	case 1.0:
		enc.emit(opFloatOne)

	default:
		enc.emit(opFloatConst)
		enc.emitUint64(math.Float64bits(f))
	}
}

//
// String literals, with '""' as the escape for a quote.  A literal
// with no embedded quotes is stored as-is and evaluated without
// copying; one with the escape is stored raw and collapsed at load
// time
//

func (enc *encoder) encodeString() {

	enc.pos++ // the opening quote

	start := enc.pos
	hasQuote := false

	for {
		runtimeCheck(!enc.atEnd(), EBADEXPR)

		if enc.text[enc.pos] == '"' {
			if enc.peek(1) == '"' {
				hasQuote = true
				enc.pos += 2
				continue
			}
			break
		}

		enc.pos++
	}

	raw := enc.text[start:enc.pos]
	enc.pos++ // the closing quote

	runtimeCheck(len(raw) <= 0xFFFF, ESTRINGLEN)

	if hasQuote {
		enc.emit(opQStringCon)
	} else {
		enc.emit(opStringCon)
	}

	enc.emitUint16(len(raw))
	enc.code = append(enc.code, raw...)
}
