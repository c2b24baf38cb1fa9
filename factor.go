package main

import (
	"math"
)

//
// The factor evaluator: a 256-entry table indexed by the next
// op-code byte.  Each handler consumes its op-code (and any inline
// operand data) and leaves exactly one value on the stack
//

var factorTable [256]func(*evaluator)

func initFactorTable() {

	for n := range factorTable {
		factorTable[n] = badFactor
	}

	factorTable[opIntZero] = loadIntZero
	factorTable[opIntOne] = loadIntOne
	factorTable[opSmallConst] = loadSmallConst
	factorTable[opIntConst] = loadIntConst
	factorTable[opInt64Const] = loadInt64Const
	factorTable[opFloatZero] = loadFloatZero
	factorTable[opFloatOne] = loadFloatOne
	factorTable[opFloatConst] = loadFloatConst
	factorTable[opStringCon] = loadStringCon
	factorTable[opQStringCon] = loadQStringCon
	factorTable[opVariable] = loadVariable
	factorTable[opArrayRef] = loadWholeArray
	factorTable[opFnCall] = doFnCall
	factorTable[opLparen] = doBrackets
	factorTable[opPlus] = doUnaryPlus
	factorTable[opMinus] = doUnaryMinus
	factorTable[opQuery] = doIndirectByte
	factorTable[opPling] = doIndirectWord
	factorTable[opDollar] = doIndirectString
	factorTable[opBar] = doIndirectFloat
}

func badFactor(ev *evaluator) {

	runtimeError(EBADEXPR)
}

//
// Literals.  Zero and one get their own op-codes; 1..256 fits in a
// single operand byte (stored minus one); everything else carries
// the full little-endian value inline
//

func loadIntZero(ev *evaluator) {

	ev.pos++
	ev.pushInt(0)
}

func loadIntOne(ev *evaluator) {

	ev.pos++
	ev.pushInt(1)
}

func loadSmallConst(ev *evaluator) {

	ev.pos++
	ev.pushInt(int32(ev.fetchByte()) + 1)
}

func loadIntConst(ev *evaluator) {

	ev.pos++
	ev.pushInt(int32(ev.fetchUint32()))
}

func loadInt64Const(ev *evaluator) {

	ev.pos++
	ev.pushInt64(int64(ev.fetchUint64()))
}

func loadFloatZero(ev *evaluator) {

	ev.pos++
	ev.pushFloat(0.0)
}

func loadFloatOne(ev *evaluator) {

	ev.pos++
	ev.pushFloat(1.0)
}

func loadFloatConst(ev *evaluator) {

	ev.pos++
	ev.pushFloat(math.Float64frombits(ev.fetchUint64()))
}

//
// Plain string constants alias the code stream; nothing downstream
// mutates a non-temporary string, so that is safe.  Quoted-quote
// constants are stored raw and the '""' pairs collapsed here, which
// costs a copy only for strings that actually contain one
//

func loadStringCon(ev *evaluator) {

	ev.pos++
	length := ev.fetchUint16()
	ev.pushString(ev.fetchBytes(length))
}

func loadQStringCon(ev *evaluator) {

	ev.pos++
	length := ev.fetchUint16()
	raw := ev.fetchBytes(length)

	out := allocString(length)[:0]
	for n := 0; n < len(raw); n++ {
		out = append(out, raw[n])
		if raw[n] == '"' {
			n++ // skip the second quote of the pair
		}
	}

	ev.pushStrTemp(out)
}

//
// Variable references.  The op-code carries the name; the resolved
// symbol is cached in the program's side table keyed by the op-code
// offset, so the lookup cost is paid once per reference site rather
// than once per execution
//

func loadVariable(ev *evaluator) {

	site := ev.pos

	ev.pos++
	name := ev.fetchName()

	if ev.currByte() == opLparen {
		//
		// An array element reference
		//
		sym := ev.prog.refs[site]
		if sym == nil {
			sym = ev.symbols.findArray(name)
			if sym == nil {
				missingVarError(name)
			}
			ev.prog.refs[site] = sym
		}

		runtimeCheck(sym.arr != nil, ENODIMS)
		loadArrayElement(ev, name, sym.arr)
		return
	}

	sym := ev.prog.refs[site]
	if sym == nil {
		sym = ev.symbols.findVariable(name)
		if sym == nil {
			missingVarError(name)
		}
		ev.prog.refs[site] = sym
	}

	//
	// A numeric variable may carry an indirection suffix, as in
	// 'base?3'
	//

	switch ev.currByte() {
	case opQuery, opPling:
		runtimeCheck(sym.kind != symString, ETYPENUM)
		ev.pushVarValue(sym)
		base := entryToInt32(ev.popEntry())
		indirectSuffix(ev, base)

	default:
		ev.pushVarValue(sym)
	}
}

//
// Array element access: accumulate a row-major linear index while
// validating each supplied subscript against its dimension
//

func loadArrayElement(ev *evaluator, name string, arr *arrayDesc) {

	ev.pos++ // the '('

	index := int32(0)
	n := 0

	for {
		runtimeCheck(n < len(arr.dims), EDIMCOUNT)

		ev.evalExpr()
		sub := entryToInt32(ev.popNumeric())

		if sub < 0 || sub >= arr.dims[n] {
			badIndexError(name, sub)
		}

		index = index*arr.dims[n] + sub
		n++

		if ev.currByte() != opComma {
			break
		}
		ev.pos++
	}

	runtimeCheck(n == len(arr.dims), EDIMCOUNT)
	runtimeCheck(ev.currByte() == opRparen, EMISSINGRPAR)
	ev.pos++

	//
	// The element may itself be the base of an indirection
	//

	switch ev.currByte() {
	case opQuery, opPling:
		runtimeCheck(arr.elemTag != tagString, ETYPENUM)
		ev.pushArrayElem(arr, index)
		base := entryToInt32(ev.popEntry())
		indirectSuffix(ev, base)

	default:
		ev.pushArrayElem(arr, index)
	}
}

func (ev *evaluator) pushArrayElem(arr *arrayDesc, index int32) {

	switch arr.elemTag {
	default:
		fatalError("pushArrayElem: bad element tag")

	case tagInt:
		ev.pushInt(arr.i[index])
	case tagInt64:
		ev.pushInt64(arr.i64[index])
	case tagFloat:
		ev.pushFloat(arr.f[index])
	case tagString:
		ev.pushString(arr.s[index])
	}
}

//
// A whole-array reference: 'a()'
//

func loadWholeArray(ev *evaluator) {

	site := ev.pos

	ev.pos++
	name := ev.fetchName()

	sym := ev.prog.refs[site]
	if sym == nil {
		sym = ev.symbols.findArray(name)
		if sym == nil {
			missingVarError(name)
		}
		ev.prog.refs[site] = sym
	}

	runtimeCheck(sym.arr != nil, ENODIMS)

	ev.pushArray(sym.arr, false)
}

//
// The dyadic indirection suffix shared by variables and array
// elements: '<base>?<factor>' loads a byte, '<base>!<factor>' a word
//

func indirectSuffix(ev *evaluator, base int32) {

	code := ev.fetchByte()

	factorTable[ev.currByte()](ev)
	offset := entryToInt32(ev.popNumeric())

	if code == opQuery {
		ev.pushInt(int32(ev.mem.readByte(base + offset)))
	} else {
		ev.pushInt(ev.mem.readWord(base + offset))
	}
}

//
// The unary indirection operators.  The operand is a factor, which
// is what makes them bind tighter than any binary operator
//

func doIndirectByte(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	offset := entryToInt32(ev.popNumeric())
	ev.pushInt(int32(ev.mem.readByte(offset)))
}

func doIndirectWord(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	offset := entryToInt32(ev.popNumeric())
	ev.pushInt(ev.mem.readWord(offset))
}

func doIndirectString(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	offset := entryToInt32(ev.popNumeric())
	ev.pushStrTemp(ev.mem.readString(offset))
}

func doIndirectFloat(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	offset := entryToInt32(ev.popNumeric())
	ev.pushFloat(ev.mem.readFloat(offset))
}

//
// Unary plus only type-checks; unary minus negates in place.  Both
// apply to the factor that follows, not to a whole expression
//

func doUnaryPlus(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	switch ev.topTag() {
	case tagInt, tagInt64, tagFloat:
		// fine as is
	default:
		runtimeError(ETYPENUM)
	}
}

func doUnaryMinus(ev *evaluator) {

	ev.pos++
	factorTable[ev.currByte()](ev)

	e := ev.popNumeric()

	switch e.tag {
	case tagInt:
		ev.pushVaryInt(-int64(e.i))
	case tagInt64:
		ev.pushInt64(-e.i64)
	case tagFloat:
		ev.pushFloat(-e.f)
	}
}

//
// A bracketed sub-expression
//

func doBrackets(ev *evaluator) {

	ev.pos++
	ev.evalExpr()

	runtimeCheck(ev.currByte() == opRparen, EMISSINGRPAR)
	ev.pos++
}

//
// A user defined function call
//

func doFnCall(ev *evaluator) {

	site := ev.pos

	ev.pos++
	name := ev.fetchName()

	sym := ev.prog.refs[site]
	if sym == nil {
		sym = ev.symbols.findFunction(name)
		if sym == nil {
			missingFnError(name)
		}
		ev.prog.refs[site] = sym
	}

	ev.callFunction(sym.def)
}
