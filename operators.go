package main

import (
	"math"
)

//
// Arithmetic operator implementations.  Every cell function pops the
// right operand (whose type selected it from the dispatch matrix),
// then branches over the left operand: scalar against scalar is
// handled here, anything involving an array goes through the
// broadcast engine in arrays.go
//

func arithCell(ev *evaluator, oper int) {

	rhs := ev.popEntry()
	lhs := ev.popEntry()

	switch {
	case entryIsNumeric(lhs) && entryIsNumeric(rhs):
		arithScalar(ev, oper, lhs, rhs)

	case entryIsNumArray(lhs) || entryIsNumArray(rhs):
		numArrayOp(ev, oper, lhs, rhs)

	default:
		runtimeError(ETYPENUM)
	}
}

//
// Scalar-right cells
//

func evalAddInt(ev *evaluator)   { arithCell(ev, operAdd) }
func evalAddInt64(ev *evaluator) { arithCell(ev, operAdd) }
func evalAddFloat(ev *evaluator) { arithCell(ev, operAdd) }

func evalSubInt(ev *evaluator)   { arithCell(ev, operSub) }
func evalSubInt64(ev *evaluator) { arithCell(ev, operSub) }
func evalSubFloat(ev *evaluator) { arithCell(ev, operSub) }

func evalMulInt(ev *evaluator)   { arithCell(ev, operMul) }
func evalMulInt64(ev *evaluator) { arithCell(ev, operMul) }
func evalMulFloat(ev *evaluator) { arithCell(ev, operMul) }

func evalDivInt(ev *evaluator)   { arithCell(ev, operDiv) }
func evalDivInt64(ev *evaluator) { arithCell(ev, operDiv) }
func evalDivFloat(ev *evaluator) { arithCell(ev, operDiv) }

func evalIntDivInt(ev *evaluator)   { arithCell(ev, operIntDiv) }
func evalIntDivInt64(ev *evaluator) { arithCell(ev, operIntDiv) }
func evalIntDivFloat(ev *evaluator) { arithCell(ev, operIntDiv) }

func evalModInt(ev *evaluator)   { arithCell(ev, operMod) }
func evalModInt64(ev *evaluator) { arithCell(ev, operMod) }
func evalModFloat(ev *evaluator) { arithCell(ev, operMod) }

//
// Array-right cells
//

func evalAddIntArray(ev *evaluator)     { arithCell(ev, operAdd) }
func evalAddInt64Array(ev *evaluator)   { arithCell(ev, operAdd) }
func evalAddFloatArray(ev *evaluator)   { arithCell(ev, operAdd) }
func evalSubIntArray(ev *evaluator)     { arithCell(ev, operSub) }
func evalSubInt64Array(ev *evaluator)   { arithCell(ev, operSub) }
func evalSubFloatArray(ev *evaluator)   { arithCell(ev, operSub) }
func evalMulIntArray(ev *evaluator)     { arithCell(ev, operMul) }
func evalMulInt64Array(ev *evaluator)   { arithCell(ev, operMul) }
func evalMulFloatArray(ev *evaluator)   { arithCell(ev, operMul) }
func evalDivIntArray(ev *evaluator)     { arithCell(ev, operDiv) }
func evalDivInt64Array(ev *evaluator)   { arithCell(ev, operDiv) }
func evalDivFloatArray(ev *evaluator)   { arithCell(ev, operDiv) }
func evalIntDivIntArray(ev *evaluator)  { arithCell(ev, operIntDiv) }
func evalIntDivInt64Array(ev *evaluator) {
	arithCell(ev, operIntDiv)
}
func evalIntDivFloatArray(ev *evaluator) {
	arithCell(ev, operIntDiv)
}
func evalModIntArray(ev *evaluator)   { arithCell(ev, operMod) }
func evalModInt64Array(ev *evaluator) { arithCell(ev, operMod) }
func evalModFloatArray(ev *evaluator) { arithCell(ev, operMod) }

//
// Scalar combine, with the exact promotion and overflow rules
//

func arithScalar(ev *evaluator, oper int, lhs, rhs stackEntry) {

	switch oper {
	default:
		fatalError("arithScalar: bad operator")

	case operAdd:
		addScalar(ev, lhs, rhs)
	case operSub:
		subScalar(ev, lhs, rhs)
	case operMul:
		mulScalar(ev, lhs, rhs)
	case operDiv:
		divScalar(ev, lhs, rhs)
	case operIntDiv:
		intDivScalar(ev, lhs, rhs)
	case operMod:
		modScalar(ev, lhs, rhs)
	}
}

//
// Addition and subtraction of two 32-bit integers is computed in 64
// bits; when the 64-bit sum no longer matches its 32-bit truncation
// the result silently widens to 64 bits.  Legacy integer maths mode
// instead wraps in 32 bits, which is what the original 6502/ARM
// interpreters did.  64-bit sums are not overflow-checked
//

func addScalar(ev *evaluator, lhs, rhs stackEntry) {

	if lhs.tag == tagInt && rhs.tag == tagInt {
		if ev.legacyIntMaths {
			ev.pushInt(lhs.i + rhs.i)
		} else {
			ev.pushVaryInt(int64(lhs.i) + int64(rhs.i))
		}
		return
	}

	if lhs.tag == tagFloat || rhs.tag == tagFloat {
		ev.pushFloat(entryToFloat(lhs) + entryToFloat(rhs))
		return
	}

	ev.pushVaryInt(entryToInt64(lhs) + entryToInt64(rhs))
}

func subScalar(ev *evaluator, lhs, rhs stackEntry) {

	if lhs.tag == tagInt && rhs.tag == tagInt {
		if ev.legacyIntMaths {
			ev.pushInt(lhs.i - rhs.i)
		} else {
			ev.pushVaryInt(int64(lhs.i) - int64(rhs.i))
		}
		return
	}

	if lhs.tag == tagFloat || rhs.tag == tagFloat {
		ev.pushFloat(entryToFloat(lhs) - entryToFloat(rhs))
		return
	}

	ev.pushVaryInt(entryToInt64(lhs) - entryToInt64(rhs))
}

//
// Integer multiplication detects overflow via a parallel floating
// point product: if the float magnitude reaches the int64 limit the
// result falls back to float, otherwise the exact integer product is
// kept (demoted to 32 bits when it fits).  Note that legacy mode
// deliberately does NOT change multiplication; the asymmetry is
// faithful to the original interpreters
//

func mulScalar(ev *evaluator, lhs, rhs stackEntry) {

	if lhs.tag == tagInt && rhs.tag == tagInt {
		ev.pushVaryInt(int64(lhs.i) * int64(rhs.i))
		return
	}

	if lhs.tag == tagFloat || rhs.tag == tagFloat {
		ev.pushFloat(entryToFloat(lhs) * entryToFloat(rhs))
		return
	}

	l64 := entryToInt64(lhs)
	r64 := entryToInt64(rhs)

	f := float64(l64) * float64(r64)
	if math.Abs(f) >= maxInt64Float {
		ev.pushFloat(f)
	} else {
		ev.pushVaryInt(l64 * r64)
	}
}

//
// '/' always produces a float, and a zero divisor is always an
// error: there is no infinity in BASIC
//

func divScalar(ev *evaluator, lhs, rhs stackEntry) {

	rf := entryToFloat(rhs)
	runtimeCheck(rf != 0, EDIVZERO)

	ev.pushFloat(entryToFloat(lhs) / rf)
}

//
// DIV and MOD use truncated-toward-zero semantics.  Float operands
// are truncated to 64-bit integers before use
//

func intDivScalar(ev *evaluator, lhs, rhs stackEntry) {

	r64 := entryToInt64(rhs)
	runtimeCheck(r64 != 0, EDIVZERO)

	ev.pushVaryInt(entryToInt64(lhs) / r64)
}

func modScalar(ev *evaluator, lhs, rhs stackEntry) {

	r64 := entryToInt64(rhs)
	runtimeCheck(r64 != 0, EDIVZERO)

	ev.pushVaryInt(entryToInt64(lhs) % r64)
}

//
// '^' is always computed in floating point and always returns a
// float, whatever the operand types
//

func evalPow(ev *evaluator) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	ev.pushFloat(math.Pow(entryToFloat(lhs), entryToFloat(rhs)))
}
