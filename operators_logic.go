package main

import (
	"math"
)

//
// The bitwise and relational operators.  Both families are
// integer-flavored: shifts and logic work on the operand bit
// patterns, relationals produce the classic BASIC truth values of -1
// and 0
//

//
// A shift amount is the right operand as a 32-bit integer reduced
// modulo 256, so shifting by 256 is shifting by 0 and shifting by 288
// is shifting by 32.  The reduction is to a non-negative residue
//

func shiftCount(e stackEntry) uint {

	v := int64(entryToInt32(e)) % 256
	if v < 0 {
		v += 256
	}

	return uint(v)
}

//
// Left shift.  A 32-bit operand widens to 64 bits when the shifted
// value no longer fits in 32; shifting anything clean out of 64 bits
// gives zero rather than an error
//

func evalLsl(ev *evaluator) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	sh := shiftCount(rhs)
	if sh >= 64 {
		ev.pushInt(0)
		return
	}

	if lhs.tag == tagInt {
		v32 := lhs.i << sh
		v64 := int64(lhs.i) << sh

		if int64(v32) == v64 {
			ev.pushInt(v32)
		} else {
			ev.pushInt64(v64)
		}
		return
	}

	ev.pushInt64(entryToInt64(lhs) << sh)
}

//
// Logical right shift: zero fill.  The sign bit of the result is
// always cleared, which matters only for a shift count of zero; that
// is how the original interpreters behaved and code out there relies
// on '>>> 0' as a cheap absolute-pattern trick
//

func evalLsr(ev *evaluator) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	sh := shiftCount(rhs)

	if lhs.tag == tagInt {
		if sh < 32 {
			ev.pushInt(int32((uint32(lhs.i) >> sh) & 0x7FFFFFFF))
		} else {
			ev.pushInt(0)
		}
		return
	}

	l64 := entryToInt64(lhs)
	if sh < 64 {
		ev.pushInt64(int64((uint64(l64) >> sh) & 0x7FFFFFFFFFFFFFFF))
	} else {
		ev.pushInt(0)
	}
}

//
// Arithmetic right shift: within the operand's width the sign bit is
// propagated, so a negative value stays negative however far down it
// is shifted.  A count at or past the width gives a 32-bit zero,
// whichever width the operand had
//

func evalAsr(ev *evaluator) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	sh := shiftCount(rhs)

	if lhs.tag == tagInt {
		if sh < 32 {
			ev.pushInt((lhs.i >> sh) | (lhs.i & math.MinInt32))
		} else {
			ev.pushInt(0)
		}
		return
	}

	l64 := entryToInt64(lhs)
	if sh < 64 {
		ev.pushInt64((l64 >> sh) | (l64 & math.MinInt64))
	} else {
		ev.pushInt(0)
	}
}

//
// AND, OR and EOR are bitwise.  Two 32-bit operands give a 32-bit
// result; anything else is done in 64 bits, with floats truncated
// first
//

func logicCell(ev *evaluator, oper int) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	if lhs.tag == tagInt && rhs.tag == tagInt {
		var v int32

		switch oper {
		case operAnd:
			v = lhs.i & rhs.i
		case operOr:
			v = lhs.i | rhs.i
		case operEor:
			v = lhs.i ^ rhs.i
		}

		ev.pushInt(v)
		return
	}

	l64 := entryToInt64(lhs)
	r64 := entryToInt64(rhs)

	var v int64

	switch oper {
	case operAnd:
		v = l64 & r64
	case operOr:
		v = l64 | r64
	case operEor:
		v = l64 ^ r64
	}

	ev.pushInt64(v)
}

func evalAndNum(ev *evaluator) { logicCell(ev, operAnd) }
func evalOrNum(ev *evaluator)  { logicCell(ev, operOr) }
func evalEorNum(ev *evaluator) { logicCell(ev, operEor) }

//
// Numeric comparison.  If either side is a float the comparison is
// done in floating point, otherwise in 64-bit integers so no
// precision is lost comparing large 64-bit values
//

func (ev *evaluator) pushBool(b bool) {

	if b {
		ev.pushInt(basTrue)
	} else {
		ev.pushInt(basFalse)
	}
}

func cmpSatisfies(oper int, cmp int) bool {

	switch oper {
	default:
		fatalError("cmpSatisfies: bad operator")
		panic(nil)

	case operEq:
		return cmp == 0
	case operNe:
		return cmp != 0
	case operGt:
		return cmp > 0
	case operLt:
		return cmp < 0
	case operGe:
		return cmp >= 0
	case operLe:
		return cmp <= 0
	}
}

func compareNumCell(ev *evaluator, oper int) {

	rhs := ev.popNumeric()
	lhs := ev.popNumeric()

	cmp := 0

	if lhs.tag == tagFloat || rhs.tag == tagFloat {
		lf := entryToFloat(lhs)
		rf := entryToFloat(rhs)

		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	} else {
		l64 := entryToInt64(lhs)
		r64 := entryToInt64(rhs)

		switch {
		case l64 < r64:
			cmp = -1
		case l64 > r64:
			cmp = 1
		}
	}

	ev.pushBool(cmpSatisfies(oper, cmp))
}

func evalEqNum(ev *evaluator) { compareNumCell(ev, operEq) }
func evalNeNum(ev *evaluator) { compareNumCell(ev, operNe) }
func evalGtNum(ev *evaluator) { compareNumCell(ev, operGt) }
func evalLtNum(ev *evaluator) { compareNumCell(ev, operLt) }
func evalGeNum(ev *evaluator) { compareNumCell(ev, operGe) }
func evalLeNum(ev *evaluator) { compareNumCell(ev, operLe) }
