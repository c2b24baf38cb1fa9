package main

import (
	"bytes"
)

//
// The string operators: concatenation and comparison.  Comparison is
// byte-wise and case sensitive, with a shorter string ordering before
// any longer string it prefixes
//

//
// Concatenation.  Appending to a temporary resizes it in place, so a
// chain like a$+b$+c$+d$ does not copy the head again at every step.
// An empty right operand just hands the left back untouched
//

func evalAddStr(ev *evaluator) {

	rhs := ev.popEntry()
	lhs := ev.popEntry()

	switch lhs.tag {
	default:
		runtimeError(ETYPESTR)

	case tagStrArray, tagStrArrayTemp:
		strArrayConcat(ev, lhs, rhs)

	case tagString, tagStrTemp:
		if len(rhs.s) == 0 {
			ev.pushEntry(lhs)
			return
		}

		var out []byte
		oldLen := len(lhs.s)

		if lhs.tag == tagStrTemp {
			out = resizeString(lhs.s, oldLen+len(rhs.s))
		} else {
			out = allocString(oldLen + len(rhs.s))
			copy(out, lhs.s)
		}

		copy(out[oldLen:], rhs.s)
		ev.pushStrTemp(out)
	}
}

//
// String-array concatenation: every combination of string array and
// string scalar is broadcast element by element, producing a fresh
// temporary array
//

func strArrayConcat(ev *evaluator, lhs, rhs stackEntry) {

	lOK := entryIsStrArray(lhs) || entryIsString(lhs)
	rOK := entryIsStrArray(rhs) || entryIsString(rhs)
	runtimeCheck(lOK && rOK, ETYPESTR)

	var model *arrayDesc
	if entryIsStrArray(lhs) {
		model = lhs.arr
	}
	if entryIsStrArray(rhs) {
		if model != nil {
			checkConformable(model, rhs.arr)
		} else {
			model = rhs.arr
		}
	}
	basicAssert(model != nil, "String array operation with no array operand")

	out := reuseOrNewArray(lhs, model, tagString)

	for n := int32(0); n < model.count; n++ {
		var l, r []byte

		if entryIsStrArray(lhs) {
			l = lhs.arr.s[n]
		} else {
			l = lhs.s
		}

		if entryIsStrArray(rhs) {
			r = rhs.arr.s[n]
		} else {
			r = rhs.s
		}

		elem := allocString(len(l) + len(r))
		copy(elem, l)
		copy(elem[len(l):], r)

		out.s[n] = elem
	}

	ev.pushArray(out, true)
}

//
// The string-right cell of '+' in the dispatch matrix is evalAddStr
// itself; the array-right cell arrives here so a numeric left operand
// gets the right error
//

func evalAddStrArray(ev *evaluator) {

	rhs := ev.popEntry()
	lhs := ev.popEntry()

	strArrayConcat(ev, lhs, rhs)
}

//
// String comparison cells.  Equality could be a length check plus
// memcmp but bytes.Compare does exactly that internally, so all six
// operators share one shape
//

func compareStrCell(ev *evaluator, oper int) {

	rhs := ev.popStringEntry()
	lhs := ev.popStringEntry()

	ev.pushBool(cmpSatisfies(oper, bytes.Compare(lhs.s, rhs.s)))
}

func evalEqStr(ev *evaluator) { compareStrCell(ev, operEq) }
func evalNeStr(ev *evaluator) { compareStrCell(ev, operNe) }
func evalGtStr(ev *evaluator) { compareStrCell(ev, operGt) }
func evalLtStr(ev *evaluator) { compareStrCell(ev, operLt) }
func evalGeStr(ev *evaluator) { compareStrCell(ev, operGe) }
func evalLeStr(ev *evaluator) { compareStrCell(ev, operLe) }
