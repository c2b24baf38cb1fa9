package main

import (
	"math"
)

//
// The value stack.  Operands and results flow through here and
// nowhere else.  All coercion lives in the factor and operator
// layers; the stack itself never converts anything
//

func (ev *evaluator) pushEntry(e stackEntry) {

	runtimeCheck(len(ev.stack.entries) < valueStackMax, ESTACKFULL)

	ev.stack.entries = append(ev.stack.entries, e)
}

func (ev *evaluator) pushInt(v int32) {

	ev.pushEntry(stackEntry{tag: tagInt, i: v})
}

func (ev *evaluator) pushInt64(v int64) {

	ev.pushEntry(stackEntry{tag: tagInt64, i64: v})
}

//
// Push an integer as 32-bit when it fits, 64-bit when it does not.
// Most integer operators produce their result through here, which is
// what makes 64-bit results demote back to 32-bit as soon as the
// value allows
//

func (ev *evaluator) pushVaryInt(v int64) {

	if int64(int32(v)) == v {
		ev.pushInt(int32(v))
	} else {
		ev.pushInt64(v)
	}
}

func (ev *evaluator) pushFloat(v float64) {

	ev.pushEntry(stackEntry{tag: tagFloat, f: v})
}

func (ev *evaluator) pushString(s []byte) {

	ev.pushEntry(stackEntry{tag: tagString, s: s})
}

func (ev *evaluator) pushStrTemp(s []byte) {

	ev.pushEntry(stackEntry{tag: tagStrTemp, s: s})
}

//
// Arrays are pushed with the temp flag telling the operator layer
// whether it owns the buffer (and so may reuse it in place) or is
// only borrowing a variable's storage
//

func (ev *evaluator) pushArray(arr *arrayDesc, temp bool) {

	tag := 0

	switch arr.elemTag {
	default:
		fatalError("pushArray: bad element tag")

	case tagInt:
		tag = tagIntArray
	case tagInt64:
		tag = tagInt64Array
	case tagFloat:
		tag = tagFloatArray
	case tagString:
		tag = tagStrArray
	}

	if temp {
		tag++
	}

	ev.pushEntry(stackEntry{tag: tag, arr: arr})
}

//
// The scope sentinel.  One of these sits between a function call's
// evaluation scope and its caller's operands
//

func (ev *evaluator) pushStackMark() {

	ev.pushEntry(stackEntry{tag: tagMark})
}

func (ev *evaluator) topTag() int {

	n := len(ev.stack.entries)
	if n == 0 {
		return tagUnknown
	}

	return ev.stack.entries[n-1].tag
}

func (ev *evaluator) popEntry() stackEntry {

	n := len(ev.stack.entries)
	basicAssert(n > 0, "Value stack underflow")

	e := ev.stack.entries[n-1]
	ev.stack.entries = ev.stack.entries[:n-1]

	basicAssert(e.tag != tagMark, "Popped value stack scope sentinel")

	return e
}

//
// Typed pops for callers that already know (from the dispatch matrix
// or an earlier peek) what must be on top.  A mismatch here is an
// interpreter defect, not a user error
//

func (ev *evaluator) popInt() int32 {

	e := ev.popEntry()
	basicAssert(e.tag == tagInt, "Expected a 32-bit integer on the stack")

	return e.i
}

func (ev *evaluator) popInt64() int64 {

	e := ev.popEntry()
	basicAssert(e.tag == tagInt64, "Expected a 64-bit integer on the stack")

	return e.i64
}

func (ev *evaluator) popFloat() float64 {

	e := ev.popEntry()
	basicAssert(e.tag == tagFloat, "Expected a float on the stack")

	return e.f
}

//
// User-facing typed pops: these raise type errors, because what is on
// the stack came from the user's expression
//

func (ev *evaluator) popNumeric() stackEntry {

	switch ev.topTag() {
	case tagInt, tagInt64, tagFloat:
		return ev.popEntry()
	}

	runtimeError(ETYPENUM)
	panic(nil) // not reached
}

func (ev *evaluator) popStringEntry() stackEntry {

	switch ev.topTag() {
	case tagString, tagStrTemp:
		return ev.popEntry()
	}

	runtimeError(ETYPESTR)
	panic(nil) // not reached
}

//
// Remove the scope sentinel once a nested scope's result has been
// taken off.  Anything else on top means the scope leaked operands
//

func (ev *evaluator) dropStackMark() {

	n := len(ev.stack.entries)
	basicAssert(n > 0 && ev.stack.entries[n-1].tag == tagMark,
		"Expected value stack scope sentinel")

	ev.stack.entries = ev.stack.entries[:n-1]
}

func (ev *evaluator) stackDepth() int {

	return len(ev.stack.entries)
}

//
// Cut the value stack back to a recorded depth.  The error recovery
// path uses this to make sure no partial results leak across an
// unwind
//

func (ev *evaluator) unwindStack(depth int) {

	basicAssert(depth <= len(ev.stack.entries), "Stack unwind depth botch")

	ev.stack.entries = ev.stack.entries[:depth]
}

//
// The operator stack.  Only pending binary operators live here, one
// scope base sentinel per nesting level
//

func (ev *evaluator) pushOper(op pendingOp) {

	runtimeCheck(len(ev.opstack) < operStackMax, EOPSTACK)

	ev.opstack = append(ev.opstack, op)
}

func (ev *evaluator) pushOperMark() {

	ev.pushOper(pendingOp{mark: true})
}

func (ev *evaluator) popOper() pendingOp {

	n := len(ev.opstack)
	basicAssert(n > 0, "Operator stack underflow")

	op := ev.opstack[n-1]
	ev.opstack = ev.opstack[:n-1]

	return op
}

func (ev *evaluator) operDepth() int {

	return len(ev.opstack)
}

func (ev *evaluator) unwindOpers(depth int) {

	basicAssert(depth <= len(ev.opstack), "Operator stack unwind botch")

	ev.opstack = ev.opstack[:depth]
}

//
// Reset both stacks to pristine state.  Called at the start of every
// top-level statement and after error recovery
//

func (ev *evaluator) resetStacks() {

	ev.unwindStack(0)
	ev.unwindOpers(0)
	ev.fnDepth = 0
}

//
// Numeric coercion helpers.  Conversions from float truncate toward
// zero and range-check first, since an out-of-range float to int
// conversion is not well defined in Go
//

func entryToFloat(e stackEntry) float64 {

	switch e.tag {
	default:
		fatalError("entryToFloat: non-numeric entry")
		panic(nil)

	case tagInt:
		return float64(e.i)
	case tagInt64:
		return float64(e.i64)
	case tagFloat:
		return e.f
	}
}

func entryToInt64(e stackEntry) int64 {

	switch e.tag {
	default:
		fatalError("entryToInt64: non-numeric entry")
		panic(nil)

	case tagInt:
		return int64(e.i)
	case tagInt64:
		return e.i64
	case tagFloat:
		return floatToInt64(e.f)
	}
}

func entryToInt32(e stackEntry) int32 {

	switch e.tag {
	default:
		fatalError("entryToInt32: non-numeric entry")
		panic(nil)

	case tagInt:
		return e.i
	case tagInt64:
		return int64ToInt32(e.i64)
	case tagFloat:
		return floatToInt32(e.f)
	}
}

func floatToInt32(f float64) int32 {

	t := math.Trunc(f)

	runtimeCheck(t >= math.MinInt32 && t <= math.MaxInt32, ERANGE)

	return int32(t)
}

func floatToInt64(f float64) int64 {

	t := math.Trunc(f)

	runtimeCheck(t >= -maxInt64Float && t < maxInt64Float, ERANGE)

	return int64(t)
}

func int64ToInt32(v int64) int32 {

	runtimeCheck(v >= math.MinInt32 && v <= math.MaxInt32, ERANGE)

	return int32(v)
}
