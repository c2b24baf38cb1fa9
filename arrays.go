package main

import (
	"math"
)

//
// The array broadcast engine.  Scalar-array, array-scalar and
// array-array forms of the arithmetic operators all land here; the
// per-element semantics mirror the scalar operators, including the
// overflow-driven widening of integer results
//

func entryIsNumArray(e stackEntry) bool {

	switch e.tag {
	case tagIntArray, tagIntArrayTemp, tagInt64Array, tagInt64ArrayTemp,
		tagFloatArray, tagFloatArrayTemp:
		return true
	}

	return false
}

func entryIsStrArray(e stackEntry) bool {

	return e.tag == tagStrArray || e.tag == tagStrArrayTemp
}

func entryIsTempArray(e stackEntry) bool {

	switch e.tag {
	case tagIntArrayTemp, tagInt64ArrayTemp, tagFloatArrayTemp,
		tagStrArrayTemp:
		return true
	}

	return false
}

func conformable(a, b *arrayDesc) bool {

	if len(a.dims) != len(b.dims) {
		return false
	}

	for n := range a.dims {
		if a.dims[n] != b.dims[n] {
			return false
		}
	}

	return true
}

func checkConformable(a, b *arrayDesc) {

	runtimeCheck(conformable(a, b), EARRAYTYPE)
}

//
// A uniform per-element view over one operand, array or scalar.  A
// scalar just repeats for every element index
//

type numView struct {
	arr *arrayDesc
	e   stackEntry
}

func makeNumView(e stackEntry) numView {

	if entryIsNumArray(e) {
		return numView{arr: e.arr}
	}

	return numView{e: e}
}

func (v numView) isFloat() bool {

	if v.arr != nil {
		return v.arr.elemTag == tagFloat
	}

	return v.e.tag == tagFloat
}

func (v numView) isInt32() bool {

	if v.arr != nil {
		return v.arr.elemTag == tagInt
	}

	return v.e.tag == tagInt
}

func (v numView) elemFloat(n int32) float64 {

	if v.arr == nil {
		return entryToFloat(v.e)
	}

	switch v.arr.elemTag {
	default:
		fatalError("numView: bad element tag")
		panic(nil)

	case tagInt:
		return float64(v.arr.i[n])
	case tagInt64:
		return float64(v.arr.i64[n])
	case tagFloat:
		return v.arr.f[n]
	}
}

func (v numView) elemInt64(n int32) int64 {

	if v.arr == nil {
		return entryToInt64(v.e)
	}

	switch v.arr.elemTag {
	default:
		fatalError("numView: bad element tag")
		panic(nil)

	case tagInt:
		return int64(v.arr.i[n])
	case tagInt64:
		return v.arr.i64[n]
	case tagFloat:
		return floatToInt64(v.arr.f[n])
	}
}

//
// Pick the result buffer: when the left operand is already a
// temporary of the right shape and element type it is reused in
// place, otherwise a fresh array is allocated.  The reuse must never
// be observable, which it is not: the source element is read before
// the destination element is written at each index
//

func reuseOrNewArray(lhs stackEntry, model *arrayDesc, elemTag int) *arrayDesc {

	if entryIsTempArray(lhs) && lhs.arr.elemTag == elemTag &&
		conformable(lhs.arr, model) {
		return lhs.arr
	}

	return newArrayDesc(elemTag, model.dims)
}

//
// The broadcast proper.  At least one side is a numeric array; both
// sides must be numeric.  Division always produces a float array;
// DIV and MOD always integer; the rest promote to float if either
// side is float, and otherwise widen per element exactly as the
// scalar operators do.  A zero divisor anywhere is an error and no
// partial result is pushed
//

func numArrayOp(ev *evaluator, oper int, lhs, rhs stackEntry) {

	lOK := entryIsNumeric(lhs) || entryIsNumArray(lhs)
	rOK := entryIsNumeric(rhs) || entryIsNumArray(rhs)
	runtimeCheck(lOK && rOK, ETYPENUM)

	var model *arrayDesc
	if entryIsNumArray(lhs) {
		model = lhs.arr
	}
	if entryIsNumArray(rhs) {
		if model != nil {
			checkConformable(model, rhs.arr)
		} else {
			model = rhs.arr
		}
	}
	basicAssert(model != nil, "Array operation with no array operand")

	lv := makeNumView(lhs)
	rv := makeNumView(rhs)

	//
	// A scalar divisor of zero fails before the loop, an array
	// divisor per element inside it
	//

	if rv.arr == nil {
		switch oper {
		case operDiv:
			runtimeCheck(rv.elemFloat(0) != 0, EDIVZERO)
		case operIntDiv, operMod:
			runtimeCheck(rv.elemInt64(0) != 0, EDIVZERO)
		}
	}

	floatResult := false
	switch oper {
	case operDiv:
		floatResult = true
	case operIntDiv, operMod:
		floatResult = false
	default:
		floatResult = lv.isFloat() || rv.isFloat()
	}

	if floatResult {
		out := reuseOrNewArray(lhs, model, tagFloat)

		for n := int32(0); n < model.count; n++ {
			rf := rv.elemFloat(n)

			var res float64
			switch oper {
			case operAdd:
				res = lv.elemFloat(n) + rf
			case operSub:
				res = lv.elemFloat(n) - rf
			case operMul:
				res = lv.elemFloat(n) * rf
			case operDiv:
				runtimeCheck(rf != 0, EDIVZERO)
				res = lv.elemFloat(n) / rf
			}

			out.f[n] = res
		}

		ev.pushArray(out, true)
		return
	}

	//
	// Integer path.  Results are computed in 64 bits into a scratch
	// buffer; if every element fits in 32 bits (and both sides were
	// 32-bit to begin with) the result is a 32-bit array, otherwise
	// it widens to 64.  Multiplication past the 64-bit range is a
	// hard error here, unlike the scalar case which falls back to
	// float: arrays are homogeneous and do not get to change their
	// element type half way through
	//

	bothInt32 := lv.isInt32() && rv.isInt32()
	wrap := ev.legacyIntMaths && bothInt32 &&
		(oper == operAdd || oper == operSub)

	scratch := make([]int64, model.count)
	allInt32 := true

	for n := int32(0); n < model.count; n++ {
		l64 := lv.elemInt64(n)
		r64 := rv.elemInt64(n)

		var v int64
		switch oper {
		case operAdd:
			v = l64 + r64
		case operSub:
			v = l64 - r64
		case operMul:
			f := float64(l64) * float64(r64)
			runtimeCheck(math.Abs(f) < maxInt64Float, ERANGE)
			v = l64 * r64
		case operIntDiv:
			runtimeCheck(r64 != 0, EDIVZERO)
			v = l64 / r64
		case operMod:
			runtimeCheck(r64 != 0, EDIVZERO)
			v = l64 % r64
		}

		if wrap {
			v = int64(int32(v))
		} else if int64(int32(v)) != v {
			allInt32 = false
		}

		scratch[n] = v
	}

	if bothInt32 && allInt32 {
		out := reuseOrNewArray(lhs, model, tagInt)
		for n := int32(0); n < model.count; n++ {
			out.i[n] = int32(scratch[n])
		}
		ev.pushArray(out, true)
	} else {
		out := reuseOrNewArray(lhs, model, tagInt64)
		for n := int32(0); n < model.count; n++ {
			out.i64[n] = scratch[n]
		}
		ev.pushArray(out, true)
	}
}
