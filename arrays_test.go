package main

import (
	"strconv"
	"testing"
)

func dimFill(t *testing.T, ev *evaluator, name string, vals ...string) {
	t.Helper()
	executeLine(ev, "DIM "+name+"("+strconv.Itoa(len(vals)-1)+")")
	for n, v := range vals {
		executeAssignment(ev, name+"("+strconv.Itoa(n)+") = "+v)
	}
}

func wantIntElems(t *testing.T, e stackEntry, vals ...int32) {
	t.Helper()
	if e.arr == nil || e.arr.elemTag != tagInt {
		t.Fatalf("want a 32-bit int array, got %+v", e)
	}
	if int(e.arr.count) != len(vals) {
		t.Fatalf("want %d elements, got %d", len(vals), e.arr.count)
	}
	for n, v := range vals {
		if e.arr.i[n] != v {
			t.Fatalf("element %d: want %d, got %d", n, v, e.arr.i[n])
		}
	}
}

func wantFloatElems(t *testing.T, e stackEntry, vals ...float64) {
	t.Helper()
	if e.arr == nil || e.arr.elemTag != tagFloat {
		t.Fatalf("want a float array, got %+v", e)
	}
	for n, v := range vals {
		if e.arr.f[n] != v {
			t.Fatalf("element %d: want %g, got %g", n, v, e.arr.f[n])
		}
	}
}

// --- element-wise arithmetic -----------------------------------------------

func TestArrayScalarAdd(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	wantIntElems(t, evalStr(t, ev, "a%()+10"), 11, 12, 13)
	wantIntElems(t, evalStr(t, ev, "10+a%()"), 11, 12, 13)
	wantIntElems(t, evalStr(t, ev, "a%()*a%()"), 1, 4, 9)
}

func TestArrayArrayAdd(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	dimFill(t, ev, "b%", "10", "20", "30")
	wantIntElems(t, evalStr(t, ev, "a%()+b%()"), 11, 22, 33)
	wantIntElems(t, evalStr(t, ev, "b%()-a%()"), 9, 18, 27)
}

func TestArrayShapeMismatch(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	dimFill(t, ev, "b%", "1", "2")

	wantError(t, ev, EARRAYTYPE, func() { evalStr(t, ev, "a%()+b%()") })
}

func TestArrayDivIsFloat(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "10", "20", "30")
	wantFloatElems(t, evalStr(t, ev, "a%()/4"), 2.5, 5.0, 7.5)
}

func TestArrayElementDivZero(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	dimFill(t, ev, "b%", "1", "0", "2")

	// a zero anywhere in the divisor array is an error
	wantError(t, ev, EDIVZERO, func() { evalStr(t, ev, "a%()/b%()") })
	wantError(t, ev, EDIVZERO, func() { evalStr(t, ev, "a%() DIV b%()") })
	wantError(t, ev, EDIVZERO, func() { evalStr(t, ev, "a%()/0") })
}

func TestArrayOverflowWidens(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "2147483647", "1", "2")

	e := evalStr(t, ev, "a%()+1")
	if e.arr.elemTag != tagInt64 {
		t.Fatalf("want the result widened to 64 bits, got %+v", e)
	}
	if e.arr.i64[0] != 2147483648 || e.arr.i64[1] != 2 || e.arr.i64[2] != 3 {
		t.Fatalf("bad widened elements: %v", e.arr.i64)
	}
}

func TestArrayLegacyWraps(t *testing.T) {
	ev := newTestEvaluator()
	ev.legacyIntMaths = true

	dimFill(t, ev, "a%", "2147483647", "1")

	e := evalStr(t, ev, "a%()+1")
	if e.arr.elemTag != tagInt {
		t.Fatalf("want a 32-bit array in legacy mode, got %+v", e)
	}
	if e.arr.i[0] != -2147483648 || e.arr.i[1] != 2 {
		t.Fatalf("bad wrapped elements: %v", e.arr.i)
	}
}

func TestArrayMulPastInt64IsError(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DIM a%%(0)")
	executeAssignment(ev, "a%%(0) = 4000000000000000000")

	// scalars fall back to float here; arrays refuse instead
	wantError(t, ev, ERANGE, func() { evalStr(t, ev, "a%%()*4") })
}

func TestArrayFloatPromotion(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	wantFloatElems(t, evalStr(t, ev, "a%()+0.5"), 1.5, 2.5, 3.5)

	dimFill(t, ev, "f", "1.5", "2.5")
	wantFloatElems(t, evalStr(t, ev, "f()*2"), 3.0, 5.0)
}

func TestArrayTempChains(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	wantIntElems(t, evalStr(t, ev, "(a%()+1)*2"), 4, 6, 8)
	wantIntElems(t, evalStr(t, ev, "a%()+a%()+a%()"), 3, 6, 9)
}

func TestWholeArrayOfStringsRejectsSub(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DIM s$(1)")
	wantError(t, ev, ETYPENUM, func() { evalStr(t, ev, "s$()-1") })
}

// --- matrix multiplication -------------------------------------------------

func TestMatmulDotProduct(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	dimFill(t, ev, "b%", "4", "5", "6")

	e := evalStr(t, ev, "a%().b%()")
	wantIntElems(t, e, 32)
	if len(e.arr.dims) != 1 || e.arr.dims[0] != 1 {
		t.Fatalf("dot product should be a one element vector, dims %v", e.arr.dims)
	}
}

func TestMatmulMatrixVector(t *testing.T) {
	ev := newTestEvaluator()

	// 2x3 matrix
	executeLine(ev, "DIM m%(1,2)")
	vals := [][]string{{"1", "2", "3"}, {"4", "5", "6"}}
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			executeAssignment(ev, "m%("+strconv.Itoa(r)+","+strconv.Itoa(c)+") = "+vals[r][c])
		}
	}

	dimFill(t, ev, "v%", "1", "1", "1")

	wantIntElems(t, evalStr(t, ev, "m%().v%()"), 6, 15)

	dimFill(t, ev, "r%", "1", "1")
	wantIntElems(t, evalStr(t, ev, "r%().m%()"), 5, 7, 9)
}

func TestMatmulMatrixMatrix(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DIM a(1,1)")
	executeAssignment(ev, "a(0,0) = 1.0")
	executeAssignment(ev, "a(0,1) = 2.0")
	executeAssignment(ev, "a(1,0) = 3.0")
	executeAssignment(ev, "a(1,1) = 4.0")

	executeLine(ev, "DIM b(1,1)")
	executeAssignment(ev, "b(0,0) = 5.0")
	executeAssignment(ev, "b(0,1) = 6.0")
	executeAssignment(ev, "b(1,0) = 7.0")
	executeAssignment(ev, "b(1,1) = 8.0")

	e := evalStr(t, ev, "a().b()")
	wantFloatElems(t, e, 19, 22, 43, 50)
	if len(e.arr.dims) != 2 || e.arr.dims[0] != 2 || e.arr.dims[1] != 2 {
		t.Fatalf("want a 2x2 result, dims %v", e.arr.dims)
	}
}

func TestMatmulShapeMismatch(t *testing.T) {
	ev := newTestEvaluator()

	// 2x3 times 4x2: inner dimensions disagree
	executeLine(ev, "DIM a%(1,2)")
	executeLine(ev, "DIM b%(3,1)")

	wantError(t, ev, EARRAYTYPE, func() { evalStr(t, ev, "a%().b%()") })
}

func TestMatmulWantsNamedArrayOnRight(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2")

	// the right operand must be a named array, not a temporary
	wantError(t, ev, EWANTARRAY, func() { evalStr(t, ev, "a%().(a%()+1)") })
	wantError(t, ev, EWANTARRAY, func() { evalStr(t, ev, "a%().2") })
}

func TestMatmulElementTypeMismatch(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2")
	dimFill(t, ev, "f", "1.0", "2.0")

	wantError(t, ev, EARRAYTYPE, func() { evalStr(t, ev, "a%().f()") })
}
