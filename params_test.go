package main

import (
	"testing"
)

func TestSimpleFunctionCall(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNdouble(n%) = n%*2")

	wantInt(t, evalStr(t, ev, "FNdouble(21)"), 42)
	wantInt(t, evalStr(t, ev, "FNdouble(FNdouble(3))"), 12)
	wantInt(t, evalStr(t, ev, "1+FNdouble(2)*10"), 41)
}

func TestZeroFormalFunction(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNanswer = 42")

	wantInt(t, evalStr(t, ev, "FNanswer"), 42)
	wantError(t, ev, "Too many parameters", func() {
		evalStr(t, ev, "FNanswer(1)")
	})
}

func TestUndefinedFunction(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, "has not been defined", func() {
		evalStr(t, ev, "FNnope(1)")
	})
}

func TestFunctionRedefinition(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNc = 1")
	wantInt(t, evalStr(t, ev, "FNc"), 1)

	executeLine(ev, "DEF FNc = 2")
	wantInt(t, evalStr(t, ev, "FNc"), 2)
}

//
// Formals are globals with save and restore around the call, so a
// clashing outer variable has to come back untouched
//

func TestDynamicScopeRestores(t *testing.T) {
	ev := newTestEvaluator()

	executeAssignment(ev, "x% = 99")
	executeLine(ev, "DEF FNf(x%) = x%*2")

	wantInt(t, evalStr(t, ev, "FNf(5)"), 10)
	wantInt(t, evalStr(t, ev, "x%"), 99)
}

//
// Every actual is evaluated before any formal is assigned, so a later
// actual still sees the pre-call value of an earlier formal's name
//

func TestActualsSeeCallTimeValues(t *testing.T) {
	ev := newTestEvaluator()

	executeAssignment(ev, "g% = 10")
	executeLine(ev, "DEF FNpair(g%, h%) = g%*100+h%")

	wantInt(t, evalStr(t, ev, "FNpair(1, g%)"), 110)
	wantInt(t, evalStr(t, ev, "g%"), 10)
}

func TestParameterTypeByPosition(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNmix(n%, s$) = n%")

	wantInt(t, evalStr(t, ev, `FNmix(7, "x")`), 7)

	wantError(t, ev, "Parameter 1 of 'mix' should be a number", func() {
		evalStr(t, ev, `FNmix("hi", "x")`)
	})
	wantError(t, ev, "Parameter 2 of 'mix' should be a string", func() {
		evalStr(t, ev, "FNmix(1, 2)")
	})
}

func TestParameterCount(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNmix(n%, s$) = n%")
	executeLine(ev, "DEF FNone(n%) = n%")

	wantError(t, ev, "Not enough parameters for 'mix'", func() {
		evalStr(t, ev, "FNmix(1)")
	})
	wantError(t, ev, "Too many parameters for 'mix'", func() {
		evalStr(t, ev, `FNmix(1, "a", 2)`)
	})
	wantError(t, ev, "Not enough parameters for 'one'", func() {
		evalStr(t, ev, "FNone")
	})
	wantError(t, ev, "Too many parameters for 'one'", func() {
		evalStr(t, ev, "FNone(1, 2)")
	})
}

//
// RETURN parameters: the final value of the formal is written back to
// the caller's storage when the call returns
//

func TestReturnParameter(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNbump(RETURN n%) : n% = n%+1 : = n%")
	executeAssignment(ev, "v% = 5")

	wantInt(t, evalStr(t, ev, "FNbump(v%)"), 6)
	wantInt(t, evalStr(t, ev, "v%"), 6)
}

//
// The nasty case: the actual IS the variable standing behind the
// formal.  The writeback has to win over the restore
//

func TestReturnAliasesFormal(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNbump(RETURN n%) : n% = n%+1 : = n%")
	executeAssignment(ev, "n% = 5")

	wantInt(t, evalStr(t, ev, "FNbump(n%)"), 6)
	wantInt(t, evalStr(t, ev, "n%"), 6)
}

func TestReturnThroughMemory(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNbump(RETURN n%) : n% = n%+1 : = n%")
	executeLine(ev, "!100 = 7")

	wantInt(t, evalStr(t, ev, "FNbump(!100)"), 8)
	wantInt(t, evalStr(t, ev, "!100"), 8)
}

func TestMultipleReturnParameters(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNset2(RETURN a%, RETURN b%) : a% = 11 : b% = 22 : = 0")
	executeAssignment(ev, "x% = 0")
	executeAssignment(ev, "y% = 0")

	wantInt(t, evalStr(t, ev, "FNset2(x%, y%)"), 0)
	wantInt(t, evalStr(t, ev, "x%"), 11)
	wantInt(t, evalStr(t, ev, "y%"), 22)
}

func TestReturnNeedsLvalue(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNbump(RETURN n%) : n% = n%+1 : = n%")

	wantError(t, ev, ENOTLVALUE, func() {
		evalStr(t, ev, "FNbump(1+2)")
	})
}

//
// Array parameters.  A named actual is copied, so the function cannot
// scribble on the caller's elements; a temporary from an array
// expression is adopted as is
//

func TestArrayParameter(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	executeLine(ev, "DEF FNsum3(v%()) = v%(0)+v%(1)+v%(2)")

	wantInt(t, evalStr(t, ev, "FNsum3(a%())"), 6)
	wantInt(t, evalStr(t, ev, "FNsum3(a%()+10)"), 36)
}

func TestArrayParameterIsCopied(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "1", "2", "3")
	executeLine(ev, "DEF FNtweak(v%()) : v%(0) = 99 : = v%(0)")

	wantInt(t, evalStr(t, ev, "FNtweak(a%())"), 99)
	wantInt(t, evalStr(t, ev, "a%(0)"), 1)
}

func TestArrayParameterKind(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "f", "1.5", "2.5")
	executeLine(ev, "DEF FNsum3(v%()) = v%(0)+v%(1)+v%(2)")

	wantError(t, ev, "Parameter 1 of 'sum3' is the wrong kind of array", func() {
		evalStr(t, ev, "FNsum3(1)")
	})
	wantError(t, ev, "Parameter 1 of 'sum3' is the wrong kind of array", func() {
		evalStr(t, ev, "FNsum3(f())")
	})
}

//
// A string result can alias a formal whose old value is put back on
// return, so the call has to hand out a copy
//

func TestStringResultIsCopied(t *testing.T) {
	ev := newTestEvaluator()

	executeAssignment(ev, `a$ = "keep"`)
	executeLine(ev, "DEF FNid$(s$) = s$")

	e := evalStr(t, ev, "FNid$(a$)")
	if e.tag != tagStrTemp {
		t.Fatalf("want a temporary string result, got %+v", e)
	}
	wantStr(t, e, "keep")
	wantStr(t, evalStr(t, ev, "a$"), "keep")
}

func TestRecursionDepthLimit(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNr(n%) = FNr(n%+1)")

	wantError(t, ev, EDEEPNEST, func() {
		evalStr(t, ev, "FNr(0)")
	})

	if ev.fnDepth != 0 {
		t.Fatalf("function depth not unwound: %d", ev.fnDepth)
	}
}

func TestEscapeInterruptsCall(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DEF FNanswer = 42")

	ev.interrupted = true
	wantError(t, ev, EESCAPE, func() {
		evalStr(t, ev, "FNanswer")
	})

	// the flag is one-shot
	wantInt(t, evalStr(t, ev, "FNanswer"), 42)
}
