package main

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func newTestEvaluator() *evaluator {
	return newEvaluator()
}

func evalStr(t *testing.T, ev *evaluator, text string) stackEntry {
	t.Helper()
	e := ev.evalTop(compileExpression(text))
	if ev.stackDepth() != 0 {
		t.Fatalf("value stack not empty after %q: depth %d", text, ev.stackDepth())
	}
	if ev.operDepth() != 0 {
		t.Fatalf("operator stack not empty after %q: depth %d", text, ev.operDepth())
	}
	return e
}

func wantInt(t *testing.T, e stackEntry, v int32) {
	t.Helper()
	if e.tag != tagInt || e.i != v {
		t.Fatalf("want 32-bit int %d, got %+v", v, e)
	}
}

func wantInt64(t *testing.T, e stackEntry, v int64) {
	t.Helper()
	if e.tag != tagInt64 || e.i64 != v {
		t.Fatalf("want 64-bit int %d, got %+v", v, e)
	}
}

func wantFloat(t *testing.T, e stackEntry, v float64) {
	t.Helper()
	if e.tag != tagFloat || e.f != v {
		t.Fatalf("want float %g, got %+v", v, e)
	}
}

func wantStr(t *testing.T, e stackEntry, s string) {
	t.Helper()
	if e.tag != tagString && e.tag != tagStrTemp {
		t.Fatalf("want string %q, got %+v", s, e)
	}
	if string(e.s) != s {
		t.Fatalf("want string %q, got %q", s, e.s)
	}
}

func wantError(t *testing.T, ev *evaluator, substr string, f func()) {
	t.Helper()
	defer func() {
		e := recover()
		if e == nil {
			t.Fatalf("expected error containing %q, got none", substr)
		}
		re, ok := e.(*runtimeErrorInfo)
		if !ok {
			panic(e)
		}
		if !strings.Contains(re.msg, substr) {
			t.Fatalf("expected error containing %q, got %q", substr, re.msg)
		}
		ev.resetStacks()
	}()
	f()
}

// --- the expression driver -------------------------------------------------

func TestSingleFactor(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "42"), 42)
	wantFloat(t, evalStr(t, ev, "2.5"), 2.5)
	wantStr(t, evalStr(t, ev, `"hello"`), "hello")
}

func TestSimpleBinary(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "2+3"), 5)
	wantInt(t, evalStr(t, ev, "10-4"), 6)
	wantInt(t, evalStr(t, ev, "6*7"), 42)
}

func TestPrecedence(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "2+3*4"), 14)
	wantInt(t, evalStr(t, ev, "3*4+2"), 14)
	wantInt(t, evalStr(t, ev, "2+3*4-5"), 9)
	wantFloat(t, evalStr(t, ev, "2*3^2"), 18.0)
	wantInt(t, evalStr(t, ev, "1+2 AND 3"), 3)
	wantInt(t, evalStr(t, ev, "6 OR 1+2"), 7)
}

func TestBrackets(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "(2+3)*4"), 20)
	wantInt(t, evalStr(t, ev, "((((5))))"), 5)
	wantInt(t, evalStr(t, ev, "2*(3+4)*5"), 70)
}

func TestLeftAssociativity(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "20-5-3"), 12)
	wantFloat(t, evalStr(t, ev, "100/5/2"), 10.0)
	wantInt(t, evalStr(t, ev, "100 DIV 5 DIV 2"), 10)
}

func TestUnaryOperators(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "-5"), -5)
	wantInt(t, evalStr(t, ev, "+5"), 5)
	wantInt(t, evalStr(t, ev, "--5"), 5)
	wantInt(t, evalStr(t, ev, "2--3"), 5)
	wantFloat(t, evalStr(t, ev, "-2.5"), -2.5)
}

//
// A second relational may not chain onto a first: the evaluation
// stops after the first relational's right operand, leaving the rest
// of the stream unconsumed
//

func TestRelationalChainStops(t *testing.T) {
	ev := newTestEvaluator()

	p := compileExpression("3>1=0")
	e := ev.evalTop(p)

	wantInt(t, e, basTrue)

	if ev.atEnd() {
		t.Fatalf("expected unconsumed input after the first relational")
	}
	if ev.currByte() != opEq {
		t.Fatalf("expected the stream to stop at '=', got op-code %d", ev.currByte())
	}
}

func TestRelationalAfterTighterOps(t *testing.T) {
	ev := newTestEvaluator()

	// The relational itself is fine, only chaining is restricted
	wantInt(t, evalStr(t, ev, "1+2=3"), basTrue)
	wantInt(t, evalStr(t, ev, "2*3>5"), basTrue)
	wantInt(t, evalStr(t, ev, "1=2 AND 3=3"), basFalse)
	wantInt(t, evalStr(t, ev, "1=1 AND 3=3"), basTrue)
}

func TestRelationalChainViaAndIsFine(t *testing.T) {
	ev := newTestEvaluator()

	p := compileExpression("1<2 AND 2<3")
	e := ev.evalTop(p)

	wantInt(t, e, basTrue)

	if !ev.atEnd() {
		t.Fatalf("expected the whole expression to be consumed")
	}
}

func TestDeepExpression(t *testing.T) {
	ev := newTestEvaluator()
	wantInt(t, evalStr(t, ev, "1+2*3-4+10*2-5*3+1"), 9)
}

func TestOperatorStackOverflow(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, EOPSTACK, func() {
		for i := 0; i <= operStackMax; i++ {
			ev.pushOper(pendingOp{oper: operAdd, prio: prioAdd})
		}
	})
}

func TestTypedExprDrivers(t *testing.T) {
	ev := newTestEvaluator()

	ev.prog = compileExpression("2+3")
	ev.pos = 0
	if got := ev.exprInt32(); got != 5 {
		t.Fatalf("exprInt32: want 5, got %d", got)
	}

	ev.prog = compileExpression("2147483648+1")
	ev.pos = 0
	if got := ev.exprInt64(); got != 2147483649 {
		t.Fatalf("exprInt64: want 2147483649, got %d", got)
	}

	ev.prog = compileExpression("2.5*2")
	ev.pos = 0
	if got := ev.exprFloat(); got != 5.0 {
		t.Fatalf("exprFloat: want 5, got %g", got)
	}

	ev.prog = compileExpression(`"a"+"b"`)
	ev.pos = 0
	if got := string(ev.exprString()); got != "ab" {
		t.Fatalf("exprString: want ab, got %q", got)
	}
}

func TestBadExpression(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, EBADEXPR, func() {
		compileExpression("2 @ 3")
	})
	wantError(t, ev, EBADEXPR, func() {
		compileExpression("2 FROG 3")
	})
	wantError(t, ev, EMISSINGRPAR, func() {
		evalStr(t, ev, "(1+2")
	})
}
