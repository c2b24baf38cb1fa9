package main

import (
	"testing"
)

// --- literals --------------------------------------------------------------

func TestIntegerLiterals(t *testing.T) {
	ev := newTestEvaluator()

	wantInt(t, evalStr(t, ev, "0"), 0)
	wantInt(t, evalStr(t, ev, "1"), 1)
	wantInt(t, evalStr(t, ev, "2"), 2)
	wantInt(t, evalStr(t, ev, "256"), 256)
	wantInt(t, evalStr(t, ev, "257"), 257)
	wantInt(t, evalStr(t, ev, "2147483647"), 2147483647)
	wantInt64(t, evalStr(t, ev, "2147483648"), 2147483648)
	wantInt64(t, evalStr(t, ev, "9223372036854775807"), 9223372036854775807)
}

func TestFloatLiterals(t *testing.T) {
	ev := newTestEvaluator()

	wantFloat(t, evalStr(t, ev, "0.0"), 0.0)
	wantFloat(t, evalStr(t, ev, "1.0"), 1.0)
	wantFloat(t, evalStr(t, ev, "2.5"), 2.5)
	wantFloat(t, evalStr(t, ev, ".5"), 0.5)
	wantFloat(t, evalStr(t, ev, "1E3"), 1000.0)
	wantFloat(t, evalStr(t, ev, "3E-2"), 0.03)

	// an integer too big for 64 bits quietly becomes a float
	e := evalStr(t, ev, "99999999999999999999")
	if e.tag != tagFloat || e.f != 1e20 {
		t.Fatalf("want float 1e20, got %+v", e)
	}
}

func TestHexLiterals(t *testing.T) {
	ev := newTestEvaluator()

	wantInt(t, evalStr(t, ev, "&FF"), 255)
	wantInt(t, evalStr(t, ev, "&7fffffff"), 2147483647)

	// eight digits fill a 32-bit value, sign bit included
	wantInt(t, evalStr(t, ev, "&FFFFFFFF"), -1)
	wantInt64(t, evalStr(t, ev, "&100000000"), 4294967296)
	wantInt(t, evalStr(t, ev, "&FFFFFFFFFFFFFFFF"), -1)

	wantError(t, ev, EBADEXPR, func() { compileExpression("&") })
	wantError(t, ev, ERANGE, func() { compileExpression("&10000000000000000") })
}

// --- variables -------------------------------------------------------------

func TestVariableReadAfterAssign(t *testing.T) {
	ev := newTestEvaluator()

	executeAssignment(ev, "pi = 3.5")
	executeAssignment(ev, "n% = 7")
	executeAssignment(ev, "n%% = 5000000000")
	executeAssignment(ev, `s$ = "hi"`)

	wantFloat(t, evalStr(t, ev, "pi"), 3.5)
	wantInt(t, evalStr(t, ev, "n%"), 7)
	wantInt64(t, evalStr(t, ev, "n%%"), 5000000000)
	wantStr(t, evalStr(t, ev, "s$"), "hi")
}

func TestVariableNotCreated(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, "Variable 'zz%' has not been created", func() {
		evalStr(t, ev, "zz%")
	})
}

func TestVariableStoreCoercion(t *testing.T) {
	ev := newTestEvaluator()

	// the sigil fixes the type; the value is coerced on the way in
	executeAssignment(ev, "n% = 2.9")
	wantInt(t, evalStr(t, ev, "n%"), 2)

	executeAssignment(ev, "f = 7")
	wantFloat(t, evalStr(t, ev, "f"), 7.0)

	wantError(t, ev, ERANGE, func() {
		executeAssignment(ev, "n% = 2147483648")
	})
	wantError(t, ev, ETYPENUM, func() {
		executeAssignment(ev, `n% = "hi"`)
	})
	wantError(t, ev, ETYPESTR, func() {
		executeAssignment(ev, "s$ = 1")
	})
}

//
// A compiled expression caches its resolved variable references, so a
// second run must see the variable's new value, not a stale one
//

func TestReferenceCache(t *testing.T) {
	ev := newTestEvaluator()

	executeAssignment(ev, "q% = 1")

	p := compileExpression("q%+1")
	wantInt(t, ev.evalTop(p), 2)

	if len(p.refs) == 0 {
		t.Fatalf("expected the reference cache to be populated")
	}

	executeAssignment(ev, "q% = 5")
	wantInt(t, ev.evalTop(p), 6)
}

// --- array elements --------------------------------------------------------

func TestArrayElementAccess(t *testing.T) {
	ev := newTestEvaluator()

	dimFill(t, ev, "a%", "10", "20", "30")
	wantInt(t, evalStr(t, ev, "a%(0)"), 10)
	wantInt(t, evalStr(t, ev, "a%(2)"), 30)
	wantInt(t, evalStr(t, ev, "a%(1+1)"), 30)

	executeLine(ev, "DIM m%(1,2)")
	executeAssignment(ev, "m%(1,2) = 7")
	wantInt(t, evalStr(t, ev, "m%(1,2)"), 7)
	wantInt(t, evalStr(t, ev, "m%(0,0)"), 0)
}

func TestArrayIndexErrors(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "DIM A(9)")

	wantError(t, ev, "Array index 10 is out of range for 'A'", func() {
		evalStr(t, ev, "A(10)")
	})
	wantError(t, ev, "Array index -1 is out of range for 'A'", func() {
		evalStr(t, ev, "A(-1)")
	})

	executeLine(ev, "DIM m%(1,1)")
	wantError(t, ev, EDIMCOUNT, func() { evalStr(t, ev, "m%(0)") })
	wantError(t, ev, EDIMCOUNT, func() { evalStr(t, ev, "m%(0,0,0)") })

	wantError(t, ev, "Variable 'b%' has not been created", func() {
		evalStr(t, ev, "b%()")
	})
}

// --- unary operators -------------------------------------------------------

func TestUnaryTypeErrors(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, ETYPENUM, func() { evalStr(t, ev, `-"x"`) })
	wantError(t, ev, ETYPENUM, func() { evalStr(t, ev, `+"x"`) })
}

// --- indirection -----------------------------------------------------------

func TestByteIndirection(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "?200 = 65")
	wantInt(t, evalStr(t, ev, "?200"), 65)
	wantInt(t, evalStr(t, ev, "?201"), 0)

	// only the low byte is stored
	executeLine(ev, "?200 = 258")
	wantInt(t, evalStr(t, ev, "?200"), 2)
}

func TestWordIndirectionIsLittleEndian(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "!300 = &01020304")
	wantInt(t, evalStr(t, ev, "!300"), 0x01020304)
	wantInt(t, evalStr(t, ev, "?300"), 4)
	wantInt(t, evalStr(t, ev, "?303"), 1)
}

func TestFloatIndirection(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "|400 = 2.5")
	wantFloat(t, evalStr(t, ev, "|400"), 2.5)
}

func TestStringIndirection(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, `$600 = "hi"`)
	wantStr(t, evalStr(t, ev, "$600"), "hi")

	// terminated by a carriage return in memory
	wantInt(t, evalStr(t, ev, "?602"), 13)

	// no terminator in sight reads as the null string
	wantStr(t, evalStr(t, ev, "$700"), "")
}

func TestDyadicIndirection(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "!300 = &01020304")
	executeAssignment(ev, "v% = 300")

	wantInt(t, evalStr(t, ev, "v%?0"), 4)
	wantInt(t, evalStr(t, ev, "v%?1"), 3)
	wantInt(t, evalStr(t, ev, "v%!0"), 0x01020304)

	executeLine(ev, "DIM b%(1)")
	executeAssignment(ev, "b%(0) = 300")
	wantInt(t, evalStr(t, ev, "b%(0)?3"), 1)

	executeAssignment(ev, `a$ = "x"`)
	wantError(t, ev, ETYPENUM, func() { evalStr(t, ev, "a$?1") })
}

func TestAddressRangeChecks(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, EADDRESS, func() { evalStr(t, ev, "?65536") })
	wantError(t, ev, EADDRESS, func() { evalStr(t, ev, "?-1") })
	wantError(t, ev, EADDRESS, func() { evalStr(t, ev, "!65533") })
}

//
// The teletext window: bytes written inside it land in the 25x40
// frame, not the backing memory, and the unused tail of the 1K window
// reads as zero and swallows writes
//

func TestMode7Window(t *testing.T) {
	ev := newTestEvaluator()

	executeLine(ev, "?&7C00 = 65")
	wantInt(t, evalStr(t, ev, "?&7C00"), 65)

	if ev.mem.bytes[0x7C00] != 0 {
		t.Fatalf("write inside the window leaked into backing memory")
	}
	if ev.mem.mode7Frame[0][0] != 65 {
		t.Fatalf("write inside the window missed the frame")
	}

	// one row down
	executeLine(ev, "?(&7C00+40) = 66")
	if ev.mem.mode7Frame[1][0] != 66 {
		t.Fatalf("row arithmetic wrong: %v", ev.mem.mode7Frame[1][0])
	}

	// past the last cell: reads zero, writes vanish
	executeLine(ev, "?(&7C00+1000) = 7")
	wantInt(t, evalStr(t, ev, "?(&7C00+1000)"), 0)
}

// --- the value stack -------------------------------------------------------

func TestValueStackOverflow(t *testing.T) {
	ev := newTestEvaluator()

	wantError(t, ev, ESTACKFULL, func() {
		for i := 0; i <= valueStackMax; i++ {
			ev.pushInt(1)
		}
	})
}
