package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goforj/godump"
)

//
// The statement executor: one line of input in, side effects out.
// The shell keywords are dispatched off the first word; anything else
// is either an assignment (there is a top-level '=' with an lvalue in
// front of it) or an expression to evaluate and print
//

func executeLine(ev *evaluator, line string) {

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	word, rest := firstWord(line)

	switch strings.ToUpper(word) {
	case "QUIT", "EXIT", "BYE":
		g.exiting = true
		return

	case "HELP":
		printHelp()
		return

	case "VARS":
		listVariables(ev)
		return

	case "STATS":
		printStatistics()
		return

	case "LEGACY":
		ev.legacyIntMaths = !ev.legacyIntMaths
		if ev.legacyIntMaths {
			fmt.Println("Legacy 32-bit integer maths is ON")
		} else {
			fmt.Println("Legacy 32-bit integer maths is OFF")
		}
		return

	case "TRACE":
		g.traceStack = !g.traceStack
		if g.traceStack {
			fmt.Println("Stack traces on errors are ON")
		} else {
			fmt.Println("Stack traces on errors are OFF")
		}
		return

	case "NEW":
		ev.symbols.clear()
		return

	case "DUMP":
		executeDump(ev, rest)
		return

	case "PRINT":
		executePrint(ev, rest)
		return

	case "DIM":
		executeDim(ev, rest)
		return

	case "DEF":
		executeDef(ev, rest)
		return

	case "LET":
		executeAssignment(ev, rest)
		return
	}

	if looksLikeAssignment(line) {
		executeAssignment(ev, line)
		return
	}

	//
	// An expression.  Unconsumed input past what the expression
	// driver would take (for instance a chained relational) is an
	// error here, since there is nothing that could legitimately
	// follow an expression on its own
	//

	e := evalTopStrict(ev, line)
	fmt.Println(formatEntry(e))
}

func firstWord(line string) (string, string) {

	n := 0
	for n < len(line) && isNameStart(line[n]) {
		n++
	}

	return line[:n], strings.TrimSpace(line[n:])
}

//
// Compile and evaluate a complete expression.  Leftover input means
// the text was not a single expression
//

func evalTopStrict(ev *evaluator, text string) stackEntry {

	p := compileExpression(text)
	e := ev.evalTop(p)

	runtimeCheck(ev.atEnd(), EBADEXPR)

	return e
}

//
// PRINT: a comma separated list of expressions
//

func executePrint(ev *evaluator, text string) {

	if strings.TrimSpace(text) == "" {
		fmt.Println()
		return
	}

	parts := splitTopLevel(text, ',')

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, formatEntry(evalTopStrict(ev, part)))
	}

	fmt.Println(strings.Join(out, " "))
}

//
// DUMP: show the compiled form of an expression, then its value
//

func executeDump(ev *evaluator, text string) {

	p := compileExpression(text)
	godump.Dump(p.code)

	e := ev.evalTop(p)
	runtimeCheck(ev.atEnd(), EBADEXPR)

	fmt.Println(formatEntry(e))
}

//
// DIM: create one or more arrays.  The declared bounds are inclusive,
// so DIM A(9) makes ten elements per dimension
//

func executeDim(ev *evaluator, text string) {

	for _, decl := range splitTopLevel(text, ',') {
		decl = strings.TrimSpace(decl)

		name, rest := parseName(decl)
		rest = strings.TrimSpace(rest)

		if name == "" || len(rest) < 2 || rest[0] != '(' ||
			rest[len(rest)-1] != ')' {
			runtimeError(EBADEXPR)
		}

		var extents []int32
		for _, boundText := range splitTopLevel(rest[1:len(rest)-1], ',') {
			bound := entryToInt32(numericEntry(evalTopStrict(ev, boundText)))
			runtimeCheck(bound >= 0, ERANGE)
			extents = append(extents, bound+1)
		}

		ev.symbols.createArray(name, extents)
	}
}

//
// DEF: define a function.  The general shape is
//
//   DEF FNname(formals) = expression
//
// optionally with colon separated assignment statements between the
// formal list and the '=', which is how a RETURN parameter gets a
// value written into it:
//
//   DEF FNbump(RETURN n%) : n% = n% + 1 : = n%
//

func executeDef(ev *evaluator, text string) {

	text = strings.TrimSpace(text)

	if len(text) < 2 || strings.ToUpper(text[:2]) != "FN" {
		runtimeError(EBADEXPR)
	}

	name, rest := parseName(text[2:])
	if name == "" {
		runtimeError(EBADEXPR)
	}
	rest = strings.TrimSpace(rest)

	var formals []formalParm

	if len(rest) > 0 && rest[0] == '(' {
		end := matchParen(rest)

		inner := strings.TrimSpace(rest[1 : end-1])
		if inner != "" {
			for _, f := range splitTopLevel(inner, ',') {
				formals = append(formals, parseFormal(f))
			}
		}

		rest = strings.TrimSpace(rest[end:])
	}

	var stmts []string

	for len(rest) > 0 && rest[0] == ':' {
		seg, tail := splitOneStatement(rest[1:])
		seg = strings.TrimSpace(seg)

		if strings.HasPrefix(seg, "=") {
			//
			// The body turned up as a ':' separated segment
			//
			runtimeCheck(strings.TrimSpace(tail) == "", EBADEXPR)
			rest = seg
			break
		}

		if seg != "" {
			stmts = append(stmts, seg)
		}
		rest = strings.TrimSpace(tail)
	}

	if len(rest) == 0 || rest[0] != '=' {
		runtimeError(EBADEXPR)
	}

	body := strings.TrimSpace(rest[1:])

	def := &fnDef{
		name:    name,
		formals: formals,
		stmts:   stmts,
		body:    compileExpression(body),
		text:    "DEF " + text,
	}

	ev.symbols.defineFunction(def)
}

func parseFormal(text string) formalParm {

	text = strings.TrimSpace(text)

	byRef := false

	word, rest := firstWord(text)
	if strings.ToUpper(word) == "RETURN" && rest != "" {
		byRef = true
		text = rest
	}

	name, tail := parseName(text)
	if name == "" {
		runtimeError(EBADEXPR)
	}

	tail = strings.TrimSpace(tail)

	kind := scalarKind(name)

	if tail == "()" {
		//
		// An array formal.  RETURN makes no sense for one: the body
		// cannot rebind a whole array anyway
		//
		runtimeCheck(!byRef, ENOTLVALUE)
		kind = arrayKindFor(kind)
	} else if tail != "" {
		runtimeError(EBADEXPR)
	}

	return formalParm{name: name, kind: kind, byRef: byRef}
}

//
// Take everything up to the next top-level ':' or a segment-leading
// '=', whichever comes first, so the function body expression stays
// in one piece
//

func splitOneStatement(text string) (string, string) {

	depth := 0
	inQuote := false

	for n := 0; n < len(text); n++ {
		c := text[n]

		if inQuote {
			if c == '"' {
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '(':
			depth++
		case ')':
			depth--
		case ':':
			if depth == 0 {
				return text[:n], text[n:]
			}
		}
	}

	return text, ""
}

//
// Assignment.  The left hand side is a scalar variable, an array
// element, a whole array, or an indirection through '?', '!', '|' or
// '$'
//

func looksLikeAssignment(line string) bool {

	eq := findTopLevelEq(line)
	if eq < 0 {
		return false
	}

	lhs := strings.TrimSpace(line[:eq])
	if lhs == "" {
		return false
	}

	switch lhs[0] {
	case '?', '!', '|', '$':
		return true
	}

	if !isNameStart(lhs[0]) {
		return false
	}

	_, rest := parseName(lhs)
	rest = strings.TrimSpace(rest)

	if rest == "" || rest == "()" {
		return true
	}

	return rest[0] == '(' && matchParenOk(rest) == len(rest)
}

func executeAssignment(ev *evaluator, text string) {

	eq := findTopLevelEq(text)
	runtimeCheck(eq >= 0, EBADEXPR)

	lhs := strings.TrimSpace(text[:eq])
	rhsText := text[eq+1:]

	runtimeCheck(lhs != "", EBADEXPR)

	switch lhs[0] {
	case '?', '!', '|', '$':
		assignIndirect(ev, lhs[0], lhs[1:], rhsText)
		return
	}

	name, rest := parseName(lhs)
	if name == "" {
		runtimeError(EBADEXPR)
	}
	rest = strings.TrimSpace(rest)

	switch {
	case rest == "":
		assignScalar(ev, name, rhsText)

	case rest == "()":
		assignWholeArray(ev, name, rhsText)

	case rest[0] == '(' && rest[len(rest)-1] == ')':
		assignArrayElement(ev, name, rest[1:len(rest)-1], rhsText)

	default:
		runtimeError(EBADEXPR)
	}
}

func assignScalar(ev *evaluator, name string, rhsText string) {

	val := evalTopStrict(ev, rhsText)

	sym := ev.symbols.findVariable(name)
	if sym == nil {
		sym = ev.symbols.createVariable(name)
	}

	ev.storeVarValue(sym, val)
}

//
// Whole array assignment: 'a() = b()' copies (or adopts a temporary
// from an array expression); 'a() = 42' fills every element with the
// scalar
//

func assignWholeArray(ev *evaluator, name string, rhsText string) {

	sym := ev.symbols.findArray(name)
	if sym == nil {
		missingVarError(name)
	}
	runtimeCheck(sym.arr != nil, ENODIMS)

	val := evalTopStrict(ev, rhsText)

	switch {
	case entryIsNumArray(val) || entryIsStrArray(val):
		runtimeCheck(val.arr.elemTag == sym.arr.elemTag, EARRAYTYPE)
		if entryIsTempArray(val) {
			sym.arr = val.arr
		} else {
			sym.arr = copyArrayDesc(val.arr)
		}

	case entryIsNumeric(val):
		fillArrayNumeric(sym.arr, val)

	case entryIsString(val):
		runtimeCheck(sym.arr.elemTag == tagString, ETYPESTR)
		for n := range sym.arr.s {
			sym.arr.s[n] = copyString(val.s)
		}

	default:
		runtimeError(ETYPENUM)
	}
}

func fillArrayNumeric(arr *arrayDesc, val stackEntry) {

	switch arr.elemTag {
	default:
		runtimeError(ETYPENUM)

	case tagInt:
		v := entryToInt32(val)
		for n := range arr.i {
			arr.i[n] = v
		}

	case tagInt64:
		v := entryToInt64(val)
		for n := range arr.i64 {
			arr.i64[n] = v
		}

	case tagFloat:
		v := entryToFloat(val)
		for n := range arr.f {
			arr.f[n] = v
		}
	}
}

func assignArrayElement(ev *evaluator, name string, subsText string, rhsText string) {

	sym := ev.symbols.findArray(name)
	if sym == nil {
		missingVarError(name)
	}
	runtimeCheck(sym.arr != nil, ENODIMS)

	arr := sym.arr

	subs := splitTopLevel(subsText, ',')
	runtimeCheck(len(subs) == len(arr.dims), EDIMCOUNT)

	index := int32(0)
	for n, subText := range subs {
		sub := entryToInt32(numericEntry(evalTopStrict(ev, subText)))

		if sub < 0 || sub >= arr.dims[n] {
			badIndexError(name, sub)
		}

		index = index*arr.dims[n] + sub
	}

	val := evalTopStrict(ev, rhsText)

	switch arr.elemTag {
	case tagInt:
		runtimeCheck(entryIsNumeric(val), ETYPENUM)
		arr.i[index] = entryToInt32(val)

	case tagInt64:
		runtimeCheck(entryIsNumeric(val), ETYPENUM)
		arr.i64[index] = entryToInt64(val)

	case tagFloat:
		runtimeCheck(entryIsNumeric(val), ETYPENUM)
		arr.f[index] = entryToFloat(val)

	case tagString:
		runtimeCheck(entryIsString(val), ETYPESTR)
		if val.tag == tagStrTemp {
			arr.s[index] = val.s
		} else {
			arr.s[index] = copyString(val.s)
		}
	}
}

func assignIndirect(ev *evaluator, sigil byte, addrText string, rhsText string) {

	addr := entryToInt32(numericEntry(evalTopStrict(ev, addrText)))
	val := evalTopStrict(ev, rhsText)

	switch sigil {
	case '?':
		ev.mem.writeByte(addr, byte(entryToInt32(numericEntry(val))))

	case '!':
		ev.mem.writeWord(addr, entryToInt32(numericEntry(val)))

	case '|':
		ev.mem.writeFloat(addr, entryToFloat(numericEntry(val)))

	case '$':
		runtimeCheck(entryIsString(val), ETYPESTR)
		ev.mem.writeString(addr, val.s)
	}
}

func numericEntry(e stackEntry) stackEntry {

	runtimeCheck(entryIsNumeric(e), ETYPENUM)

	return e
}

//
// Text scanning helpers shared by the statement parsers.  'Top level'
// always means outside string quotes and outside brackets
//

func parseName(text string) (string, string) {

	if len(text) == 0 || !isNameStart(text[0]) {
		return "", text
	}

	n := 0
	for n < len(text) && isNameChar(text[n]) {
		n++
	}

	if strings.HasPrefix(text[n:], "%%") {
		n += 2
	} else if n < len(text) && (text[n] == '%' || text[n] == '$') {
		n++
	}

	return text[:n], text[n:]
}

func splitTopLevel(text string, sep byte) []string {

	var parts []string

	depth := 0
	inQuote := false
	start := 0

	for n := 0; n < len(text); n++ {
		c := text[n]

		if inQuote {
			if c == '"' {
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, text[start:n])
				start = n + 1
			}
		}
	}

	return append(parts, text[start:])
}

//
// Find the '=' that separates an assignment's sides: top level, and
// not part of '<=', '>=' or '<>'
//

func findTopLevelEq(text string) int {

	depth := 0
	inQuote := false

	for n := 0; n < len(text); n++ {
		c := text[n]

		if inQuote {
			if c == '"' {
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '(':
			depth++
		case ')':
			depth--
		case '=':
			if depth == 0 && (n == 0 ||
				(text[n-1] != '<' && text[n-1] != '>')) {
				return n
			}
		}
	}

	return -1
}

//
// Length of the balanced bracket group at the start of the text, or
// an error if it never closes
//

func matchParen(text string) int {

	n := matchParenOk(text)
	runtimeCheck(n > 0, EMISSINGRPAR)

	return n
}

func matchParenOk(text string) int {

	if len(text) == 0 || text[0] != '(' {
		return 0
	}

	depth := 0
	inQuote := false

	for n := 0; n < len(text); n++ {
		c := text[n]

		if inQuote {
			if c == '"' {
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return n + 1
			}
		}
	}

	return 0
}

//
// Turn a stack entry into display text.  Floats use up to ten
// significant figures, the classic BASIC default; arrays print their
// elements in row-major order
//

func formatEntry(e stackEntry) string {

	switch e.tag {
	default:
		fatalError("formatEntry: bad stack entry")
		panic(nil)

	case tagInt:
		return strconv.FormatInt(int64(e.i), 10)

	case tagInt64:
		return strconv.FormatInt(e.i64, 10)

	case tagFloat:
		return basicFormat(e.f)

	case tagString, tagStrTemp:
		return string(e.s)

	case tagIntArray, tagIntArrayTemp, tagInt64Array, tagInt64ArrayTemp,
		tagFloatArray, tagFloatArrayTemp, tagStrArray, tagStrArrayTemp:
		return formatArray(e.arr)
	}
}

func basicFormat(f float64) string {

	return strconv.FormatFloat(f, 'G', 10, 64)
}

func formatArray(arr *arrayDesc) string {

	out := make([]string, 0, arr.count)

	for n := int32(0); n < arr.count; n++ {
		switch arr.elemTag {
		case tagInt:
			out = append(out, strconv.FormatInt(int64(arr.i[n]), 10))
		case tagInt64:
			out = append(out, strconv.FormatInt(arr.i64[n], 10))
		case tagFloat:
			out = append(out, basicFormat(arr.f[n]))
		case tagString:
			out = append(out, string(arr.s[n]))
		}
	}

	return strings.Join(out, " ")
}

//
// VARS: list every symbol, in name order courtesy of the AVL tree
//

func listVariables(ev *evaluator) {

	for sym := ev.symbols.firstInOrder(); sym != nil; sym = ev.symbols.nextInOrder(sym) {
		switch sym.kind {
		case symFunction:
			fmt.Printf("%-16s %s\n", sym.name, sym.def.text)

		case symFloatArray, symIntArray, symInt64Array, symStrArray:
			if sym.arr == nil {
				fmt.Printf("%-16s (not dimensioned)\n", sym.name)
				continue
			}
			dims := make([]string, len(sym.arr.dims))
			for n, d := range sym.arr.dims {
				dims[n] = strconv.FormatInt(int64(d-1), 10)
			}
			fmt.Printf("%-16s DIM(%s)\n", sym.name, strings.Join(dims, ","))

		default:
			fmt.Printf("%-16s %s\n", sym.name, formatEntry(symValueEntry(sym)))
		}
	}
}
