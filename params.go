package main

//
// User defined function calls: parameter binding, the call protocol
// and the restore on return.
//
// Parameters use dynamic scope, the classic BASIC arrangement: a
// formal is an ordinary global variable whose old value is saved at
// the call and put back on return.  Binding is a two phase affair.
// Every actual is evaluated, and type-checked against its formal,
// left to right; only once the whole list has been consumed are the
// formals themselves assigned, innermost first on the way back out of
// the recursion.  That ordering is what makes FNswap(a,b) style calls
// see the values as they were at the call, not as the binder has been
// overwriting them
//

func (ev *evaluator) checkEscape() {

	if ev.interrupted {
		ev.interrupted = false
		runtimeError(EESCAPE)
	}
}

//
// Call a user defined function.  The actual argument list (if any) is
// consumed from the current code stream before control transfers to
// the function's compiled body
//

func (ev *evaluator) callFunction(def *fnDef) {

	ev.checkEscape()

	ev.fnDepth++
	runtimeCheck(ev.fnDepth <= fnRecursionMax, EDEEPNEST)

	saves := ev.bindParameters(def)

	savedProg := ev.prog
	savedPos := ev.pos
	operBase := ev.operDepth()

	defer func() {
		//
		// Runs on the error unwind too, so a failing function body
		// cannot leave the caller parsing the callee's stream
		//
		ev.prog = savedProg
		ev.pos = savedPos
		if ev.operDepth() > operBase {
			ev.unwindOpers(operBase)
		}
		ev.fnDepth--
	}()

	ev.pushOperMark()
	ev.pushStackMark()

	for _, stmt := range def.stmts {
		executeAssignment(ev, stmt)
	}

	ev.prog = def.body
	ev.pos = 0
	ev.evalExpr()

	result := ev.popEntry()
	ev.dropStackMark()

	ev.restoreParameters(saves)

	//
	// A string result may alias a formal whose old value was just put
	// back, so it has to be copied before anyone can see it
	//

	if result.tag == tagString {
		result = stackEntry{tag: tagStrTemp, s: copyString(result.s)}
	}

	ev.pushEntry(result)
}

//
// Bind the actual arguments to the formals.  The common case of a
// single by-value 32-bit integer parameter gets a slimmed down path
//

func (ev *evaluator) bindParameters(def *fnDef) []parmSave {

	if len(def.formals) == 0 {
		if ev.currByte() == opLparen {
			tooManyParmsError(def.name)
		}
		return nil
	}

	if ev.currByte() != opLparen {
		missingParmError(def.name)
	}
	ev.pos++

	if len(def.formals) == 1 && !def.formals[0].byRef &&
		def.formals[0].kind == symInt {
		return ev.bindSingleIntParm(def)
	}

	saves := make([]parmSave, 0, len(def.formals))
	ev.bindOneParm(def, 0, &saves)

	return saves
}

func (ev *evaluator) bindSingleIntParm(def *fnDef) []parmSave {

	ev.evalExpr()

	if ev.currByte() == opComma {
		tooManyParmsError(def.name)
	}
	runtimeCheck(ev.currByte() == opRparen, EPARMCORP)
	ev.pos++

	val := ev.popEntry()
	if !entryIsNumeric(val) {
		parmNumberError(def.name, 1)
	}

	sym := ev.formalSym(def.formals[0])

	save := parmSave{sym: sym, i: sym.i, i64: sym.i64, f: sym.f,
		s: sym.s, arr: sym.arr}

	sym.i = entryToInt32(val)

	return []parmSave{save}
}

//
// One formal's worth of binding.  Evaluation and type checking happen
// on the way down the recursion, assignment on the way back up once
// the closing bracket has been seen
//

func (ev *evaluator) bindOneParm(def *fnDef, n int, saves *[]parmSave) {

	fp := def.formals[n]
	position := n + 1

	if ev.currByte() == opRparen {
		missingParmError(def.name)
	}

	var val stackEntry
	var writeBack func(*evaluator, stackEntry)

	if fp.byRef {
		val, writeBack = ev.readActualLvalue()
	} else {
		ev.evalExpr()
		val = ev.popEntry()
	}

	checkParmType(def, position, fp.kind, val)

	if n == len(def.formals)-1 {
		if ev.currByte() == opComma {
			tooManyParmsError(def.name)
		}
		runtimeCheck(ev.currByte() == opRparen, EPARMCORP)
		ev.pos++
	} else {
		if ev.currByte() == opRparen {
			missingParmError(def.name)
		}
		runtimeCheck(ev.currByte() == opComma, EPARMCORP)
		ev.pos++

		ev.bindOneParm(def, n+1, saves)
	}

	sym := ev.formalSym(fp)

	*saves = append(*saves, parmSave{sym: sym, i: sym.i, i64: sym.i64,
		f: sym.f, s: sym.s, arr: sym.arr, writeBack: writeBack})

	ev.storeParmValue(sym, fp, val)
}

//
// Type-check an actual against its formal.  This runs as each actual
// is evaluated, so a bad argument is reported by its own position
// even though assignment has not happened yet
//

func checkParmType(def *fnDef, position int, kind int, e stackEntry) {

	switch kind {
	default:
		fatalError("checkParmType: bad formal kind")

	case symFloat, symInt, symInt64:
		if !entryIsNumeric(e) {
			parmNumberError(def.name, position)
		}

	case symString:
		if !entryIsString(e) {
			parmStringError(def.name, position)
		}

	case symIntArray:
		if e.tag != tagIntArray && e.tag != tagIntArrayTemp {
			parmArrayError(def.name, position)
		}

	case symInt64Array:
		if e.tag != tagInt64Array && e.tag != tagInt64ArrayTemp {
			parmArrayError(def.name, position)
		}

	case symFloatArray:
		if e.tag != tagFloatArray && e.tag != tagFloatArrayTemp {
			parmArrayError(def.name, position)
		}

	case symStrArray:
		if e.tag != tagStrArray && e.tag != tagStrArrayTemp {
			parmArrayError(def.name, position)
		}
	}
}

//
// Find or create the global variable standing behind a formal
//

func (ev *evaluator) formalSym(fp formalParm) *symtabNode {

	switch fp.kind {
	case symFloatArray, symIntArray, symInt64Array, symStrArray:
		sym := ev.symbols.lookup(arrayKey(fp.name))
		if sym == nil {
			sym = &symtabNode{name: arrayKey(fp.name), kind: fp.kind}
			ev.symbols.insert(sym)
		}
		return sym
	}

	sym := ev.symbols.findVariable(fp.name)
	if sym == nil {
		sym = ev.symbols.createVariable(fp.name)
	}

	return sym
}

func (ev *evaluator) storeParmValue(sym *symtabNode, fp formalParm, val stackEntry) {

	switch fp.kind {
	case symFloatArray, symIntArray, symInt64Array, symStrArray:
		//
		// A temporary actual is already ours; a named array is copied
		// so the function cannot scribble on the caller's elements
		//
		if entryIsTempArray(val) {
			sym.arr = val.arr
		} else {
			sym.arr = copyArrayDesc(val.arr)
		}

	default:
		ev.storeVarValue(sym, val)
	}
}

func copyArrayDesc(arr *arrayDesc) *arrayDesc {

	out := newArrayDesc(arr.elemTag, arr.dims)

	copy(out.i, arr.i)
	copy(out.i64, arr.i64)
	copy(out.f, arr.f)
	copy(out.s, arr.s)

	return out
}

//
// Read the actual for a RETURN formal.  It must be something
// assignable: a scalar variable, or an indirection through one of
// '?', '!', '|' and '$'.  The current value feeds the formal; the
// writeBack closure carries the final value home when the call
// returns
//

func (ev *evaluator) readActualLvalue() (stackEntry, func(*evaluator, stackEntry)) {

	switch ev.currByte() {
	case opVariable:
		ev.pos++
		name := ev.fetchName()
		runtimeCheck(ev.currByte() != opLparen, ENOTLVALUE)

		sym := ev.symbols.findVariable(name)
		if sym == nil {
			missingVarError(name)
		}

		writeBack := func(ev *evaluator, val stackEntry) {
			ev.storeVarValue(sym, val)
		}

		return symValueEntry(sym), writeBack

	case opQuery:
		ev.pos++
		ev.evalFactor()
		addr := entryToInt32(ev.popNumeric())

		writeBack := func(ev *evaluator, val stackEntry) {
			ev.mem.writeByte(addr, byte(entryToInt32(val)))
		}

		return stackEntry{tag: tagInt, i: int32(ev.mem.readByte(addr))},
			writeBack

	case opPling:
		ev.pos++
		ev.evalFactor()
		addr := entryToInt32(ev.popNumeric())

		writeBack := func(ev *evaluator, val stackEntry) {
			ev.mem.writeWord(addr, entryToInt32(val))
		}

		return stackEntry{tag: tagInt, i: ev.mem.readWord(addr)}, writeBack

	case opBar:
		ev.pos++
		ev.evalFactor()
		addr := entryToInt32(ev.popNumeric())

		writeBack := func(ev *evaluator, val stackEntry) {
			runtimeCheck(entryIsNumeric(val), ETYPENUM)
			ev.mem.writeFloat(addr, entryToFloat(val))
		}

		return stackEntry{tag: tagFloat, f: ev.mem.readFloat(addr)}, writeBack

	case opDollar:
		ev.pos++
		ev.evalFactor()
		addr := entryToInt32(ev.popNumeric())

		writeBack := func(ev *evaluator, val stackEntry) {
			runtimeCheck(entryIsString(val), ETYPESTR)
			ev.mem.writeString(addr, val.s)
		}

		return stackEntry{tag: tagStrTemp, s: ev.mem.readString(addr)},
			writeBack
	}

	runtimeError(ENOTLVALUE)
	panic(nil) // not reached
}

func symValueEntry(sym *symtabNode) stackEntry {

	switch sym.kind {
	default:
		fatalError("symValueEntry: not a scalar")
		panic(nil)

	case symFloat:
		return stackEntry{tag: tagFloat, f: sym.f}
	case symInt:
		return stackEntry{tag: tagInt, i: sym.i}
	case symInt64:
		return stackEntry{tag: tagInt64, i64: sym.i64}
	case symString:
		return stackEntry{tag: tagString, s: sym.s}
	}
}

//
// Undo the binding.  The RETURN finals have to be captured before the
// formals are restored: an actual can be the very variable serving as
// the formal, and the writeback must win over the restore
//

func (ev *evaluator) restoreParameters(saves []parmSave) {

	finals := make([]stackEntry, len(saves))
	for n := range saves {
		if saves[n].writeBack != nil {
			finals[n] = symValueEntry(saves[n].sym)
		}
	}

	for _, sv := range saves {
		sv.sym.i = sv.i
		sv.sym.i64 = sv.i64
		sv.sym.f = sv.f
		sv.sym.s = sv.s
		sv.sym.arr = sv.arr
	}

	for n := range saves {
		if saves[n].writeBack != nil {
			saves[n].writeBack(ev, finals[n])
		}
	}
}
