package main

//
// The expression driver: an operator-precedence loop over the
// compact op-code stream.  The code is optimised for the two common
// shapes, a lone factor and '<value> <op> <value>'; anything bigger
// engages the operator stack.
//
// There is a complication involving the relational operators.  Old
// BASICs do not let two of them chain: 'x>1=-1' means "evaluate
// 'x>1'", with the '=-1' left over for the caller to deal with as a
// separate statement.  The rule is actually a little stranger than
// simple adjacency: a second relational is rejected whenever the
// reduction triggered by it runs into an earlier relational still
// pending on the operator stack.  When that happens the driver
// drains what it has and returns with the stream positioned at the
// second relational, which it never consumes
//

func (ev *evaluator) evalExpr() {

	ev.numExpressions++

	factorTable[ev.currByte()](ev)

	lastop := optable[ev.currByte()]
	if lastop.prio == 0 {
		return // a lone factor, nothing more to do
	}

	ev.pos++ // operator op-codes are always one byte
	factorTable[ev.currByte()](ev)

	thisop := optable[ev.currByte()]
	if thisop.prio == 0 {
		// The whole expression was '<value> <op> <value>'
		ev.applyOper(lastop)
		return
	}

	//
	// Three or more factors, so bring out the heavy machinery
	//

	ev.pushOperMark()

	for {
		if thisop.prio > lastop.prio {
			//
			// This operator binds tighter than the pending one:
			// postpone the pending operator until this one's right
			// operand is complete
			//
		} else if thisop.prio == prioComp {
			//
			// Reduce, but stop dead if we run into a pending
			// relational: that is the chaining restriction
			//
			for lastop.prio >= thisop.prio && lastop.prio != prioComp {
				ev.applyOper(lastop)
				lastop = ev.popOper()
			}
			if lastop.prio == prioComp {
				break
			}
		} else {
			for {
				ev.applyOper(lastop)
				lastop = ev.popOper()
				if lastop.prio < thisop.prio {
					break
				}
			}
		}

		ev.pushOper(lastop)
		lastop = thisop

		ev.pos++
		factorTable[ev.currByte()](ev)

		thisop = optable[ev.currByte()]
		if thisop.prio == 0 {
			break
		}
	}

	//
	// Clear the operator stack back to our own scope base.  The
	// relational early-exit arrives here too, with the first
	// relational still held in lastop and the second one left
	// unconsumed in the stream
	//

	for !lastop.mark {
		ev.applyOper(lastop)
		lastop = ev.popOper()
	}
}

//
// Evaluate a single factor where the language wants a factor rather
// than a full expression.  The operator stack must come back
// balanced; if it does not, the expression was malformed
//

func (ev *evaluator) evalFactor() {

	depth := ev.operDepth()

	factorTable[ev.currByte()](ev)

	runtimeCheck(ev.operDepth() == depth, EBADEXPR)
}

//
// Convenience drivers: evaluate an expression and coerce the result.
// The statement executor and the indirection code are the main
// customers
//

func (ev *evaluator) exprInt32() int32 {

	ev.evalExpr()

	return entryToInt32(ev.popNumeric())
}

func (ev *evaluator) exprInt64() int64 {

	ev.evalExpr()

	return entryToInt64(ev.popNumeric())
}

func (ev *evaluator) exprFloat() float64 {

	ev.evalExpr()

	return entryToFloat(ev.popNumeric())
}

func (ev *evaluator) exprString() []byte {

	ev.evalExpr()

	return ev.popStringEntry().s
}

//
// Run a compiled expression from the top and hand back the result.
// The caller decides what to make of any unconsumed input (the
// relational quirk above is the one legitimate way to have some)
//

func (ev *evaluator) evalTop(p *program) stackEntry {

	ev.prog = p
	ev.pos = 0

	ev.evalExpr()

	return ev.popEntry()
}

//
// Stream access helpers.  Running off the end reads as the stream
// terminator, so a truncated stream fails cleanly instead of
// panicking
//

func (ev *evaluator) currByte() byte {

	if ev.prog == nil || ev.pos >= len(ev.prog.code) {
		return opEnd
	}

	return ev.prog.code[ev.pos]
}

func (ev *evaluator) atEnd() bool {

	return ev.currByte() == opEnd
}

func (ev *evaluator) fetchByte() byte {

	b := ev.currByte()
	ev.pos++

	return b
}

func (ev *evaluator) fetchUint16() int {

	lo := int(ev.fetchByte())
	hi := int(ev.fetchByte())

	return lo | hi<<8
}

func (ev *evaluator) fetchUint32() uint32 {

	var v uint32

	for n := 0; n < 4; n++ {
		v |= uint32(ev.fetchByte()) << (8 * n)
	}

	return v
}

func (ev *evaluator) fetchUint64() uint64 {

	var v uint64

	for n := 0; n < 8; n++ {
		v |= uint64(ev.fetchByte()) << (8 * n)
	}

	return v
}

func (ev *evaluator) fetchName() string {

	length := int(ev.fetchByte())

	basicAssert(ev.pos+length <= len(ev.prog.code), "Name runs off code stream")

	name := string(ev.prog.code[ev.pos : ev.pos+length])
	ev.pos += length

	return name
}

func (ev *evaluator) fetchBytes(length int) []byte {

	basicAssert(ev.pos+length <= len(ev.prog.code), "Data runs off code stream")

	b := ev.prog.code[ev.pos : ev.pos+length]
	ev.pos += length

	return b
}
