package main

//
// The operator priority table, indexed by op-code.  A zero entry
// means "not an operator", which is how the expression driver spots
// the end of an expression
//

var optable [256]pendingOp

func initOptable() {

	optable[opPow] = pendingOp{oper: operPow, prio: prioPow}

	optable[opStar] = pendingOp{oper: operMul, prio: prioMul}
	optable[opMatmul] = pendingOp{oper: operMatmul, prio: prioMul}
	optable[opSlash] = pendingOp{oper: operDiv, prio: prioMul}
	optable[opIntDiv] = pendingOp{oper: operIntDiv, prio: prioMul}
	optable[opMod] = pendingOp{oper: operMod, prio: prioMul}

	optable[opPlus] = pendingOp{oper: operAdd, prio: prioAdd}
	optable[opMinus] = pendingOp{oper: operSub, prio: prioAdd}

	optable[opEq] = pendingOp{oper: operEq, prio: prioComp}
	optable[opNe] = pendingOp{oper: operNe, prio: prioComp}
	optable[opGt] = pendingOp{oper: operGt, prio: prioComp}
	optable[opLt] = pendingOp{oper: operLt, prio: prioComp}
	optable[opGe] = pendingOp{oper: operGe, prio: prioComp}
	optable[opLe] = pendingOp{oper: operLe, prio: prioComp}
	optable[opLsl] = pendingOp{oper: operLsl, prio: prioComp}
	optable[opLsr] = pendingOp{oper: operLsr, prio: prioComp}
	optable[opAsr] = pendingOp{oper: operAsr, prio: prioComp}

	optable[opAnd] = pendingOp{oper: operAnd, prio: prioAnd}

	optable[opOr] = pendingOp{oper: operOr, prio: prioOr}
	optable[opEor] = pendingOp{oper: operEor, prio: prioOr}
}

//
// Fillers for dispatch matrix cells that make no semantic sense.
// badCall cells can only be reached if the stack is corrupt, so they
// are interpreter defects; the want* cells are ordinary user type
// errors
//

func badCall(ev *evaluator) {

	fatalError("Operator dispatched on a bad stack entry")
}

func wantNumber(ev *evaluator) {

	runtimeError(ETYPENUM)
}

func wantString(ev *evaluator) {

	runtimeError(ETYPESTR)
}

func wantArray(ev *evaluator) {

	runtimeError(EWANTARRAY)
}

//
// The operator dispatch matrix: operator identifier down, right
// operand's stack tag across.  The columns follow the tag order in
// definitions.go:
//
//   unknown, mark, int, int64, float, string, strtemp,
//   intarray, iatemp, int64array, i64atemp,
//   floatarray, fatemp, strarray, satemp
//
// Each cell is the exact combine function for that operator/right
// type pair; the cell pops the right operand and switches over the
// left operand's tag
//

var opFunctions = [operCount][tagCount]func(*evaluator){

	// Dummy
	{badCall, badCall, badCall, badCall, badCall,
		badCall, badCall, badCall, badCall,
		badCall, badCall, badCall, badCall,
		badCall, badCall},

	// Addition
	{badCall, badCall, evalAddInt, evalAddInt64, evalAddFloat,
		evalAddStr, evalAddStr, evalAddIntArray, evalAddIntArray,
		evalAddInt64Array, evalAddInt64Array, evalAddFloatArray, evalAddFloatArray,
		evalAddStrArray, evalAddStrArray},

	// Subtraction
	{badCall, badCall, evalSubInt, evalSubInt64, evalSubFloat,
		wantNumber, wantNumber, evalSubIntArray, evalSubIntArray,
		evalSubInt64Array, evalSubInt64Array, evalSubFloatArray, evalSubFloatArray,
		wantNumber, wantNumber},

	// Multiplication
	{badCall, badCall, evalMulInt, evalMulInt64, evalMulFloat,
		wantNumber, wantNumber, evalMulIntArray, evalMulIntArray,
		evalMulInt64Array, evalMulInt64Array, evalMulFloatArray, evalMulFloatArray,
		wantNumber, wantNumber},

	// Matrix multiplication.  Note that a temporary on the right is
	// rejected: the right operand of '.' must be a named array
	{wantArray, badCall, wantArray, wantArray, wantArray,
		wantArray, wantArray, evalMatmulInt, wantArray,
		wantArray, wantArray, evalMatmulFloat, wantArray,
		wantArray, wantArray},

	// Division
	{badCall, badCall, evalDivInt, evalDivInt64, evalDivFloat,
		wantNumber, wantNumber, evalDivIntArray, evalDivIntArray,
		evalDivInt64Array, evalDivInt64Array, evalDivFloatArray, evalDivFloatArray,
		wantNumber, wantNumber},

	// Integer division
	{badCall, badCall, evalIntDivInt, evalIntDivInt64, evalIntDivFloat,
		wantNumber, wantNumber, evalIntDivIntArray, evalIntDivIntArray,
		evalIntDivInt64Array, evalIntDivInt64Array, evalIntDivFloatArray, evalIntDivFloatArray,
		wantNumber, wantNumber},

	// Integer remainder
	{badCall, badCall, evalModInt, evalModInt64, evalModFloat,
		wantNumber, wantNumber, evalModIntArray, evalModIntArray,
		evalModInt64Array, evalModInt64Array, evalModFloatArray, evalModFloatArray,
		wantNumber, wantNumber},

	// Raise
	{badCall, badCall, evalPow, evalPow, evalPow,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Logical left shift
	{badCall, badCall, evalLsl, evalLsl, evalLsl,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Logical right shift
	{badCall, badCall, evalLsr, evalLsr, evalLsr,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Arithmetic right shift
	{badCall, badCall, evalAsr, evalAsr, evalAsr,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Equals
	{badCall, badCall, evalEqNum, evalEqNum, evalEqNum,
		evalEqStr, evalEqStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Not equals
	{badCall, badCall, evalNeNum, evalNeNum, evalNeNum,
		evalNeStr, evalNeStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Greater than
	{badCall, badCall, evalGtNum, evalGtNum, evalGtNum,
		evalGtStr, evalGtStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Less than
	{badCall, badCall, evalLtNum, evalLtNum, evalLtNum,
		evalLtStr, evalLtStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Greater than or equal to
	{badCall, badCall, evalGeNum, evalGeNum, evalGeNum,
		evalGeStr, evalGeStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Less than or equal to
	{badCall, badCall, evalLeNum, evalLeNum, evalLeNum,
		evalLeStr, evalLeStr, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Logical and
	{badCall, badCall, evalAndNum, evalAndNum, evalAndNum,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Logical or
	{badCall, badCall, evalOrNum, evalOrNum, evalOrNum,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},

	// Logical exclusive or
	{badCall, badCall, evalEorNum, evalEorNum, evalEorNum,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber, wantNumber, wantNumber,
		wantNumber, wantNumber},
}

//
// Apply a pending operator: look up the combine function for the
// operator and the runtime type of the right operand (stack top) and
// call it
//

func (ev *evaluator) applyOper(op pendingOp) {

	basicAssert(!op.mark, "Tried to apply the operator stack sentinel")
	basicAssert(op.oper > operNop && op.oper < operCount, "Bad operator id")

	ev.numOperators++

	opFunctions[op.oper][ev.topTag()](ev)
}
