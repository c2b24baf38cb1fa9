package main

import (
	"fmt"
	"runtime"
	"strings"
)

//
// Manifest constants for the evaluator's error messages.  NB: only
// messages with an associated classic error number will be present in
// the errorMap; messages raised through the formatting helpers below
// carry context (a name, an index, a position) and have no number
//

const (
	ETYPENUM     = "Type mismatch: number wanted"
	ETYPESTR     = "Type mismatch: string wanted"
	EWANTARRAY   = "Type mismatch: array wanted"
	EARRAYTYPE   = "Type mismatch between arrays"
	EMATDIMS     = "Arrays can have at most two dimensions here"
	ERANGE       = "Number is out of range"
	EDIVZERO     = "Division by zero"
	ESTRINGLEN   = "String is too long"
	EOPSTACK     = "Expression is too complex"
	ESTACKFULL   = "Evaluation stack is full"
	EADDRESS     = "Address is out of range"
	ENODIMS      = "Array has not been dimensioned"
	EDIMCOUNT    = "Wrong number of array subscripts"
	EPARMCORP    = "',' or ')' expected"
	ENOTLVALUE   = "RETURN parameter must be a variable or memory reference"
	EDEEPNEST    = "Functions are nested too deeply"
	EESCAPE      = "Escape"
	EBADEXPR     = "Syntax error in expression"
	EMISSINGRPAR = "')' missing"
)

func initErrors() {

	errorMap = make(map[string]int16)

	errorMap[ETYPENUM] = 6
	errorMap[ETYPESTR] = 6
	errorMap[EWANTARRAY] = 14
	errorMap[EARRAYTYPE] = 14
	errorMap[EMATDIMS] = 14
	errorMap[ERANGE] = 20
	errorMap[EDIVZERO] = 18
	errorMap[ESTRINGLEN] = 19
	errorMap[EESCAPE] = 17
	errorMap[ENODIMS] = 14
	errorMap[EDIMCOUNT] = 15
	errorMap[EADDRESS] = 8
}

//
// We return -1 on a failed lookup, meaning the message has no classic
// error number
//

func getErrorNo(msg string) int16 {

	err, ok := errorMap[msg]
	if ok {
		return err
	} else {
		return -1
	}
}

//
// A couple of handy 'assert' functions
//

func basicAssert(chk bool, msg string) {

	if !chk {
		fatalError(msg)
	}
}

func runtimeCheck(chk bool, msg string) {

	if !chk {
		runtimeError(msg)
	}
}

//
// User-facing errors.  These unwind (via panic) to the recovery point
// installed by call() in basic.go, which resets the evaluator's
// stacks before returning to the prompt.  Nothing in the expression
// core catches these itself
//

func runtimeError(msg string) {

	panic(&runtimeErrorInfo{msg: strings.TrimSuffix(msg, "\n")})
}

func runtimeErrorf(f string, args ...any) {

	runtimeError(fmt.Sprintf(f, args...))
}

//
// Errors raised by the interpreter itself, almost always a
// basicAssert failure.  These indicate an interpreter defect, not a
// user mistake, so we record the filename and line number of our
// caller before calling panic
//

func fatalError(msg string) {

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		crash("Unable to find caller frame!\n")
	}

	msg = strings.TrimRight(msg, "\n")

	panic(&basicErrorInfo{msg, file, line})
}

//
// Bail out to the prompt without printing anything
//

func exitToPrompt() {

	panic(&crawloutException{continuable: true})
}

//
// Context-carrying error helpers.  The classic messages are fixed
// strings; these are the few places where naming the offender is
// worth breaking that pattern
//

func badIndexError(name string, index int32) {

	runtimeErrorf("Array index %d is out of range for '%s'", index, name)
}

func missingVarError(name string) {

	runtimeErrorf("Variable '%s' has not been created", name)
}

func missingFnError(name string) {

	runtimeErrorf("Function '%s' has not been defined", name)
}

func tooManyParmsError(name string) {

	runtimeErrorf("Too many parameters for '%s'", name)
}

func missingParmError(name string) {

	runtimeErrorf("Not enough parameters for '%s'", name)
}

func parmNumberError(name string, position int) {

	runtimeErrorf("Parameter %d of '%s' should be a number", position, name)
}

func parmStringError(name string, position int) {

	runtimeErrorf("Parameter %d of '%s' should be a string", position, name)
}

func parmArrayError(name string, position int) {

	runtimeErrorf("Parameter %d of '%s' is the wrong kind of array",
		position, name)
}
