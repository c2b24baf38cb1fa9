package main

import (
	"github.com/danswartzendruber/avl"
	"github.com/danswartzendruber/liner"
	"time"
)

//
// Constants
//

const VERSION = "1.0.2"

const myPrompt = "> "

const maxLineLen = 1024

//
// The largest string the interpreter will build.  Concatenation past
// this limit is an error, not a truncation
//

const maxStringLen = 65536

//
// Limits for the two evaluation stacks.  The value stack is where
// operands and results live; the operator stack holds pending binary
// operators plus one scope sentinel per active function call, so it
// has to be at least as deep as the recursion limit
//

const valueStackMax = 2048
const operStackMax = 2048

const fnRecursionMax = 1000

const maxDimensions = 8
const maxArrayElements = (16 * 1024 * 1024)

//
// Size of the raw memory image addressable by the indirection
// operators, and the location of the teletext frame buffer window
// carved out of it.  Offsets inside the window are redirected to the
// 25x40 cell frame
//

const memorySize = 0x10000
const mode7Base = 0x7C00
const mode7WindowSize = 1024
const mode7Rows = 25
const mode7Cols = 40

//
// The smallest float64 magnitude that no longer fits in an int64.
// Used to decide when integer multiplication has to fall back to
// floating point
//

const maxInt64Float = 9223372036854775808.0

//
// BASIC truth values
//

const basTrue int32 = -1
const basFalse int32 = 0

//
// Value stack type tags.  The order matters: the operator dispatch
// matrix in optable.go is indexed by the tag of the right operand.
// tagMark is the scope sentinel pushed between nested evaluation
// scopes so a runaway expression cannot eat its caller's operands
//

const (
	tagUnknown = iota
	tagMark
	tagInt
	tagInt64
	tagFloat
	tagString
	tagStrTemp
	tagIntArray
	tagIntArrayTemp
	tagInt64Array
	tagInt64ArrayTemp
	tagFloatArray
	tagFloatArrayTemp
	tagStrArray
	tagStrArrayTemp

	tagCount
)

//
// Operator identifiers.  These index the rows of the dispatch matrix
//

const (
	operNop = iota
	operAdd
	operSub
	operMul
	operMatmul
	operDiv
	operIntDiv
	operMod
	operPow
	operLsl
	operLsr
	operAsr
	operEq
	operNe
	operGt
	operLt
	operGe
	operLe
	operAnd
	operOr
	operEor

	operCount
)

//
// Operator priority classes, highest first.  The shift operators
// share the relational class, which is what makes the relational
// chaining restriction in the expression driver behave the way old
// BASICs expect
//

const (
	prioPow  = 7
	prioMul  = 6
	prioAdd  = 5
	prioComp = 4
	prioAnd  = 3
	prioOr   = 2
)

//
// Op-codes for the compact expression stream produced by encode.go
// and consumed by the factor evaluator.  Operator op-codes are always
// one byte; operand op-codes carry their data inline (see encode.go
// for the exact layouts)
//

const (
	opEnd byte = iota
	opIntZero
	opIntOne
	opSmallConst
	opIntConst
	opInt64Const
	opFloatZero
	opFloatOne
	opFloatConst
	opStringCon
	opQStringCon
	opVariable
	opArrayRef
	opFnCall
	opLparen
	opRparen
	opComma
	opQuery
	opPling
	opDollar
	opBar
	opPlus
	opMinus
	opStar
	opMatmul
	opSlash
	opIntDiv
	opMod
	opPow
	opLsl
	opLsr
	opAsr
	opEq
	opNe
	opLt
	opGt
	opLe
	opGe
	opAnd
	opOr
	opEor

	opLastCode
)

//
// Symbol kinds.  A name's sigil fixes its kind for life, so scalar
// and array flavors of the same name are distinct entries
//

const (
	symFloat = iota
	symInt
	symInt64
	symString
	symFloatArray
	symIntArray
	symInt64Array
	symStrArray
	symFunction
)

//
// Type definitions
//

//
// A single value stack entry.  Exactly one of the payload fields is
// meaningful, selected by the tag; the tag is always consulted before
// any payload access
//

type stackEntry struct {
	tag int
	i   int32
	i64 int64
	f   float64
	s   []byte
	arr *arrayDesc
}

type valueStack struct {
	entries []stackEntry
}

//
// A pending binary operator on the operator stack.  The scope base is
// a real entry with the mark flag set, never a magic operator number
//

type pendingOp struct {
	oper int
	prio int
	mark bool
}

//
// A whole-array value.  Element storage is one flat row-major slice
// per element kind; only the slice matching elemTag is allocated.
// Whether the array is a temporary (owned by the evaluator, safe to
// mutate in place) travels in the stack entry tag, not here
//

type arrayDesc struct {
	elemTag int
	dims    []int32
	count   int32
	i       []int32
	i64     []int64
	f       []float64
	s       [][]byte
}

//
// A compiled expression: the op-code stream plus the side cache of
// resolved variable references, keyed by the op-code's stream offset.
// The cache replaces the old BASIC interpreter trick of rewriting the
// op-code in place once a variable's identity is known
//

type program struct {
	code []byte
	refs map[int]*symtabNode
}

//
// A symbol table node.  Scalars store their value directly; arrays
// hang an arrayDesc off the node once DIMmed; functions carry their
// definition
//

type symtabNode struct {
	avl  avl.AvlNode
	name string
	kind int
	i    int32
	i64  int64
	f    float64
	s    []byte
	arr  *arrayDesc
	def  *fnDef
}

//
// A user defined function: formal parameter list plus the compiled
// body expression.  text keeps the source for listing
//

type fnDef struct {
	name    string
	formals []formalParm
	stmts   []string
	body    *program
	text    string
}

type formalParm struct {
	name  string
	kind  int
	byRef bool
}

//
// What the parameter binder saves so a formal's prior value can be
// put back when the call returns, and (for RETURN parameters) how to
// write the final value back to the caller's storage
//

type parmSave struct {
	sym       *symtabNode
	i         int32
	i64       int64
	f         float64
	s         []byte
	arr       *arrayDesc
	writeBack func(ev *evaluator, val stackEntry)
}

//
// The raw memory image the indirection operators address, with the
// teletext frame carve-out
//

type memoryImage struct {
	bytes      []byte
	mode7Frame [mode7Rows][mode7Cols]byte
	mode7Fb    int32
}

//
// Panic payloads for the error machinery in errors.go
//

type crawloutException struct {
	continuable bool
}

type runtimeErrorInfo struct {
	msg string
}

type basicErrorInfo struct {
	msg  string
	file string
	line int
}

//
// The evaluator context.  Everything the expression core touches
// lives here, so independent evaluators can coexist (the tests rely
// on that).  Evaluation never touches package-level mutable state
//

type evaluator struct {
	stack   valueStack
	opstack []pendingOp
	prog    *program
	pos     int
	mem     *memoryImage
	symbols *symbolTable
	fnDepth int

	legacyIntMaths bool
	interrupted    bool

	numExpressions int64
	numOperators   int64
}

//
// The symbol table proper: an AVL tree ordered by name, so the VARS
// command can list in order without sorting
//

type symbolTable struct {
	root *avl.AvlNode
}

type window struct {
	rows int
	cols int
}

//
// Interactive shell state.  This is REPL plumbing, not evaluator
// state; the evaluator itself never reads it
//

var g struct {
	ev          *evaluator
	parserLiner *liner.State
	window      window
	loginTime   time.Time
	exiting     bool
	traceStack  bool
}

//
// Runtime statistics for the STATS command
//

var s struct {
	utime int64
	stime int64
}

//
// Maps error messages to the classic numeric error codes
//

var errorMap map[string]int16
