package main

import (
	"fmt"
	"strings"

	"github.com/danswartzendruber/avl"
)

//
// The symbol table: one AVL tree ordered by name.  A set of wrapper
// routines hides the AVL interface from the evaluator code, the same
// way the statement tree is handled in the interpreter this one grew
// out of.  Scalars, arrays and functions share the tree; arrays are
// keyed with a "()" suffix and functions with their "FN" prefix, so
// A, A() and FNA are three independent names, which is what BASIC
// wants
//

//
// An empty tree is a nil root pointer; the avl package's insert and
// lookup routines take it from there
//

func newSymbolTable() *symbolTable {

	return &symbolTable{}
}

func cmpSymNameKey(key any, node any) int {

	return strings.Compare(key.(string), node.(*symtabNode).name)
}

func cmpSymNameNode(node1, node2 any) int {

	return strings.Compare(node1.(*symtabNode).name, node2.(*symtabNode).name)
}

func (st *symbolTable) insert(sym *symtabNode) {

	p := avl.AvlTreeInsert(&st.root, &sym.avl, sym, cmpSymNameNode)
	if p != nil {
		fatalError(fmt.Sprintf("Symbol %q already in tree???", sym.name))
	}
}

func (st *symbolTable) lookup(name string) *symtabNode {

	p := avl.AvlTreeLookup(st.root, name, cmpSymNameKey)
	if p != nil {
		return p.(*symtabNode)
	} else {
		return nil
	}
}

func (st *symbolTable) firstInOrder() *symtabNode {

	p := avl.AvlTreeFirstInOrder(st.root)
	if p != nil {
		return p.(*symtabNode)
	} else {
		return nil
	}
}

func (st *symbolTable) nextInOrder(sym *symtabNode) *symtabNode {

	p := avl.AvlTreeNextInOrder(&sym.avl)
	if p != nil {
		return p.(*symtabNode)
	} else {
		return nil
	}
}

func (st *symbolTable) clear() {

	st.root = nil
}

//
// A name's trailing sigil fixes its type: %% is a 64-bit integer,
// % a 32-bit integer, $ a string, nothing means float
//

func scalarKind(name string) int {

	switch {
	case strings.HasSuffix(name, "%%"):
		return symInt64
	case strings.HasSuffix(name, "%"):
		return symInt
	case strings.HasSuffix(name, "$"):
		return symString
	}

	return symFloat
}

func arrayKindFor(kind int) int {

	switch kind {
	default:
		fatalError("arrayKindFor: bad scalar kind")
		panic(nil)

	case symFloat:
		return symFloatArray
	case symInt:
		return symIntArray
	case symInt64:
		return symInt64Array
	case symString:
		return symStrArray
	}
}

func arrayKey(name string) string {

	return name + "()"
}

func fnKey(name string) string {

	return "FN" + name
}

//
// Find a scalar variable, creating it (zero valued) on first
// assignment.  Expression-side lookups use findVariable and raise
// the missing-variable error themselves, since reading a variable
// that was never assigned is an error while assigning one is how
// variables come to exist
//

func (st *symbolTable) findVariable(name string) *symtabNode {

	return st.lookup(name)
}

func (st *symbolTable) createVariable(name string) *symtabNode {

	sym := &symtabNode{name: name, kind: scalarKind(name)}

	st.insert(sym)

	return sym
}

func (st *symbolTable) findArray(name string) *symtabNode {

	return st.lookup(arrayKey(name))
}

//
// DIM: create an array symbol with the given per-dimension extents
// (the declared bound plus one, since BASIC subscripts run 0..N)
//

func (st *symbolTable) createArray(name string, extents []int32) *symtabNode {

	if st.findArray(name) != nil {
		runtimeErrorf("Array '%s' has already been dimensioned", name)
	}

	kind := arrayKindFor(scalarKind(name))

	sym := &symtabNode{name: arrayKey(name), kind: kind}
	sym.arr = newArrayDesc(elemTagFor(kind), extents)

	st.insert(sym)

	return sym
}

func (st *symbolTable) findFunction(name string) *symtabNode {

	return st.lookup(fnKey(name))
}

func (st *symbolTable) defineFunction(def *fnDef) *symtabNode {

	//
	// Redefinition replaces the old body
	//

	sym := st.findFunction(def.name)
	if sym == nil {
		sym = &symtabNode{name: fnKey(def.name), kind: symFunction}
		st.insert(sym)
	}

	sym.def = def

	return sym
}

func elemTagFor(kind int) int {

	switch kind {
	default:
		fatalError("elemTagFor: bad array kind")
		panic(nil)

	case symFloatArray:
		return tagFloat
	case symIntArray:
		return tagInt
	case symInt64Array:
		return tagInt64
	case symStrArray:
		return tagString
	}
}

func newArrayDesc(elemTag int, extents []int32) *arrayDesc {

	runtimeCheck(len(extents) > 0 && len(extents) <= maxDimensions, EDIMCOUNT)

	count := int64(1)
	for _, e := range extents {
		runtimeCheck(e > 0, ERANGE)
		count *= int64(e)
		runtimeCheck(count <= maxArrayElements, ERANGE)
	}

	arr := &arrayDesc{
		elemTag: elemTag,
		dims:    append([]int32(nil), extents...),
		count:   int32(count),
	}

	switch elemTag {
	case tagInt:
		arr.i = make([]int32, count)
	case tagInt64:
		arr.i64 = make([]int64, count)
	case tagFloat:
		arr.f = make([]float64, count)
	case tagString:
		arr.s = make([][]byte, count)
	}

	return arr
}

//
// Read a scalar variable's value onto the value stack
//

func (ev *evaluator) pushVarValue(sym *symtabNode) {

	switch sym.kind {
	default:
		fatalError("pushVarValue: not a scalar")

	case symFloat:
		ev.pushFloat(sym.f)
	case symInt:
		ev.pushInt(sym.i)
	case symInt64:
		ev.pushInt64(sym.i64)
	case symString:
		ev.pushString(sym.s)
	}
}

//
// Store a stack entry into a scalar variable, applying the usual
// numeric coercions.  Numeric to string (or back) is a type error
//

func (ev *evaluator) storeVarValue(sym *symtabNode, e stackEntry) {

	switch sym.kind {
	default:
		fatalError("storeVarValue: not a scalar")

	case symFloat:
		runtimeCheck(entryIsNumeric(e), ETYPENUM)
		sym.f = entryToFloat(e)

	case symInt:
		runtimeCheck(entryIsNumeric(e), ETYPENUM)
		sym.i = entryToInt32(e)

	case symInt64:
		runtimeCheck(entryIsNumeric(e), ETYPENUM)
		sym.i64 = entryToInt64(e)

	case symString:
		runtimeCheck(entryIsString(e), ETYPESTR)
		if e.tag == tagStrTemp {
			sym.s = e.s
		} else {
			sym.s = copyString(e.s)
		}
	}
}

func entryIsNumeric(e stackEntry) bool {

	return e.tag == tagInt || e.tag == tagInt64 || e.tag == tagFloat
}

func entryIsString(e stackEntry) bool {

	return e.tag == tagString || e.tag == tagStrTemp
}
