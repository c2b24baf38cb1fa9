package main

import (
	"fmt"
)

func printHelp() {

	fmt.Println("Enter an expression to evaluate it, or one of:")
	fmt.Println()
	fmt.Println("  <lvalue> = <expr>       assign (lvalue: variable, array")
	fmt.Println("                          element, a() whole array, or ?/!/|/$)")
	fmt.Println("  PRINT <expr>[,<expr>]   evaluate and print")
	fmt.Println("  DIM a(n[,m...])         dimension an array")
	fmt.Println("  DEF FNname(args)=<expr> define a function")
	fmt.Println("  DUMP <expr>             show the compiled form of an expression")
	fmt.Println("  VARS                    list variables, arrays and functions")
	fmt.Println("  NEW                     discard all variables")
	fmt.Println("  LEGACY                  toggle 32-bit wraparound integer maths")
	fmt.Println("  TRACE                   toggle stack traces on errors")
	fmt.Println("  STATS                   print execution statistics")
	fmt.Println("  HELP                    this text")
	fmt.Println("  QUIT                    leave (also EXIT, BYE, or ^D)")
}
