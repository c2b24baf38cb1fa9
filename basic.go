package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"
)

//
// Tricky: init is called under the hood by the GO runtime when
// we fire up, so there are no visible calls to it!  Only the pure
// table setup lives here; terminal state is deliberately left to
// main, so the evaluator can be driven without a tty
//

func init() {

	initErrors()

	initOptable()

	initFactorTable()
}

func main() {

	//
	// Close the Liner instance on the way out, to make sure we end up
	// back in normal (cooked) terminal mode
	//

	defer func() {
		cleanupLiner(&g.parserLiner)
	}()

	g.ev = newEvaluator()

	for _, arg := range os.Args[1:] {
		switch arg {
		default:
			crash("Usage: bbcalc [-legacy]")

		case "-legacy":
			g.ev.legacyIntMaths = true
		}
	}

	checkTerminal()

	setupWindow()

	g.parserLiner = setupLiner()

	g.loginTime = time.Now()
	s.utime, s.stime = getCPUInfo(1)

	clearScreen()

	printVersionInfo()

	//
	// Run the signal handling code in a goroutine
	//

	go sigHdlr()

	//
	// Loop forever, or until we quit
	//

	for !g.exiting {
		call(func() {
			line, eof := readLine(g.parserLiner, myPrompt, true)
			if eof {
				g.exiting = true
				return
			}

			executeLine(g.ev, line)
		})

		//
		// An error unwind can leave partial operands behind; start
		// every line from a clean slate
		//

		g.ev.resetStacks()
	}
}

//
// A fresh evaluator with its own stacks, memory image and symbol
// table.  The tests build these by the dozen
//

func newEvaluator() *evaluator {

	return &evaluator{
		mem:     newMemoryImage(),
		symbols: newSymbolTable(),
	}
}

func writeGoroutineStacks() {

	name := "goroutines-stacks"
	mode := (os.O_CREATE | os.O_WRONLY)

	dumpFile, err := os.OpenFile(name, mode, 0644)
	if err != nil {
		iErr := err.(*os.PathError)
		fmt.Fprintf(os.Stderr, "Unable to open %s (%s)\n",
			name, iErr.Err.Error())
		return
	}

	_ = pprof.Lookup("goroutine").WriteTo(dumpFile, 2)

	m := fmt.Sprintf("Dumping goroutine stacks to %v and exiting", name)

	crash(m)
}

func sigHdlr() {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGQUIT)
	signal.Notify(ch, syscall.SIGINT)
	signal.Notify(ch, syscall.SIGWINCH)

	for {
		sig := <-ch

		switch sig {

		default:
			crash(fmt.Sprintf("Unexpected signal %d", sig))

		case syscall.SIGWINCH:
			setupWindow()

		case syscall.SIGQUIT:
			writeGoroutineStacks() // does not return

		case syscall.SIGINT:
			g.ev.interrupted = true
		}
	}
}

//
// This procedure is called by the panic deferred recovery function.
// It walks back the right number of frames to find the caller who
// caused the panic.  Four cases here: implicit calls to panic by the
// Go runtime code, a call to fatalError, a call to runtimeError or
// a crawlout exception (used solely to exit quietly to the prompt).
// One confusing item: it seems impossible to cleanly find the caller
// of panic in the case of internal (Go runtime) generated calls,
// since there can be one or more support routines prior to that.
// Ugly: the best thing I've been able to come up with is to scan the
// call stack, looking for a function named 'runtime.gopanic', and
// picking the next non-runtime frame
//

func decodePanic(e any) {

	var frame runtime.Frame
	var more bool
	var panicSeen bool
	var panicFrame runtime.Frame
	var panicCount int

	switch e := e.(type) {
	default:
		//
		// We got some kind of internally generated GO panic, so we
		// have to grovel for the code that panicked, not the caller
		// of panic, since that is somewhere inside GO
		//

		pcs := make([]uintptr, 99)

		_ = pcs[:runtime.Callers(1, pcs)]

		frames := runtime.CallersFrames(pcs)

		for {
			frame, more = frames.Next()
			if !more {
				break
			}

			if frame.Function == "runtime.gopanic" {
				panicSeen = true
				panicCount++
			} else if panicSeen {
				if !strings.HasPrefix(frame.Function, "runtime.") {
					panicFrame = frame
					panicSeen = false
				}
			}
		}

		if panicCount == 0 { // impossible?
			crash("Unable to locate panic caller")
		}

		fmt.Printf("%s at %s line %d\n", e, filepath.Base(panicFrame.File),
			panicFrame.Line)

		debug.PrintStack()

	case *crawloutException:
		//
		// A quiet exit back to the prompt; nothing to report
		//

	case *basicErrorInfo:
		fmt.Printf("%q at %s line %d\n", e.msg, filepath.Base(e.file), e.line)

		debug.PrintStack()

	case *runtimeErrorInfo:
		if no := getErrorNo(e.msg); no > 0 {
			fmt.Printf("%s (error %d)\n", e.msg, no)
		} else {
			fmt.Println(e.msg)
		}

		if g.traceStack {
			debug.PrintStack()
		}
	}
}

//
// Wrapper routine for a function.  We need this so that panic calls
// can be caught and decoded before returning to our caller
//

func call(f func()) {

	defer func() {
		err := recover()
		if err != nil {
			decodePanic(err)
		}
	}()

	f()
}
