package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danswartzendruber/liner"
	"github.com/tklauser/go-sysconf"
	"golang.org/x/term"
)

const clearScreenSeq = "\033[H\033[2J"

const minWindowCols = 40

//
// Ensure we are connected to a tty!
//

func checkTerminal() {

	if !term.IsTerminal(2) {
		crash("")
	}

	if !term.IsTerminal(0) {
		crash("Standard input must be a terminal")
	}

	if !term.IsTerminal(1) {
		crash("Standard output must be a terminal")
	}
}

//
// Read terminal geometry.  Re-read on SIGWINCH
//

func setupWindow() {

	var err error

	g.window.cols, g.window.rows, err = term.GetSize(0)
	if err != nil {
		crash("Unable to read terminal parameters")
	}

	if g.window.cols < minWindowCols {
		crash("Terminal width must be >= 40 characters")
	}
}

func setupLiner() *liner.State {

	l := liner.NewLiner()

	l.SetMultiLineMode(false)

	return l
}

//
// Restore terminal state.  NB: we cannot call (or cause to be
// called) crash(), as that would recurse
//

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

//
// Read a line from the terminal, with editing and history
//

func readLine(l *liner.State, prompt string, history bool) (string, bool) {

	s, err := l.Prompt(prompt)

	//
	// Annoyingly, a non-nil error here can be totally okay.  ^D at
	// the start of a line shows up as EOF, which means quit; ^C at
	// the prompt aborts the line but not the program, so we crawl
	// back out to the top of the loop
	//

	if err != nil {
		switch {
		default:
			crash(fmt.Sprintf("readLine error: %q\n", err))

		case err == io.EOF:
			return "", true

		case err == liner.ErrPromptAborted:
			exitToPrompt()
		}
	}

	runtimeCheck(len(s) <= maxLineLen, EBADEXPR)

	if history && strings.TrimSpace(s) != "" {
		l.AppendHistory(s)
	}

	return s, false
}

func clearScreen() {

	fmt.Print(clearScreenSeq)
	for i := 0; i < g.window.rows; i++ {
		fmt.Println()
	}
}

func printVersionInfo() {

	fmt.Printf("BBC BASIC expression calculator version %s\n", VERSION)
}

//
// Print a fatal message and abort the process.  We write to standard
// error, since the user may have redirected standard output, and we
// would not see it then.  Also, dup os.Stdout, then close os.Stdout
// and os.Stderr in case another goroutine is writing to the terminal.
// Make sure to clean up the liner, so the terminal state is sane
//

func crash(msg string) {

	var w *os.File

	cleanupLiner(&g.parserLiner)

	if msg != "" {
		fd, err := syscall.Dup(int(os.Stderr.Fd()))
		if err == nil {
			os.Stdout.Close()
			os.Stderr.Close()
			w = os.NewFile(uintptr(fd), "stdout on new fd")
		} else {
			w = os.Stderr
		}

		fmt.Fprintln(w, msg)
	}

	os.Exit(1)
}

//
// CPU and memory statistics for the STATS command
//

func printStatistics() {

	var mem runtime.MemStats

	printCpuUsage()

	runtime.GC()
	runtime.ReadMemStats(&mem)
	fmt.Printf("%dMB memory used\n", convertToMB(mem.HeapAlloc))

	fmt.Printf("%d %s evaluated, %d %s applied\n",
		g.ev.numExpressions, pluralize("expression", g.ev.numExpressions),
		g.ev.numOperators, pluralize("operator", g.ev.numOperators))
}

func printCpuUsage() {

	elapsed := time.Since(g.loginTime)
	utime, stime := getCPUInfo(1)

	fmt.Printf("CPU Usage: elapsed = %s / user = %s / system = %s\n",
		formatCPUTime(int64(elapsed.Seconds())),
		formatCPUTime(utime-s.utime), formatCPUTime(stime-s.stime))
}

func formatCPUTime(t int64) string {

	var h, m int64

	if t >= 3600 {
		h = t / 3600
		t = t % 3600
	}

	if t >= 60 {
		m = t / 60
		t = t % 60
	}

	return fmt.Sprintf("%02d:%02d:%02d", h, m, t)
}

func getCPUInfo(divisor int64) (int64, int64) {

	clktck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil {
		panic(err)
	} else {
		clktck /= divisor
	}

	contents, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		panic(err)
	}

	fields := strings.Fields(string(contents))

	utime, err := strconv.ParseInt(fields[13], 10, 64)
	if err != nil {
		panic(err)
	}

	stime, err := strconv.ParseInt(fields[14], 10, 64)
	if err != nil {
		panic(err)
	}

	return utime / clktck, stime / clktck
}

func convertToMB(num uint64) uint64 {

	const MB = 1024 * 1024

	return (num + MB - 1) / MB
}

func pluralize(str string, num int64) string {

	//
	// Oddity: 0 is considered plural
	//

	if num != 1 {
		str += "s"
	}

	return str
}
