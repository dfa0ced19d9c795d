// Package log provides coloured console logging and connection logging.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

func init() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		color.NoColor = true
	}
}

var (
	red    = color.New(color.FgRed).FprintfFunc()
	blue   = color.New(color.FgBlue).FprintfFunc()
	yellow = color.New(color.FgYellow).FprintfFunc()
)

// Logger writes prefixed messages to stderr. Verbose messages are dropped
// unless the logger was created with verbose set. A nil *Logger discards
// everything.
type Logger struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewLogger creates a logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return &Logger{out: os.Stderr, verbose: verbose}
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	l.print(red, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	l.print(blue, "[+] "+format, a...)
}

// VerboseMsg prints a debug message in yellow if verbose output is on.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.print(yellow, "[v] "+format+"\n", a...)
}

// Verbose reports whether verbose output is on.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

func (l *Logger) print(f func(io.Writer, string, ...interface{}), format string, a ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.out, format, a...)
}
