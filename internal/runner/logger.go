package runner

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// StdLogger implements Logger using stdout/stderr
type StdLogger struct {
	verbose bool
	quiet   bool

	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewStdLogger creates a new standard logger
func NewStdLogger(verbose, quiet bool) *StdLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, quiet)
}

// NewWriterLogger creates a logger writing to out and errOut
func NewWriterLogger(out, errOut io.Writer, verbose, quiet bool) *StdLogger {
	return &StdLogger{verbose: verbose, quiet: quiet, out: out, err: errOut}
}

// Info logs info messages (unless quiet)
func (l *StdLogger) Info(format string, args ...interface{}) {
	if !l.quiet {
		l.printf(l.out, format+"\n", args...)
	}
}

// Verbose logs verbose/debug messages (only if verbose and not quiet)
func (l *StdLogger) Verbose(format string, args ...interface{}) {
	if l.verbose && !l.quiet {
		l.printf(l.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Error logs error messages to stderr
func (l *StdLogger) Error(format string, args ...interface{}) {
	l.printf(l.err, "Error: "+format+"\n", args...)
}

// Agents of one level report concurrently.
func (l *StdLogger) printf(w io.Writer, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}
