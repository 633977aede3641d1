package edges

import (
	"io"
	"log"
	"os"
)

// Three log streams, matching the split used elsewhere in this codebase:
// ops for actionable warnings (on by default), diag for per-run
// diagnostics, trace for per-tile telemetry (both off until a caller
// opts in).
var (
	opsLogger   = newLogger("[edges] ", os.Stderr)
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures the three logging streams for the edges package.
// Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[edges] ", ops)
	diagLogger = newLogger("[edges] ", diag)
	traceLogger = newLogger("[edges] ", trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs to the ops stream (degenerate grids, dropped features).
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf logs to the diag stream (stage counts, tile and merge summaries).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

// tracef logs to the trace stream (per-tile Hough telemetry).
func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
