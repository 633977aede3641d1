package trend

import (
	"io"
	"log"
	"os"
)

// Three log streams: ops for actionable warnings (on by default), diag for
// per-run pipeline diagnostics, trace for per-seed assembly telemetry (both
// off until a caller opts in).
var (
	opsLogger   = newLogger("[trend] ", os.Stderr)
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetLogWriters configures the three logging streams for the trend package.
// Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	opsLogger = newLogger("[trend] ", ops)
	diagLogger = newLogger("[trend] ", diag)
	traceLogger = newLogger("[trend] ", trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// opsf logs to the ops stream (degenerate inputs, invariant trouble).
func opsf(format string, args ...interface{}) {
	if opsLogger != nil {
		opsLogger.Printf(format, args...)
	}
}

// diagf logs to the diag stream (stage counts, per-label summaries).
func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}

// tracef logs to the trace stream (per-seed growth telemetry).
func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
