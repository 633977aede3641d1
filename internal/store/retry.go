package store

import (
	"strings"
	"time"

	"github.com/terrane-data/curvetrace/internal/monitoring"
	"github.com/terrane-data/curvetrace/internal/timeutil"
)

const (
	// busyMaxAttempts bounds how many times a statement is tried before
	// the lock contention error is returned to the caller.
	busyMaxAttempts = 5

	// busyBaseDelay is the first backoff delay; it doubles per attempt.
	busyBaseDelay = 10 * time.Millisecond
)

// retryClock is swapped for a MockClock in tests.
var retryClock timeutil.Clock = timeutil.RealClock{}

// isSQLiteBusy reports whether err indicates SQLite lock contention.
// modernc surfaces these as plain errors, so we match on the message.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn, retrying with exponential backoff while SQLite
// reports lock contention. Any other error fails immediately.
func retryOnBusy(fn func() error) error {
	var err error
	delay := busyBaseDelay
	for attempt := 0; attempt < busyMaxAttempts; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < busyMaxAttempts-1 {
			monitoring.Logf("store: database busy, retrying in %v (attempt %d/%d)", delay, attempt+1, busyMaxAttempts)
			retryClock.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
