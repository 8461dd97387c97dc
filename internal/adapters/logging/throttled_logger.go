package logging

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/marssim-go/internal/domain/shared"
)

// ThrottledLogger passes an entry on at most once per window for each source
// and message template, so "Short of 1.2 kg" and "Short of 3.4 kg" from the
// same building count as repeats. Errors are never throttled.
//
// Thread-Safety: safe for concurrent use; settlements pulsed in parallel share one.
type ThrottledLogger struct {
	next   shared.Logger
	window time.Duration
	clock  shared.Clock

	mu        sync.Mutex
	limits    map[string]*throttle
	lastSweep time.Time
}

type throttle struct {
	limit    *rate.Sometimes
	lastSeen time.Time
}

// NewThrottledLogger wraps next. A zero window disables throttling.
func NewThrottledLogger(next shared.Logger, window time.Duration) *ThrottledLogger {
	return NewThrottledLoggerWithClock(next, window, shared.NewRealClock())
}

// NewThrottledLoggerWithClock is NewThrottledLogger with the idle-pair sweep
// timed by clock
func NewThrottledLoggerWithClock(next shared.Logger, window time.Duration, clock shared.Clock) *ThrottledLogger {
	return &ThrottledLogger{
		next:   next,
		window: window,
		clock:  clock,
		limits: make(map[string]*throttle),
	}
}

// Log implements shared.Logger
func (l *ThrottledLogger) Log(level, message string, metadata map[string]interface{}) {
	if l.window <= 0 || level == shared.LevelError {
		l.next.Log(level, message, metadata)
		return
	}

	key := throttleKey(message, metadata)
	now := l.clock.Now()
	l.mu.Lock()
	l.sweep(now)
	t, ok := l.limits[key]
	if !ok {
		t = &throttle{limit: &rate.Sometimes{Interval: l.window}}
		l.limits[key] = t
	}
	t.lastSeen = now
	l.mu.Unlock()

	t.limit.Do(func() { l.next.Log(level, message, metadata) })
}

// Tracked is the number of source/template pairs currently being throttled
func (l *ThrottledLogger) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limits)
}

// sweep forgets pairs idle for longer than a window; their next entry would
// pass anyway. Runs at most once per window. Callers hold mu.
func (l *ThrottledLogger) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, t := range l.limits {
		if now.Sub(t.lastSeen) > l.window {
			delete(l.limits, key)
		}
	}
}

func throttleKey(message string, metadata map[string]interface{}) string {
	if tmpl, ok := metadata[shared.MetaTemplate].(string); ok && tmpl != "" {
		message = tmpl
	}
	return fmt.Sprintf("%v|%s", metadata[shared.MetaSource], message)
}

var _ shared.Logger = (*ThrottledLogger)(nil)
