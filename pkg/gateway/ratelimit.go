package gateway

import (
	"sync"
	"time"
)

// Limiter enforces a per-caller sliding window: at most max calls within
// window. A nil *Limiter is the disabled state and allows everything without
// keeping any state.
type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	callers   map[string]*callerWindow
	lastSweep time.Time
}

// callerWindow is a fixed-capacity ring of timestamps for one caller. Its own
// lock keeps independent callers from contending once the window exists.
type callerWindow struct {
	mu       sync.Mutex
	stamps   []time.Time
	head     int
	count    int
	lastSeen time.Time
}

// NewLimiter builds an enabled limiter. max must be positive.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		now:     time.Now,
		callers: make(map[string]*callerWindow),
	}
}

// Check records one attempt for caller and reports whether it is allowed.
// When denied, retryAfter is how long until the oldest tracked call leaves
// the window. Denied attempts are not recorded.
func (l *Limiter) Check(caller string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()
	w := l.caller(caller, now)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen = now

	cutoff := now.Add(-l.window)
	for w.count > 0 && !w.stamps[w.head].After(cutoff) {
		w.head = (w.head + 1) % l.max
		w.count--
	}
	if w.count >= l.max {
		oldest := w.stamps[w.head]
		return false, l.window - now.Sub(oldest)
	}
	w.stamps[(w.head+w.count)%l.max] = now
	w.count++
	return true, 0
}

// caller returns the window for a caller, creating it lazily, and evicts
// callers idle for longer than the window so the map cannot grow unbounded.
func (l *Limiter) caller(name string, now time.Time) *callerWindow {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		cutoff := now.Add(-l.window)
		for k, w := range l.callers {
			if k == name {
				continue
			}
			w.mu.Lock()
			idle := w.lastSeen.Before(cutoff)
			w.mu.Unlock()
			if idle {
				delete(l.callers, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.callers[name]
	if !ok {
		w = &callerWindow{stamps: make([]time.Time, l.max)}
		l.callers[name] = w
	}
	return w
}
