package collectors

import "sync/atomic"

// Latest holds the most recently published snapshot. The polling consumer
// stores, the explain path loads; readers always observe a fully built
// snapshot. The zero value is ready to use.
type Latest struct {
	p atomic.Pointer[SystemSnapshot]
}

// Store publishes snap as the most recent snapshot.
func (l *Latest) Store(snap SystemSnapshot) {
	l.p.Store(&snap)
}

// Load returns the most recent snapshot. The second return value is false
// until the first Store.
func (l *Latest) Load() (SystemSnapshot, bool) {
	p := l.p.Load()
	if p == nil {
		return SystemSnapshot{}, false
	}
	return *p, true
}
