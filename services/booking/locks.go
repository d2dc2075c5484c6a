package booking

import "sync"

// roomLocks serializes check-then-reserve sequences per room. Two concurrent
// creations against different rooms never contend; two against the same room
// run one at a time, so both cannot pass the overlap check.
type roomLocks struct {
	mu     sync.Mutex
	byRoom map[string]*sync.Mutex
}

// get returns the mutex for a room id, creating one if it doesn't exist.
func (l *roomLocks) get(roomID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.byRoom == nil {
		l.byRoom = make(map[string]*sync.Mutex)
	}
	m, exists := l.byRoom[roomID]
	if !exists {
		m = &sync.Mutex{}
		l.byRoom[roomID] = m
	}
	return m
}
