package engagement

import "sync"

// keyLock serializes work per string key. Entries are reference counted so
// the table does not grow with every (user, idea) pair ever seen.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*keyLockEntry)}
}

// Lock acquires the mutex for key, creating it on first use
func (l *keyLock) Lock(key string) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the mutex for key and drops the entry once unused
func (l *keyLock) Unlock(key string) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
