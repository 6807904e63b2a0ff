package occam

import "sync"

// threadLocks serializes message handling per thread. Distinct threads never
// contend; two messages for the same thread are handled one after the other
// so the append order of the log matches arrival order.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

// Acquire locks the given thread and returns the release function. Lock
// entries are dropped once the last holder releases, so the map does not
// grow with thread count.
func (t *threadLocks) Acquire(threadID string) func() {
	t.mu.Lock()
	l, ok := t.locks[threadID]
	if !ok {
		l = &threadLock{}
		t.locks[threadID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, threadID)
		}
		t.mu.Unlock()
	}
}
