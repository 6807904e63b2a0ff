package occam

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadLocksSerializeSameThread(t *testing.T) {
	locks := newThreadLocks()

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Acquire("thread-a")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestThreadLocksIndependentThreadsDoNotBlock(t *testing.T) {
	locks := newThreadLocks()

	unlockA := locks.Acquire("thread-a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Acquire("thread-b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestThreadLocksEntriesAreReclaimed(t *testing.T) {
	locks := newThreadLocks()

	for i := 0; i < 10; i++ {
		unlock := locks.Acquire("thread-a")
		unlock()
	}

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}
