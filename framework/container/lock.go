package container

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// reentrantLock is a mutex that may be re-taken by the goroutine that
// already holds it. The registry runs creation factories while holding this
// lock, and a factory routinely resolves further components through the
// same container; those nested calls must be able to pass the lock while
// every other goroutine keeps blocking until the whole creation finishes.
//
// Collaborators that extend the creation protocol must synchronize on this
// same lock (see Container.Mutex) instead of introducing their own, or a
// nested resolution can deadlock against it.
type reentrantLock struct {
	mu    sync.Mutex
	owner atomic.Uint64 // goroutine id of the holder, 0 when free
	holds int           // recursion depth, touched only by the owner
}

var _ sync.Locker = (*reentrantLock)(nil)

func (l *reentrantLock) Lock() {
	id := goid()
	if l.owner.Load() == id {
		l.holds++
		return
	}
	l.mu.Lock()
	l.owner.Store(id)
	l.holds = 1
}

func (l *reentrantLock) Unlock() {
	if l.owner.Load() != goid() {
		panic("container: registry mutex unlocked by a goroutine that does not hold it")
	}
	l.holds--
	if l.holds == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

// goid extracts the current goroutine id from the runtime stack header,
// which always starts with "goroutine <id> [".
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	id, err := strconv.ParseUint(header[:strings.IndexByte(header, ' ')], 10, 64)
	if err != nil {
		panic("container: unparsable goroutine stack header: " + header)
	}
	return id
}
