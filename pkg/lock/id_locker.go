package lock

import (
	"sync"

	"github.com/apex/log"
)

// IdLocker serializes work per id. Transfer processes use it so that only one
// mutation or migration runs against a process at a time. Entries are dropped
// once nobody holds or waits on them, so the map only grows with the number
// of processes in use at the same time.
type IdLocker struct {
	mapMutex sync.Mutex
	idMap    map[int]*idEntry
}

type idEntry struct {
	mu   sync.Mutex
	refs int
}

func NewIdLocker() *IdLocker {
	return &IdLocker{
		idMap: make(map[int]*idEntry),
	}
}

func (l *IdLocker) ref(id int) *idEntry {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()

	entry, ok := l.idMap[id]
	if !ok {
		entry = &idEntry{}
		l.idMap[id] = entry
	}
	entry.refs++

	return entry
}

func (l *IdLocker) unref(id int, entry *idEntry) {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.idMap, id)
	}
}

func (l *IdLocker) AcquireLock(id int) {
	l.ref(id).mu.Lock()
}

// TryAcquireLock returns false when another caller holds the lock for id.
func (l *IdLocker) TryAcquireLock(id int) bool {
	entry := l.ref(id)
	if entry.mu.TryLock() {
		return true
	}

	l.unref(id, entry)
	return false
}

func (l *IdLocker) ReleaseLock(id int) {
	l.mapMutex.Lock()
	entry, ok := l.idMap[id]
	l.mapMutex.Unlock()

	if !ok {
		log.Errorf("ReleaseLock called on id (%d) with no mutex", id)
		return
	}

	entry.mu.Unlock()
	l.unref(id, entry)
}

func (l *IdLocker) WithLock(id int, f func() error) error {
	l.AcquireLock(id)
	defer l.ReleaseLock(id)
	return f()
}

// TryWithLock runs f only if the lock for id is free. The bool reports
// whether f ran.
func (l *IdLocker) TryWithLock(id int, f func() error) (bool, error) {
	if !l.TryAcquireLock(id) {
		return false, nil
	}
	defer l.ReleaseLock(id)
	return true, f()
}

// Len returns the number of ids currently held or waited on.
func (l *IdLocker) Len() int {
	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()
	return len(l.idMap)
}
