package renamer

import (
	"path/filepath"
	"sync"
)

// folderLocks serializes placements into the same target folder so the
// scan and the following delete and move happen as one step
type folderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFolderLocks() *folderLocks {
	return &folderLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex of dir and returns its release function
func (l *folderLocks) lock(dir string) func() {
	key := filepath.Clean(dir)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
