package workspace

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
)

const lockFileName = ".forgeloop.lock"

// Lock is an acquired exclusive lock on a workspace directory.
//
// The patch engine assumes exclusive access to the files it touches for the
// duration of a call; holding the lock for the whole run upholds that
// invariant when several agent processes share a machine.
type Lock struct {
	file        *os.File
	lockPath    string
	sigChan     chan os.Signal
	mu          sync.Mutex
	cleanupOnce sync.Once
}

// AcquireLock takes an exclusive flock on the workspace. It fails
// immediately when another forgeloop run holds the lock. The returned Lock
// must be released with Release.
func AcquireLock(root string) (*Lock, error) {
	lockPath := filepath.Join(root, lockFileName)

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("create workspace lock file: %w", err)
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("workspace %q is already in use by another forgeloop run", root)
	}

	// PID in the lock file helps identify a stuck holder.
	lockFile.Truncate(0)
	lockFile.Seek(0, 0)
	fmt.Fprintf(lockFile, "%d\n", os.Getpid())

	l := &Lock{
		file:     lockFile,
		lockPath: lockPath,
		sigChan:  make(chan os.Signal, 1),
	}

	// Remove the lock file on Ctrl+C so an interrupted run does not leave
	// stale state behind.
	signal.Notify(l.sigChan, syscall.SIGINT, syscall.SIGTERM)
	sigChan := l.sigChan
	go func() {
		sig, ok := <-sigChan
		if ok && sig != nil {
			l.cleanup()
			os.Exit(130)
		}
	}()

	return l, nil
}

// Release releases the lock and removes the lock file. Safe to call more
// than once.
func (l *Lock) Release() {
	l.mu.Lock()
	if l.file == nil {
		l.mu.Unlock()
		return
	}
	if l.sigChan != nil {
		signal.Stop(l.sigChan)
		close(l.sigChan)
		l.sigChan = nil
	}
	l.mu.Unlock()
	l.cleanup()
}

func (l *Lock) cleanup() {
	l.cleanupOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.file == nil {
			return
		}
		syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
		l.file.Close()
		os.Remove(l.lockPath)
		l.file = nil
	})
}
