package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireLock_Success(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(dir, lockFileName)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("lock file should exist")
	}

	lock.Release()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("lock file should be removed after release")
	}
}

func TestAcquireLock_BlocksConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	lock1, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("failed to acquire first lock: %v", err)
	}
	defer lock1.Release()

	lock2, err := AcquireLock(dir)
	if err == nil {
		lock2.Release()
		t.Fatal("second lock should have failed")
	}
	if lock2 != nil {
		t.Error("lock2 should be nil on failure")
	}
}

func TestAcquireLock_AllowsAfterRelease(t *testing.T) {
	dir := t.TempDir()

	lock1, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("failed to acquire first lock: %v", err)
	}
	lock1.Release()

	lock2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("failed to acquire second lock after release: %v", err)
	}
	defer lock2.Release()
}

func TestLock_ReleaseIdempotent(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("failed to acquire lock: %v", err)
	}

	lock.Release()
	lock.Release()
	lock.Release()
}
