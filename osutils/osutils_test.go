package osutils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "gbrowse.pid")

	remove, err := WritePidFile(path)
	if err != nil {
		t.Fatal(err)
	}

	pid, err := ReadPidFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if pid != os.Getpid() {
		t.Fatalf("Unexpect pid %d, expect %d", pid, os.Getpid())
	}
	if !ProcessAlive(pid) {
		t.Fatal("Expect current process to be alive")
	}
	if ProcessAlive(0) || ProcessAlive(-1) {
		t.Fatal("Expect invalid pid to be reported dead")
	}

	remove()
	_, err = ReadPidFile(path)
	if !errors.Is(err, ErrPidFileNotFound) {
		t.Fatalf("Expect pid file not found, get: %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	err := EnsureDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	err = EnsureDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(dir, "file")
	err = os.WriteFile(file, nil, 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = EnsureDir(file)
	if err == nil {
		t.Fatal("Expect error when ensuring a regular file as dir")
	}
}
