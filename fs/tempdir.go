package fs

import "fmt"

// Lifetime tags a temporary directory with how long its owner needs it.
type Lifetime int

const (
	// Task directories are removed when the current task finishes.
	Task Lifetime = iota

	// Process directories are removed when the process exits.
	Process

	// Persistent directories are never removed automatically; they hold output
	// the user is expected to inspect, such as a merged codebase.
	Persistent
)

// String returns a human-readable name for the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Task:
		return "task"
	case Process:
		return "process"
	case Persistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// TempDirs hands out lifetime-tagged temporary directories on a Filesystem and
// removes them when their owner asks. The core requests a lifetime; the owner
// decides when CleanUp runs. A TempDirs is not safe for concurrent use.
type TempDirs struct {
	fs   Filesystem
	root string
	dirs map[Lifetime][]string
}

// NewTempDirs returns a TempDirs creating directories under root on fsys.
func NewTempDirs(fsys Filesystem, root string) *TempDirs {
	return &TempDirs{
		fs:   fsys,
		root: root,
		dirs: make(map[Lifetime][]string),
	}
}

// Get creates a new directory whose name starts with prefix and records it under lifetime.
func (t *TempDirs) Get(prefix string, lifetime Lifetime) (string, error) {
	if err := t.fs.MkdirAll(t.root, 0o755); err != nil {
		return "", fmt.Errorf("fs: create temp root %q: %w", t.root, err)
	}
	dir, err := t.fs.TempDir(t.root, prefix)
	if err != nil {
		return "", err
	}

	t.dirs[lifetime] = append(t.dirs[lifetime], dir)
	return dir, nil
}

// Dirs returns the directories currently recorded under lifetime.
func (t *TempDirs) Dirs(lifetime Lifetime) []string {
	return append([]string(nil), t.dirs[lifetime]...)
}

// CleanUp removes every directory recorded under lifetime. Persistent
// directories are only forgotten, never removed. The first removal error is
// returned after all removals have been attempted.
func (t *TempDirs) CleanUp(lifetime Lifetime) error {
	dirs := t.dirs[lifetime]
	delete(t.dirs, lifetime)

	if lifetime == Persistent {
		return nil
	}

	var firstErr error
	for _, d := range dirs {
		if err := t.fs.RemoveAll(d); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
