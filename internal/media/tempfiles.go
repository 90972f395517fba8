package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// tempFiles records every scratch path the moment it is created so a single
// deferred cleanup can remove them all, whatever happened in between.
type tempFiles struct {
	dir   string
	mu    sync.Mutex
	paths []string
}

func newTempFiles(dir string) *tempFiles {
	return &tempFiles{dir: dir}
}

// write creates a temp file matching pattern and fills it with data.
func (t *tempFiles) write(pattern string, data []byte) (string, error) {
	f, err := t.create(pattern)
	if err != nil {
		return "", err
	}
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return f.Name(), nil
}

// reserve creates an empty temp file for a tool to write into.
func (t *tempFiles) reserve(pattern string) (string, error) {
	f, err := t.create(pattern)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func (t *tempFiles) create(pattern string) (*os.File, error) {
	f, err := os.CreateTemp(t.dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	t.track(f.Name())
	return f, nil
}

func (t *tempFiles) track(path string) {
	t.mu.Lock()
	t.paths = append(t.paths, path)
	t.mu.Unlock()
}

// Paths returns a copy of the tracked paths.
func (t *tempFiles) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

// cleanup removes every tracked path. Paths already gone are fine; any other
// failure is returned.
func (t *tempFiles) cleanup() error {
	t.mu.Lock()
	paths := t.paths
	t.paths = nil
	t.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
