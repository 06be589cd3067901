// Package dbadmin manages the set of named database directories living
// under a common base path. Each named database is an independent
// snapshot directory suitable for service.Open — dbadmin only creates,
// removes, and lists those directories; it does not open stores itself.
package dbadmin

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager administers database directories under a base path.
type Manager struct {
	baseDir string
}

// New returns a Manager rooted at baseDir, creating it if necessary.
func New(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("dbadmin: creating base dir: %w", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// Create makes a new, empty database directory named name. It is an error
// if the directory already exists.
func (m *Manager) Create(name string) error {
	dir := m.Path(name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("dbadmin: database %q already exists", name)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o750)
}

// Drop removes a database directory and everything under it.
func (m *Manager) Drop(name string) error {
	dir := m.Path(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("dbadmin: database %q does not exist", name)
	}
	return os.RemoveAll(dir)
}

// List returns the names of every database directory under the base path.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Path returns the full directory path for a named database, independent
// of whether it currently exists.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.baseDir, name)
}
