// Package storage persists downloaded media under a per-user results
// directory and remembers what is already on disk so re-runs skip it.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Subdirectories under a user's results directory
const (
	ImagesDir = "images"
	VideosDir = "videos"
)

// Manager tracks downloaded files for one results directory. The downloaded
// set is seeded from disk at startup, so idempotence survives restarts.
type Manager struct {
	baseDir    string
	downloaded map[string]bool
	mu         sync.RWMutex
}

// NewManager creates the results directory tree and scans it for files
// downloaded by earlier runs.
func NewManager(baseDir string) (*Manager, error) {
	m := &Manager{
		baseDir:    baseDir,
		downloaded: make(map[string]bool),
	}

	for _, subdir := range []string{ImagesDir, VideosDir} {
		dir := filepath.Join(baseDir, subdir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		if err := m.scanExisting(subdir); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// scanExisting records the files already present in one subdirectory
func (m *Manager) scanExisting(subdir string) error {
	entries, err := os.ReadDir(filepath.Join(m.baseDir, subdir))
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", subdir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m.downloaded[filepath.Join(subdir, entry.Name())] = true
	}
	return nil
}

// BaseDir returns the results directory this manager writes into
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// IsDownloaded reports whether a file was already saved in an earlier run
// or earlier in this one.
func (m *Manager) IsDownloaded(subdir, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.downloaded[filepath.Join(subdir, name)]
}

// SaveFile writes a file atomically. Content goes to a temp file first and
// is renamed into place, so a crash mid-write never leaves a partial file
// that a later run would mistake for a complete one.
func (m *Manager) SaveFile(subdir, name string, r io.Reader) error {
	dir := filepath.Join(m.baseDir, subdir)
	target := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	m.mu.Lock()
	m.downloaded[filepath.Join(subdir, name)] = true
	m.mu.Unlock()

	return nil
}

// illegalNameChars are characters that are unsafe in directory names on at
// least one supported filesystem.
var illegalNameChars = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeName makes a screen name safe for use as a directory name
func SanitizeName(name string) string {
	name = strings.TrimSpace(illegalNameChars.Replace(name))
	if name == "" {
		return "unknown"
	}
	return name
}
