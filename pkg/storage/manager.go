package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	// DirLayout names a post directory after the post's UTC timestamp
	DirLayout = "2006-01-02_15-04-05_UTC"

	// StatusLogName is the status log kept at the root of the output directory
	StatusLogName = "logs.log"
)

// Manager lays out downloads below a base directory
type Manager struct {
	outputDir string
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// DirName returns the directory name used for a post taken at t
func DirName(t time.Time) string {
	return t.UTC().Format(DirLayout)
}

// PostDir creates, if needed, and returns <base>/<username>/<timestamp>.
// Calling it again for the same post is a no-op.
func (m *Manager) PostDir(username string, taken time.Time) (string, error) {
	dir := filepath.Join(m.outputDir, username, DirName(taken))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create post directory: %w", err)
	}
	return dir, nil
}

// SaveFile writes r to dir/name through a temporary file so a partially
// written file never appears under the final name.
func (m *Manager) SaveFile(dir, name string, r io.Reader) (int64, error) {
	filename := filepath.Join(dir, name)

	out, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to save %s: %w", name, err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// Exists reports whether a regular file is present at path
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// StatusLogPath returns the path of the status log inside the output directory
func (m *Manager) StatusLogPath() string {
	return filepath.Join(m.outputDir, StatusLogName)
}
