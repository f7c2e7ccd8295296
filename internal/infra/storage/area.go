package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"transcription-service/internal/domain/ports/repository"
)

const (
	audioFileName  = "audio.input"
	resultFileName = "transcription.srt"
)

// Compile-time assurance this implementation satisfies the port
var _ repository.StorageArea = (*Area)(nil)

// Area partitions a root directory into per-job working directories, so
// concurrent jobs never contend on file paths.
type Area struct {
	root string
}

// NewArea ensures the root directory exists and returns the manager.
func NewArea(root string) (*Area, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Area{root: root}, nil
}

func (a *Area) Allocate(id string) (string, string, error) {
	dir := filepath.Join(a.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("allocate job dir: %w", err)
	}
	return filepath.Join(dir, audioFileName), filepath.Join(dir, resultFileName), nil
}

func (a *Area) Write(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

func (a *Area) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Remove deletes files best-effort. Cleanup is advisory; a file that cannot
// be removed must never block a response path.
func (a *Area) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		_ = os.Remove(p)
	}
}

// RemoveDir deletes the job directory if it is empty. Already-gone or
// non-empty directories are left alone.
func (a *Area) RemoveDir(id string) {
	_ = os.Remove(filepath.Join(a.root, id))
}
