// Package exportfile writes export payloads to disk byte-for-byte.
package exportfile

import (
	"fmt"
	"os"
	"path/filepath"

	"sqlpilot/cli/internal/models"
)

// Write stores p under dir using the payload's filename and returns the
// path written. Existing files are replaced.
func Write(dir string, p *models.ExportPayload) (string, error) {
	if p == nil {
		return "", fmt.Errorf("nil export payload")
	}
	name := p.Filename
	if name == "" {
		name = "export" + p.Format.Extension()
	}
	return WriteTo(filepath.Join(dir, filepath.Base(name)), p)
}

// WriteTo stores p at an explicit path, creating parent directories.
func WriteTo(path string, p *models.ExportPayload) (string, error) {
	if p == nil {
		return "", fmt.Errorf("nil export payload")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if _, err := tmp.Write(p.Bytes); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
