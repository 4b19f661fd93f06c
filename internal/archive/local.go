package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores audio under a root directory on the filesystem. References
// are paths relative to the root.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &Local{root: root}, nil
}

// Store writes the WAV payload atomically (temp file + rename) and returns
// the relative path as the reference.
func (l *Local) Store(_ context.Context, wav []byte, speakerID string) (string, error) {
	ref := objectName(speakerID, time.Now())
	path := filepath.Join(l.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create speaker directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, wav, 0o644); err != nil {
		return "", fmt.Errorf("write archive object: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize archive object: %w", err)
	}
	return ref, nil
}

// Load reads a previously stored payload.
func (l *Local) Load(_ context.Context, ref string) ([]byte, error) {
	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive object %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes a stored payload. Missing objects are not an error.
func (l *Local) Delete(_ context.Context, ref string) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete archive object %s: %w", ref, err)
	}
	return nil
}

// resolve rejects references that would escape the archive root.
func (l *Local) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid archive reference %q", ref)
	}
	return filepath.Join(l.root, clean), nil
}

var _ Archive = (*Local)(nil)
