// Package sink provides output destinations for resolution reports.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrInvalidPath wraps every path rejected by ValidatePath.
	ErrInvalidPath = errors.New("invalid report path")

	// ErrExists is returned by a non-overwriting FilesystemSink when the
	// report is already on disk.
	ErrExists = errors.New("report already exists")
)

// Sink receives report content. Implementations must be safe for
// concurrent calls.
type Sink interface {
	// WriteFile stores content under a slash-separated relative path.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes reports below a directory on the local filesystem.
type FilesystemSink struct {
	Root string

	// Mode of created files. Zero means 0644.
	Mode os.FileMode

	// Overwrite replaces existing reports. Without it, writing an existing
	// report fails with ErrExists.
	Overwrite bool
}

// NewFilesystemSink returns a FilesystemSink that overwrites reports below
// root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644, Overwrite: true}
}

// WriteFile writes content to path below Root, creating directories as
// needed. Content lands in a temporary file first and is then renamed (or
// linked) into place, so a report is never observed half-written.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.target(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmpPath, err := s.stage(filepath.Dir(target), content)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Overwrite {
		if err := os.Rename(tmpPath, target); err != nil {
			return fmt.Errorf("commit report %s: %w", path, err)
		}
		return nil
	}
	// Link refuses an existing target atomically.
	if err := os.Link(tmpPath, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("commit report %s: %w", path, err)
	}
	return nil
}

// stage writes content to a new temporary file in dir and returns its path.
func (s *FilesystemSink) stage(dir string, content []byte) (string, error) {
	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}
	f, err := os.CreateTemp(dir, ".nullinfo-*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage report: %w", err)
	}
	_, werr := f.Write(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage report: %w", err)
	}
	if err := os.Chmod(f.Name(), mode); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("stage report: %w", err)
	}
	return f.Name(), nil
}

// target joins path onto Root and rejects results outside Root.
func (s *FilesystemSink) target(path string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", fmt.Errorf("report root: %w", err)
	}
	full := filepath.Join(root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrInvalidPath, path, root)
	}
	return full, nil
}

// MemorySink keeps reports in memory.
type MemorySink struct {
	mu      sync.Mutex
	reports map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{reports: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.reports[path] = bytes.Clone(content)
	s.mu.Unlock()
	return nil
}

// Files returns a copy of every stored report, keyed by path.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.reports))
	for path, content := range s.reports {
		out[path] = bytes.Clone(content)
	}
	return out
}

// Get returns a copy of one report, or nil if it was never written.
func (s *MemorySink) Get(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.reports[path])
}

// ValidatePath checks that path is a clean, relative, slash-separated path
// with no ".." element. Errors wrap ErrInvalidPath.
func ValidatePath(path string) error {
	var reason string
	switch {
	case path == "":
		reason = "empty"
	case strings.HasPrefix(path, "/"), filepath.IsAbs(path), hasDriveLetter(path):
		reason = "absolute"
	case hasDotDot(path):
		reason = "contains .."
	case filepath.ToSlash(filepath.Clean(path)) != path:
		reason = fmt.Sprintf("not clean, want %q", filepath.ToSlash(filepath.Clean(path)))
	default:
		return nil
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidPath, path, reason)
}

func hasDriveLetter(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0] | 0x20
	return c >= 'a' && c <= 'z'
}

func hasDotDot(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// ReportPath returns the report file for a member key: the declaring type
// becomes a directory, e.g. "Repo.TryGet" -> "Repo/TryGet.json". Characters
// that are unsafe in file names are replaced with '_'.
func ReportPath(key string) string {
	parts := strings.Split(key, ".")
	for i, p := range parts {
		parts[i] = sanitize(p)
	}
	return strings.Join(parts, "/") + ".json"
}

func sanitize(s string) string {
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
