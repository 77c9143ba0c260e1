package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes lines to files under a root directory. The destination is
// a path relative to the root; parent directories are created on demand.
type FileSink struct {
	root string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{root: dir}
}

// Overwrite truncates the destination file and writes the line.
func (s *FileSink) Overwrite(_ context.Context, dest, line string) error {
	return s.write(dest, line, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Append adds the line to the destination file, creating it if absent.
func (s *FileSink) Append(_ context.Context, dest, line string) error {
	return s.write(dest, line, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func (s *FileSink) write(dest, line string, flag int) error {
	path := filepath.Join(s.root, dest)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file sink: mkdir for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("file sink: open %s: %w", path, err)
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("file sink: write %s: %w", path, err)
	}
	return f.Close()
}
