package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Sink writes to a temporary file next to the destination and renames it into place
// on Close, so the previous contents are discarded in one step and readers never see
// a half-written file.
type Sink struct {
	destPath string
	tmp      *os.File
	buf      *bufio.Writer
	done     bool
}

// CreateSink opens a sink for path. The directory must exist.
func CreateSink(path string) (*Sink, error) {
	// Same directory as the destination: rename is only atomic within a filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	// CreateTemp uses 0600; the result is an ordinary output file.
	_ = tmp.Chmod(0644)
	return &Sink{destPath: path, tmp: tmp, buf: bufio.NewWriter(tmp)}, nil
}

// Write buffers p.
func (s *Sink) Write(p []byte) (int, error) {
	if s.done {
		return 0, os.ErrClosed
	}
	return s.buf.Write(p)
}

// Close flushes, fsyncs and renames the temp file over the destination.
func (s *Sink) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	tmpPath := s.tmp.Name()

	// Cleanup temp file in case of failure; after a successful rename it no longer exists.
	defer func() {
		_ = s.tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := s.tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := s.tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists. We must remove it first.
	if _, err := os.Stat(s.destPath); err == nil && runtime.GOOS == "windows" {
		if err := os.Remove(s.destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Abort discards everything written so far and leaves the destination untouched.
func (s *Sink) Abort() {
	if s.done {
		return
	}
	s.done = true
	_ = s.tmp.Close()
	_ = os.Remove(s.tmp.Name())
}
