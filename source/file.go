package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thisisjab/logwarden/fault"
)

// FileSource is a pull-based line producer over a single log file.
//
// It exposes the file as a forward-only sequence of optionally filtered lines
// through the iterator methods (Key, Valid, Rewind, Advance, Current) and as
// aggregate reads (ReadLines, ReadString). The source owns its file handle
// exclusively; Close releases it and leaves the value inert.
type FileSource struct {
	name   string
	path   string
	file   *os.File
	reader *bufio.Reader
	filter *regexp.Regexp
	// cursor counts Advance calls, starting at 1. It is an ordinal label for
	// iteration, not the handle's read offset, and becomes -1 once closed.
	cursor int
}

// NewFileSource opens path for reading. filterPattern is an optional regular
// expression; when empty every line passes through unfiltered.
func NewFileSource(path, filterPattern string) (*FileSource, error) {
	filter, err := compileFilter(filterPattern)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fault.New(fault.NotFoundCode, fmt.Sprintf("cannot open log file %s", path)).WithOriginal(err)
	}

	return &FileSource{
		name:   filepath.Base(path),
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
		filter: filter,
		cursor: 1,
	}, nil
}

// Name returns the final path segment of the monitored file.
func (s *FileSource) Name() string {
	return s.name
}

func (s *FileSource) Path() string {
	return s.path
}

// Key returns the current cursor position. It has no side effect.
func (s *FileSource) Key() int {
	return s.cursor
}

// Closed reports whether the handle has been released.
func (s *FileSource) Closed() bool {
	return s.cursor == -1
}

// Valid reports whether the handle still has unread data. It peeks ahead
// without consuming anything.
func (s *FileSource) Valid() bool {
	if s.file == nil {
		return false
	}

	_, err := s.reader.Peek(1)
	return err == nil
}

// Rewind resets the cursor to 1 and repositions the handle at the start of
// the file. It may be called at any point during iteration.
func (s *FileSource) Rewind() error {
	if s.file == nil {
		return fault.New(fault.ClosedCode, "log source is closed")
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("cannot rewind %s: %w", s.path, err)
	}

	s.reader.Reset(s.file)
	s.cursor = 1

	return nil
}

// Advance moves the cursor forward by one. It only affects the position
// label; reading happens in Current.
func (s *FileSource) Advance() {
	if s.cursor != -1 {
		s.cursor++
	}
}

// Current consumes the next raw line from the handle, terminator included.
// A line that fails the filter comes back as the empty string, the same
// value returned once nothing is left to read. Repeated calls yield
// successive lines, not re-reads.
func (s *FileSource) Current() string {
	if s.file == nil {
		return ""
	}

	line, _ := s.reader.ReadString('\n')
	if len(line) == 0 {
		return ""
	}

	if s.filter != nil && !s.filter.MatchString(line) {
		return ""
	}

	return line
}

// Close releases the file handle and marks the source closed. Closing an
// already closed source is a no-op.
func (s *FileSource) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	s.reader = nil
	s.cursor = -1

	if err != nil {
		return fmt.Errorf("cannot close %s: %w", s.path, err)
	}

	return nil
}

// ReadLines performs one full pass over the file and collects every
// non-empty filtered line in file order. The source is rewound before the
// pass when partially consumed, and rewound again before returning, so two
// consecutive calls on an unmodified file yield equal results.
func (s *FileSource) ReadLines() ([]string, error) {
	if s.file == nil {
		return nil, fault.New(fault.ClosedCode, "log source is closed")
	}

	if s.cursor != 1 {
		if err := s.Rewind(); err != nil {
			return nil, err
		}
	}

	var lines []string
	for s.Valid() {
		if line := s.Current(); line != "" {
			lines = append(lines, line)
		}
		s.Advance()
	}

	if err := s.Rewind(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ReadString is ReadLines collapsed into a single string: the raw result of
// every iteration step is concatenated in file order, so filtered-out lines
// contribute nothing. With no filter the result equals the file content.
func (s *FileSource) ReadString() (string, error) {
	if s.file == nil {
		return "", fault.New(fault.ClosedCode, "log source is closed")
	}

	if s.cursor != 1 {
		if err := s.Rewind(); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	for s.Valid() {
		b.WriteString(s.Current())
		s.Advance()
	}

	if err := s.Rewind(); err != nil {
		return "", err
	}

	return b.String(), nil
}
