package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FollowSource watches a log file and emits newly appended lines that pass
// its filter. Existing content is skipped; only appends after Provide starts
// are reported.
type FollowSource struct {
	name   string
	path   string
	filter *regexp.Regexp
	logger *slog.Logger
}

// NewFollowSource validates the filter pattern up front; the file itself is
// opened when Provide runs.
func NewFollowSource(logger *slog.Logger, name, path, filterPattern string) (*FollowSource, error) {
	filter, err := compileFilter(filterPattern)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = filepath.Base(path)
	}

	return &FollowSource{
		name:   name,
		path:   path,
		filter: filter,
		logger: logger,
	}, nil
}

func (f *FollowSource) Name() string {
	return f.name
}

// Provide blocks until ctx is cancelled, sending matching appended lines to
// the channel. The file handle and the watcher are released on every exit
// path.
func (f *FollowSource) Provide(ctx context.Context, lines chan<- Line) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	// Skip everything already in the file; follow mode only reports appends.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("cannot seek to end: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		return fmt.Errorf("cannot watch file: %w", err)
	}

	reader := bufio.NewReader(file)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				f.logger.Debug("watcher event channel closed.", "source", f.name)
				return nil
			}
			if !event.Has(fsnotify.Write) {
				// Rotation and renames are out of scope; an editor that
				// replaces the inode silently detaches the watch.
				f.logger.Debug("ignoring fsnotify event.", "source", f.name, "event", event.String())
				continue
			}

			if err := f.drain(ctx, reader, lines); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// drain reads all lines currently available past the read position and sends
// the ones that pass the filter.
func (f *FollowSource) drain(ctx context.Context, reader *bufio.Reader, lines chan<- Line) error {
	for {
		text, err := reader.ReadString('\n')

		if len(text) > 0 && (f.filter == nil || f.filter.MatchString(text)) {
			l := Line{
				Source: f.name,
				Text:   text,
				Time:   time.Now(),
			}

			select {
			case lines <- l:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
