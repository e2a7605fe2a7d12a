package source

import (
	"context"
	"regexp"
	"time"

	"github.com/thisisjab/logwarden/fault"
)

// Line is a single log line emitted by a followed source.
type Line struct {
	Source string
	Text   string
	Time   time.Time
}

// LineSource is the contract for push-style sources used in follow mode.
type LineSource interface {
	Name() string
	Provide(ctx context.Context, lines chan<- Line) error
}

// compileFilter compiles an optional filter pattern. An empty pattern means
// no filtering and yields a nil regexp.
func compileFilter(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fault.New(fault.BadFilterCode, "invalid filter pattern").WithOriginal(err)
	}

	return re, nil
}
