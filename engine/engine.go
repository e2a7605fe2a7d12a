package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thisisjab/logwarden/fault"
	"github.com/thisisjab/logwarden/notify"
	"github.com/thisisjab/logwarden/processor"
	"github.com/thisisjab/logwarden/source"
)

// ScanTarget is one configured log file with its optional filter and
// processor chain.
type ScanTarget struct {
	Name       string
	Path       string
	Filter     string
	Processors []string
}

type Config struct {
	Targets    []ScanTarget
	Processors map[string]processor.LineProcessor
	Notifier   notify.Notifier

	// Follow-mode batching. Lines are flushed into one message per source
	// when the buffer reaches LineBufferMaxSize or FlushInterval elapses.
	LineBufferMaxSize uint
	FlushInterval     time.Duration
}

func (c Config) validate() error {
	if len(c.Targets) == 0 {
		return errors.New("no log files are configured")
	}

	if c.Notifier == nil {
		return errors.New("no notifier is configured")
	}

	for _, t := range c.Targets {
		if t.Path == "" {
			return fmt.Errorf("target `%s` has no path", t.Name)
		}
		for _, name := range t.Processors {
			if _, ok := c.Processors[name]; !ok {
				return fmt.Errorf("target `%s` references unknown processor `%s`", t.Name, name)
			}
		}
	}

	return nil
}

// Engine drives the configured targets: a one-shot Scan reads each file in
// order and notifies per file, Follow tails all files and notifies in
// batches.
type Engine struct {
	cfg     Config
	logger  *slog.Logger
	targets map[string]ScanTarget
}

func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	targets := make(map[string]ScanTarget, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets[t.targetName()] = t
	}

	return &Engine{
		cfg:     cfg,
		logger:  logger,
		targets: targets,
	}, nil
}

// Scan processes every configured target once, in order. A target whose file
// is missing is logged and skipped; the scan continues with the rest. Other
// per-target failures are logged and counted the same way, so one bad entry
// never aborts the whole run.
func (e *Engine) Scan(ctx context.Context) error {
	for _, t := range e.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.scanTarget(ctx, t)
		switch {
		case err == nil:
		case fault.Has(err, fault.NotFoundCode):
			e.logger.Warn("log file missing. skipping target.", "target", t.targetName(), "path", t.Path, "error", err)
		default:
			e.logger.Error("failed to scan target.", "target", t.targetName(), "error", err)
		}
	}

	return nil
}

// scanTarget opens the target's source, reads all matching lines, runs the
// processor chain, and hands the result to the notifier. The source handle
// is released on every exit path.
func (e *Engine) scanTarget(ctx context.Context, t ScanTarget) error {
	src, err := source.NewFileSource(t.Path, t.Filter)
	if err != nil {
		return err
	}
	defer src.Close()

	lines, err := src.ReadLines()
	if err != nil {
		return err
	}

	lines = e.processLines(t, lines)
	if len(lines) == 0 {
		e.logger.Debug("no matching lines.", "target", t.targetName())
		return nil
	}

	msg := notify.NewMessage(t.targetName(), lines)
	e.logger.Info("sending notification.", "target", t.targetName(), "lines", len(lines), "id", msg.ID)

	return e.cfg.Notifier.Notify(ctx, msg)
}

// processLines runs a target's processor chain over each line. A processor
// error keeps the original line; an empty result drops it.
func (e *Engine) processLines(t ScanTarget, lines []string) []string {
	if len(t.Processors) == 0 {
		return lines
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		processed, keep := e.processLine(t, line)
		if keep {
			out = append(out, processed)
		}
	}

	return out
}

func (e *Engine) processLine(t ScanTarget, line string) (string, bool) {
	for _, name := range t.Processors {
		p := e.cfg.Processors[name]

		processed, err := p.Process(line)
		if err != nil {
			e.logger.Error("failed to process line.", "target", t.targetName(), "processor", name, "error", err)
			continue
		}
		if processed == "" {
			return "", false
		}

		line = processed
	}

	return line, true
}

func (t ScanTarget) targetName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Path
}
