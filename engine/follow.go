package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/thisisjab/logwarden/notify"
	"github.com/thisisjab/logwarden/source"
)

// Follow tails every configured target and sends batched notifications as
// new matching lines are appended. It blocks until ctx is cancelled.
func (e *Engine) Follow(ctx context.Context) error {
	if e.cfg.LineBufferMaxSize == 0 && e.cfg.FlushInterval == 0 {
		return errors.New("line buffer max size and flush interval cannot both be zero")
	}

	// The manager loop exits on this context, so it can be stopped once all
	// sources have returned even while the caller's context is still live.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sources := make([]source.LineSource, 0, len(e.cfg.Targets))
	for _, t := range e.cfg.Targets {
		s, err := source.NewFollowSource(e.logger, t.targetName(), t.Path, t.Filter)
		if err != nil {
			return err
		}
		sources = append(sources, s)
	}

	lines := e.consumeLines(ctx, sources)
	nm := newNotifyManager(e.logger, e.cfg.Notifier, e.cfg.LineBufferMaxSize, e.cfg.FlushInterval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		nm.run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				nm.stop(ctx)
				cancel()
				wg.Wait()
				return nil
			}

			t, ok := e.targets[l.Source]
			if !ok {
				e.logger.Error("line from unknown target.", "source", l.Source)
				continue
			}

			text, keep := e.processLine(t, l.Text)
			if !keep || text == "" {
				continue
			}
			l.Text = text

			nm.add(ctx, l)
		}
	}
}

// consumeLines starts every source and fans their lines into one channel,
// which closes once all sources have returned.
func (e *Engine) consumeLines(ctx context.Context, sources []source.LineSource) <-chan source.Line {
	lines := make(chan source.Line, e.cfg.LineBufferMaxSize)

	var wg sync.WaitGroup
	for _, s := range sources {
		s := s
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Provide(ctx, lines); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Error("log source stopped.", "source", s.Name(), "error", err)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(lines)
	}()

	return lines
}

// notifyManager buffers followed lines and flushes them as one notification
// per source, either when the buffer fills up or on a timer.
type notifyManager struct {
	notifier notify.Notifier
	logger   *slog.Logger
	buffer   []source.Line
	mu       sync.Mutex
	wg       sync.WaitGroup

	// bufferMaxSize is the number of buffered lines that forces an immediate
	// flush. Zero disables size-based flushing.
	bufferMaxSize uint

	// flushInterval is the period of timer-based flushing. Zero disables the
	// timer.
	flushInterval time.Duration
}

func newNotifyManager(logger *slog.Logger, notifier notify.Notifier, bufferMaxSize uint, flushInterval time.Duration) *notifyManager {
	return &notifyManager{
		notifier:      notifier,
		logger:        logger,
		buffer:        make([]source.Line, 0, bufferMaxSize),
		bufferMaxSize: bufferMaxSize,
		flushInterval: flushInterval,
	}
}

func (nm *notifyManager) run(ctx context.Context) {
	var tick <-chan time.Time

	if nm.flushInterval > 0 {
		ticker := time.NewTicker(nm.flushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			nm.flush(context.WithoutCancel(ctx))
			nm.wg.Wait()
			return
		case <-tick:
			nm.flush(ctx)
		}
	}
}

// stop flushes whatever is left and waits for in-flight notifications.
func (nm *notifyManager) stop(ctx context.Context) {
	nm.flush(ctx)
	nm.wg.Wait()
}

func (nm *notifyManager) add(ctx context.Context, l source.Line) {
	var toFlush []source.Line

	nm.mu.Lock()
	nm.buffer = append(nm.buffer, l)
	if nm.bufferMaxSize > 0 && uint(len(nm.buffer)) >= nm.bufferMaxSize {
		toFlush = nm.buffer
		nm.buffer = make([]source.Line, 0, nm.bufferMaxSize)
	}
	nm.mu.Unlock()

	if toFlush != nil {
		nm.dispatch(ctx, toFlush)
	}
}

func (nm *notifyManager) flush(ctx context.Context) {
	var toFlush []source.Line

	nm.mu.Lock()
	if len(nm.buffer) > 0 {
		toFlush = nm.buffer
		nm.buffer = make([]source.Line, 0, nm.bufferMaxSize)
	}
	nm.mu.Unlock()

	if toFlush != nil {
		nm.dispatch(ctx, toFlush)
	}
}

// dispatch groups the flushed lines by source, preserving order within each
// group, and sends one message per source asynchronously.
func (nm *notifyManager) dispatch(ctx context.Context, lines []source.Line) {
	grouped := make(map[string][]string)
	var order []string

	for _, l := range lines {
		if _, ok := grouped[l.Source]; !ok {
			order = append(order, l.Source)
		}
		grouped[l.Source] = append(grouped[l.Source], l.Text)
	}

	for _, src := range order {
		msg := notify.NewMessage(src, grouped[src])

		nm.wg.Add(1)
		go func() {
			defer nm.wg.Done()
			if err := nm.notifier.Notify(ctx, msg); err != nil {
				nm.logger.Error("failed to send notification.", "source", msg.Source, "id", msg.ID, "error", err)
				return
			}

			nm.logger.Debug("notification sent.", "source", msg.Source, "lines", len(msg.Lines), "id", msg.ID)
		}()
	}
}
