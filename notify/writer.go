package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints messages to a writer instead of sending mail.
// Used for dry runs and as the stdout notifier type.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.w, "%s\n%s\n", Subject(msg), Body(msg)); err != nil {
		return fmt.Errorf("cannot write notification %s: %w", msg.ID, err)
	}

	return nil
}
