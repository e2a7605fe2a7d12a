package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one notification: the matched lines of a single source,
// collected by a scan pass or a follow-mode flush.
type Message struct {
	ID     uuid.UUID
	Source string
	Lines  []string
	Time   time.Time
}

// Notifier delivers a message to the configured recipients.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NewMessage stamps the lines of a source with an ID and the current time.
func NewMessage(source string, lines []string) Message {
	return Message{
		ID:     uuid.New(),
		Source: source,
		Lines:  lines,
		Time:   time.Now(),
	}
}

// Subject builds the one-line summary used as the email subject.
func Subject(msg Message) string {
	return fmt.Sprintf("[logwarden] %s: %d matched line(s)", msg.Source, len(msg.Lines))
}

// Body concatenates the matched lines in file order. Lines keep the
// terminators they were read with, so the body mirrors the log file.
func Body(msg Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Matched lines from %s at %s:\n\n", msg.Source, msg.Time.Format(time.RFC3339))
	for _, line := range msg.Lines {
		b.WriteString(line)
	}

	return b.String()
}
