package processor

// LineProcessor transforms a matched log line before it reaches the
// notifier. Returning an empty string drops the line.
type LineProcessor interface {
	Name() string
	Process(line string) (string, error)
}
