package progress

import (
	"context"
	"fmt"
	"io"
	"sync"

	"poke-battle-logger/domain/progress"
)

// WriterReporter prints updates as indented terminal lines
type WriterReporter struct {
	mu     sync.Mutex
	output io.Writer
}

// NewWriterReporter creates a reporter printing to output
func NewWriterReporter(output io.Writer) *WriterReporter {
	return &WriterReporter{output: output}
}

// Report implements progress.Reporter
func (w *WriterReporter) Report(ctx context.Context, u progress.Update) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	line := fmt.Sprintf("      %s %3d%%", u.Stage, u.Percent)
	if u.Message != "" {
		line += " " + u.Message
	}
	_, err := fmt.Fprintln(w.output, line)
	return err
}

// Ensure WriterReporter implements progress.Reporter
var _ progress.Reporter = (*WriterReporter)(nil)
