package logger

import (
	"strings"
	"sync"
)

// Capture is an io.Writer that accumulates log lines in memory so the
// presentation layer can show them after a processing run. It replaces the
// process-global debug list with a sink that is passed in explicitly.
type Capture struct {
	mu    sync.Mutex
	lines []string
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// Write implements io.Writer. Each write is treated as one log line.
func (c *Capture) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
	return len(p), nil
}

// Lines returns a copy of the accumulated log lines in append order.
func (c *Capture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Reset discards all accumulated lines.
func (c *Capture) Reset() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Len reports how many lines have been captured.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
