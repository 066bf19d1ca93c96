package httpapi

import (
	"fmt"
	"net/http"
	"sync"

	"newspulse/internal/hub"
)

// streamConn adapts one SSE response to hub.Conn. Send serializes writes and
// fails permanently once the request context ends.
type streamConn struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

var _ hub.Conn = (*streamConn)(nil)

func newStreamConn(w http.ResponseWriter, flusher http.Flusher) *streamConn {
	return &streamConn{w: w, flusher: flusher}
}

// Send writes one SSE data frame.
func (c *streamConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("stream closed")
	}
	if _, err := fmt.Fprintf(c.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	c.flusher.Flush()
	return nil
}

func (c *streamConn) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
