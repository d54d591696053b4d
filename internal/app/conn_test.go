package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/mockorbit/interviewd/internal/core"
)

// testConn is an in-memory core.Connection with a bounded queue.
type testConn struct {
	id  core.ConnID
	cap int

	mu     sync.Mutex
	frames []core.Frame
	closed bool
	code   int
}

func newConn(id string) *testConn { return &testConn{id: core.ConnID(id), cap: 1 << 20} }

func (c *testConn) ID() core.ConnID { return c.id }

func (c *testConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	if len(c.frames) >= c.cap {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *testConn) Close(code int, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed, c.code = true, code
	}
}

func (c *testConn) closeCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// messages decodes every queued frame.
func (c *testConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("bad frame %s: %v", f, err)
		}
		out = append(out, m)
	}
	return out
}

func (c *testConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, m := range c.messages(t) {
		out = append(out, m["type"].(string))
	}
	return out
}
