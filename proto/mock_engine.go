package proto

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaypipe/redisasync/rediserr"
)

func timerTick() <-chan time.Time {
	return time.After(time.Millisecond)
}

// MockEngine is an in-memory Protocol Engine for tests: it never touches a
// socket, lets a test script supply replies on demand, and counts OnWrite
// calls so pipelining tests can assert that batching collapsed many
// submissions into few writes.
type MockEngine struct {
	// Script, if non-nil, supplies one reply per Submit call in order.
	// If shorter than the number of submissions, remaining replies are
	// KindStatus("OK") unless NoAutoReply is set.
	Script []Reply

	// NoAutoReply suppresses the default KindStatus("OK") reply once
	// Script is exhausted, so a submission past the end of Script never
	// resolves on its own — simulating a command like BLPOP that blocks
	// until something else (a disconnect) unblocks it.
	NoAutoReply bool

	lastCtx *mockContext
}

func NewMockEngine() *MockEngine { return &MockEngine{} }

func (m *MockEngine) Connect(ctx context.Context, addr string, opts ConnectOpts) (Context, error) {
	mc := &mockContext{engine: m}
	mc.connected.Store(true)
	m.lastCtx = mc
	return mc, nil
}

// lastCtx, pushTo and Push exist only so tests can inject
// server-initiated frames (pub/sub pushes) that were never triggered by a
// Submit call, the one shape of traffic a purely submit-driven script can't
// produce.
func (m *MockEngine) pushTo(r Reply) {
	if m.lastCtx == nil {
		return
	}
	m.lastCtx.mu.Lock()
	m.lastCtx.replies = append(m.lastCtx.replies, r)
	m.lastCtx.mu.Unlock()
}

// Push enqueues r to be returned by the most recently connected context's
// next OnRead, without requiring a matching Submit call.
func (m *MockEngine) Push(r Reply) { m.pushTo(r) }

type mockContext struct {
	engine *MockEngine

	mu        sync.Mutex
	submits   [][][]byte
	replies   []Reply
	pending   []Reply
	writeCnt  int32
	connected atomic.Bool
}

func (c *mockContext) Submit(argv [][]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected.Load() {
		return rediserr.SubmissionFailed.New("mock context disconnected")
	}
	c.submits = append(c.submits, argv)
	idx := len(c.submits) - 1
	if idx < len(c.engine.Script) {
		c.pending = append(c.pending, c.engine.Script[idx])
	} else if !c.engine.NoAutoReply {
		c.pending = append(c.pending, Reply{Kind: KindStatus, Str: "OK"})
	}
	return nil
}

func (c *mockContext) OnWrite() error {
	atomic.AddInt32(&c.writeCnt, 1)
	c.mu.Lock()
	ready := c.pending
	c.pending = nil
	c.replies = append(c.replies, ready...)
	c.mu.Unlock()
	return nil
}

// OnRead blocks (via a tight, yielding poll of the internal slice) until a
// reply is available or the context disconnects. Good enough for a test
// double; the real engine's OnRead blocks on a syscall instead.
func (c *mockContext) OnRead() (*Reply, error) {
	for {
		c.mu.Lock()
		if len(c.replies) > 0 {
			r := c.replies[0]
			c.replies = c.replies[1:]
			c.mu.Unlock()
			return &r, nil
		}
		connected := c.connected.Load()
		c.mu.Unlock()
		if !connected {
			return nil, rediserr.ConnectionLost.New("mock context disconnected")
		}
		// yield without busy-spinning the test suite's CPU
		<-timerTick()
	}
}

func (c *mockContext) Connected() bool { return c.connected.Load() }
func (c *mockContext) Disconnect()     { c.connected.Store(false) }
func (c *mockContext) Free()           {}
func (c *mockContext) LocalAddr() string  { return "mock-local" }
func (c *mockContext) RemoteAddr() string { return "mock-remote" }

// WriteCount returns how many times OnWrite has been called.
func (c *mockContext) WriteCount() int { return int(atomic.LoadInt32(&c.writeCnt)) }

// Submits returns a snapshot of every argv submitted so far, for assertions.
func (c *mockContext) Submits() [][][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][][]byte, len(c.submits))
	copy(out, c.submits)
	return out
}
