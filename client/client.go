// Package client is the host-facing command client: the single entry point
// used to submit commands and receive their replies, built entirely on top
// of package eventloop.
package client

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/relaypipe/redisasync/eventloop"
	"github.com/relaypipe/redisasync/internal"
	"github.com/relaypipe/redisasync/internal/rlog"
	"github.com/relaypipe/redisasync/proto"
	"github.com/relaypipe/redisasync/queue"
	"github.com/relaypipe/redisasync/rediserr"
	"github.com/relaypipe/redisasync/reply"
)

// Client owns one connection (one eventloop.State) and multiplexes every
// caller's commands over it.
type Client struct {
	state *eventloop.State
	port  *eventloop.Port

	nextID atomic.Uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan reply.Message

	flushPending atomic.Bool
	closed       atomic.Bool
}

// Connect dials addr through engine and starts the event loop backing this
// client. Pass proto.NewConnEngine() for a real connection, or a
// proto.MockEngine in tests.
func Connect(ctx context.Context, engine proto.Engine, addr string, opts proto.ConnectOpts, logger rlog.Logger) (*Client, error) {
	port := eventloop.NewPort()
	st, err := eventloop.Connect(ctx, engine, addr, opts, port, logger)
	if err != nil {
		return nil, err
	}

	c := &Client{
		state:   st,
		port:    port,
		pending: make(map[uint64]chan reply.Message),
	}
	st.Start()
	go c.recvLoop()
	return c, nil
}

// Send submits a command (its argv already formatted) and blocks until the
// matching reply is posted back, the context is cancelled, or the
// connection is lost. The pending-table entry is the completion slot; Send
// is the await.
func (c *Client) Send(ctx context.Context, argv [][]byte) (reply.Message, error) {
	if c.closed.Load() {
		return reply.Message{}, rediserr.ClientClosed.New("client is closed")
	}
	if len(argv) == 0 {
		return reply.Message{}, rediserr.InvalidRequest.New("command requires at least one token")
	}

	id := c.nextID.Add(1)
	ch := make(chan reply.Message, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	n := &queue.Node{CommandID: id, Argv: argv}
	if err := c.state.Enqueue(n); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return reply.Message{}, err
	}
	c.scheduleFlush()

	select {
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return reply.Message{}, ctx.Err()
	case msg := <-ch:
		if msg.IsError() {
			return msg, msg
		}
		return msg, nil
	}
}

// Command formats name and args into an argv and sends it. Callers needing
// a raw command not covered by commands.go can reach for this directly.
func (c *Client) Command(ctx context.Context, name string, args ...interface{}) (reply.Message, error) {
	argv, err := formatArgv(name, args...)
	if err != nil {
		return reply.Message{}, err
	}
	return c.Send(ctx, argv)
}

// Flush forces the event loop to submit whatever is queued right now,
// without waiting for the scheduled microtask flush. Most callers never
// need this; it exists for host regimes that want to control batching
// explicitly.
func (c *Client) Flush() {
	c.state.Wake()
}

// scheduleFlush is the only thing that wakes the event loop on the command
// path: Send enqueues without waking, and the flush task records that a
// wakeup is owed. runtime.Gosched lets the rest of the current scheduling
// turn's synchronous work run before the wakeup fires, so a burst of N
// Send calls from concurrent goroutines typically produces one drain and
// one OnWrite rather than N. (Send blocks until its reply, so N calls made
// one after another from a single goroutine are N separate round trips.)
func (c *Client) scheduleFlush() {
	if c.flushPending.CompareAndSwap(false, true) {
		internal.Go(func() {
			runtime.Gosched()
			c.flushPending.Store(false)
			c.state.Wake()
		})
	}
}

// recvLoop drains the Port the event loop posts replies to and resolves
// each pending Send call as its reply arrives.
func (c *Client) recvLoop() {
	for p := range c.port.C() {
		if p.Disconnect {
			c.closed.Store(true)
			c.failAllPending(rediserr.ConnectionLost.New("connection lost"))
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[p.CommandID]
		if ok {
			delete(c.pending, p.CommandID)
		}
		c.pendingMu.Unlock()
		if !ok {
			// Reply for a command whose Send already gave up (context
			// cancelled); nothing left to deliver it to.
			continue
		}
		ch <- p.Reply
	}
}

func (c *Client) failAllPending(cause error) {
	msg := reply.Message{Kind: reply.KindError, Str: cause.Error()}
	c.pendingMu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]chan reply.Message)
	c.pendingMu.Unlock()
	for _, ch := range pending {
		ch <- msg
	}
}

// Close stops the event loop, joins its goroutines, and fails every command
// still waiting on a reply. Idempotent.
func (c *Client) Close() error {
	// No early return on c.closed: recvLoop also sets it after a
	// disconnect, and the event loop still has to be joined and freed.
	// State.Close is idempotent, and a repeated failAllPending finds an
	// empty table.
	c.closed.Store(true)
	c.state.Close()
	c.failAllPending(rediserr.ClientClosed.New("client closed"))
	return nil
}
