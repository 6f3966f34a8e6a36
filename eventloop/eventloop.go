// Package eventloop ties the command queue, the wakeup channel, and the
// protocol engine together into one connection's lifecycle: the poll
// goroutine, the reply callback, and the cross-thread poster. Everything in
// package client and package pubsub is a thin façade over a State.
package eventloop

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid"

	"github.com/relaypipe/redisasync/internal/rlog"
	"github.com/relaypipe/redisasync/proto"
	"github.com/relaypipe/redisasync/queue"
	"github.com/relaypipe/redisasync/rediserr"
	"github.com/relaypipe/redisasync/reply"
	"github.com/relaypipe/redisasync/wakeup"
)

// State is the per-connection coordination object. Exactly one poll
// goroutine and one reader goroutine are attached to it for its lifetime;
// both are joined before Close returns.
type State struct {
	ID   string
	Addr string

	engine proto.Engine
	ctx    proto.Context

	mu sync.Mutex // guards Submit/OnWrite calls into the protocol context

	q    *queue.Queue
	wake *wakeup.Chan
	port *Port

	logger rlog.Logger

	fifo *fifo

	stop      atomic.Bool
	wg        sync.WaitGroup
	closeOnce sync.Once

	readerEvents chan readerEvent
}

type readerEvent struct {
	ci     *callbackInfo
	native *proto.Reply
	err    error
}

// Connect constructs the protocol context and returns a State ready to
// Start. Fails if the engine reports an error immediately after
// construction.
func Connect(ctx context.Context, engine proto.Engine, addr string, opts proto.ConnectOpts, port *Port, logger rlog.Logger) (*State, error) {
	if logger == nil {
		d := rlog.NewDefault()
		logger = d
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, rediserr.AllocationFailed.WrapWithNoMessage(err)
	}

	logger.Report(rlog.Connecting, id.String(), addr)
	pctx, err := engine.Connect(ctx, addr, opts)
	if err != nil {
		logger.Report(rlog.ConnectFailed, id.String(), addr, err)
		return nil, err
	}
	logger.Report(rlog.Connected, id.String(), addr, pctx.LocalAddr(), pctx.RemoteAddr())

	s := &State{
		ID:           id.String(),
		Addr:         addr,
		engine:       engine,
		ctx:          pctx,
		q:            queue.New(),
		wake:         wakeup.New(),
		port:         port,
		logger:       logger,
		fifo:         newFifo(),
		readerEvents: make(chan readerEvent, 1),
	}
	return s, nil
}

// Start spawns the poll goroutine and the reader goroutine. Must be called
// exactly once, after Connect.
func (s *State) Start() {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.readerLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.pollLoop()
	}()
}

// Enqueue pushes a node onto the command queue. Safe to call from any
// goroutine. Returns ClientClosed if the loop has already been told to
// stop.
//
// Enqueue deliberately does not wake the poll goroutine: the caller
// decides when to Wake, so a burst of submissions can be batched behind a
// single wakeup and drained into one pipelined write. The command client
// does this through its flush microtask; the subscription client wakes
// once after submitting its subscribe commands.
func (s *State) Enqueue(n *queue.Node) error {
	if s.stop.Load() {
		return rediserr.ClientClosed.New("event loop is closed")
	}
	s.q.Push(n)
	return nil
}

// Wake unblocks the poll goroutine so it drains whatever Enqueue has
// pushed since the last drain. Backs the command client's flush microtask
// and its explicit Flush.
func (s *State) Wake() {
	s.wake.Wake()
}

// Close is idempotent: it stops the poll goroutine, joins both goroutines,
// and releases the protocol context exactly once, no matter how many
// goroutines call Close or whether the loop already tore itself down after
// an unsolicited disconnect.
func (s *State) Close() {
	s.stop.Store(true)
	s.wake.Wake()
	s.closeOnce.Do(func() {
		s.wg.Wait()
		s.ctx.Free()
		s.logger.Report(rlog.ContextClosed, s.ID, s.Addr)
	})
}

// pollLoop owns all submission into the protocol context: it drains the
// command queue, flushes writes, and translates parsed replies into host
// posts. The blocking socket read lives on readerLoop; the two meet over
// readerEvents.
func (s *State) pollLoop() {
	for {
		if s.stop.Load() {
			s.teardown(rediserr.ClientClosed.New("client closed"))
			return
		}
		if !s.ctx.Connected() {
			s.teardown(rediserr.ConnectionLost.New("connection lost"))
			return
		}

		nodes := s.q.DrainAll()
		for _, n := range nodes {
			s.submitNode(n)
		}

		// Only flush when this iteration submitted something: iterations
		// woken by a parsed reply have no new output pending.
		if len(nodes) > 0 {
			s.mu.Lock()
			werr := s.ctx.OnWrite()
			s.mu.Unlock()
			if werr != nil {
				s.logger.Report(rlog.PollError, s.ID, s.Addr, werr)
				s.teardown(werr)
				return
			}
		}

		select {
		case <-s.wake.C():
			s.wake.Drain()
		case ev := <-s.readerEvents:
			if ev.err != nil {
				s.teardown(ev.err)
				return
			}
			s.mu.Lock()
			s.deliverReply(ev.ci, ev.native)
			s.mu.Unlock()
		}
	}
}

func (s *State) submitNode(n *queue.Node) {
	ci := &callbackInfo{port: s.port, commandID: n.CommandID, persistent: n.Persistent}

	s.mu.Lock()
	err := s.ctx.Submit(n.Argv)
	s.mu.Unlock()

	if err != nil {
		// Callback info destroyed on the spot: it never entered the
		// FIFO, so there is nothing further to clean up.
		s.logger.Report(rlog.PollError, s.ID, s.Addr, err)
		s.port.Post(Posted{CommandID: n.CommandID, Reply: errMessage(err)})
		return
	}
	s.fifo.push(ci)
}

// deliverReply serializes a native reply into an owned message and posts
// it, on the poll goroutine under the context mutex.
func (s *State) deliverReply(ci *callbackInfo, native *proto.Reply) {
	if ci == nil {
		// A reply arrived with nothing in the FIFO to match it against.
		// This can only happen if the server sent an unsolicited reply
		// (e.g. an out-of-band push on a non-subscribed connection);
		// there is no destination to post to, so it is dropped.
		return
	}
	if native == nil {
		ci.port.Post(Posted{CommandID: ci.commandID, Reply: reply.Message{Kind: reply.KindNil}})
		return
	}
	ci.port.Post(Posted{CommandID: ci.commandID, Reply: reply.Serialize(native)})
}

// readerLoop's only job is the blocking socket read and parse. It never
// touches the write side of ctx and never posts to the host port
// directly.
func (s *State) readerLoop() {
	defer close(s.readerEvents)
	for {
		r, err := s.ctx.OnRead()
		if err != nil {
			s.readerEvents <- readerEvent{err: err}
			return
		}
		ci := s.fifo.pop()
		s.readerEvents <- readerEvent{ci: ci, native: r}
	}
}

// teardown runs once, on the poll goroutine, the moment it decides to stop
// (either because Close was called or because the connection was lost).
// It fails every command still in flight and posts exactly one disconnect
// sentinel per State lifetime.
func (s *State) teardown(cause error) {
	s.stop.Store(true)
	s.ctx.Disconnect() // unblocks the reader goroutine's pending OnRead

	// The reader may still be blocked handing over a parsed reply; consume
	// until it observes the disconnect and closes the channel. Whatever it
	// parsed is dropped — the commands those replies belong to are failed
	// below or by the client's sentinel handling.
	for range s.readerEvents {
	}

	for _, n := range s.q.DrainAll() {
		s.port.Post(Posted{CommandID: n.CommandID, Reply: errMessage(cause)})
	}
	for _, ci := range s.fifo.drain() {
		ci.port.Post(Posted{CommandID: ci.commandID, Reply: errMessage(cause)})
	}

	s.logger.Report(rlog.Disconnected, s.ID, s.Addr, cause)
	s.port.Post(Posted{Disconnect: true})
}

func errMessage(err error) reply.Message {
	return reply.Message{Kind: reply.KindError, Str: err.Error()}
}
