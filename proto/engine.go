package proto

import (
	"context"
	"time"
)

// ConnectOpts configures a single connection.
type ConnectOpts struct {
	DB           int
	Password     string
	DialTimeout  time.Duration
	IOTimeout    time.Duration
	TCPKeepAlive time.Duration
	// EnableRESP3 sends HELLO 3 right after connecting. If the server
	// doesn't understand it, the engine falls back to RESP2 silently.
	// RESP3 support covers type decoding only; push frames are forwarded
	// like any other aggregate.
	EnableRESP3 bool
}

// Engine constructs Contexts. The default engine (NewConnEngine) dials a
// real TCP/Unix socket; tests substitute NewMockEngine.
type Engine interface {
	Connect(ctx context.Context, addr string, opts ConnectOpts) (Context, error)
}

// Context is the protocol context, owned exclusively by a single
// eventloop.State for its lifetime. Submit/OnWrite
// are called only from the poll goroutine; OnRead is called only from the
// reader goroutine. The two never race because Submit/OnWrite only ever
// touch the write side (output buffer, socket write) and OnRead only ever
// touches the read side (socket read, parse buffer) of the same
// connection — there is no shared mutable state between them beyond the
// net.Conn itself, which supports concurrent Read/Write by construction.
type Context interface {
	// Submit formats argv into the context's pending output buffer. It
	// does not perform I/O; OnWrite flushes whatever Submit has
	// accumulated.
	Submit(argv [][]byte) error
	// OnWrite flushes pending output to the socket. Returns nil if there
	// was nothing pending.
	OnWrite() error
	// OnRead blocks until one full reply has been parsed off the socket
	// and returns it. Returns an error if the read failed or the
	// connection closed.
	OnRead() (*Reply, error)
	// Connected reports whether the context still believes it has a live
	// socket. It goes false the moment OnRead/OnWrite observe an I/O
	// error, even before Disconnect is called.
	Connected() bool
	// Disconnect closes the underlying socket without releasing Go-level
	// resources; safe to call more than once.
	Disconnect()
	// Free releases the context. Must only be called after the poll and
	// reader goroutines have both stopped touching it.
	Free()

	LocalAddr() string
	RemoteAddr() string
}
