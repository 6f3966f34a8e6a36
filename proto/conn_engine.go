package proto

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relaypipe/redisasync/rediserr"
)

const defaultIOTimeout = 1 * time.Second

// connEngine is the default Engine, dialing a real TCP or Unix socket.
// Handshake order is AUTH, then HELLO or PING, then SELECT.
type connEngine struct{}

// NewConnEngine returns the default, network-backed Protocol Engine.
func NewConnEngine() Engine {
	return connEngine{}
}

func (connEngine) Connect(ctx context.Context, addr string, opts ConnectOpts) (Context, error) {
	network := "tcp"
	switch {
	case strings.HasPrefix(addr, "unix://"):
		network, addr = "unix", addr[len("unix://"):]
	case strings.HasPrefix(addr, "tcp://"):
		addr = addr[len("tcp://"):]
	case strings.HasPrefix(addr, "/"), strings.HasPrefix(addr, "."):
		network = "unix"
	}

	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout, KeepAlive: opts.TCPKeepAlive}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, rediserr.ConnectionFailed.WrapWithNoMessage(err)
	}

	ioTimeout := opts.IOTimeout
	if ioTimeout == 0 {
		ioTimeout = defaultIOTimeout
	} else if ioTimeout < 0 {
		ioTimeout = 0
	}

	c := &connContext{
		conn:      conn,
		ioTimeout: ioTimeout,
		r:         bufio.NewReaderSize(conn, 64*1024),
		w:         bufio.NewWriterSize(conn, 64*1024),
	}
	c.connected.Store(true)

	if err := c.handshake(opts); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

type connContext struct {
	conn      net.Conn
	ioTimeout time.Duration
	r         *bufio.Reader

	wmu sync.Mutex
	w   *bufio.Writer

	connected atomic.Bool
}

func (c *connContext) handshake(opts ConnectOpts) error {
	c.setDeadline()
	if opts.Password != "" {
		if err := c.rawSend([][]byte{[]byte("AUTH"), []byte(opts.Password)}); err != nil {
			return err
		}
		res, err := readReply(c.r)
		if err != nil {
			return rediserr.ConnectionFailed.WrapWithNoMessage(err)
		}
		if res.Kind == KindError {
			return rediserr.ConnectionFailed.New("AUTH failed: %s", res.Str)
		}
	}
	if opts.EnableRESP3 {
		if err := c.rawSend([][]byte{[]byte("HELLO"), []byte("3")}); err != nil {
			return err
		}
		if _, err := readReply(c.r); err != nil {
			return rediserr.ConnectionFailed.WrapWithNoMessage(err)
		}
	} else {
		if err := c.rawSend([][]byte{[]byte("PING")}); err != nil {
			return err
		}
		res, err := readReply(c.r)
		if err != nil {
			return rediserr.ConnectionFailed.WrapWithNoMessage(err)
		}
		if res.Kind != KindStatus || res.Str != "PONG" {
			return rediserr.ConnectionFailed.New("unexpected PING response during handshake")
		}
	}
	if opts.DB != 0 {
		if err := c.rawSend([][]byte{[]byte("SELECT"), []byte(strconv.Itoa(opts.DB))}); err != nil {
			return err
		}
		res, err := readReply(c.r)
		if err != nil {
			return rediserr.ConnectionFailed.WrapWithNoMessage(err)
		}
		if res.Kind != KindStatus || res.Str != "OK" {
			return rediserr.ConnectionFailed.New("SELECT failed during handshake")
		}
	}
	return nil
}

func (c *connContext) rawSend(argv [][]byte) error {
	buf := appendRequest(nil, argv)
	c.setDeadline()
	if _, err := c.w.Write(buf); err != nil {
		c.markDisconnected()
		return rediserr.ConnectionFailed.WrapWithNoMessage(err)
	}
	if err := c.w.Flush(); err != nil {
		c.markDisconnected()
		return rediserr.ConnectionFailed.WrapWithNoMessage(err)
	}
	return nil
}

func (c *connContext) setDeadline() {
	if c.ioTimeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.ioTimeout))
	}
}

func (c *connContext) markDisconnected() {
	c.connected.Store(false)
}

// Submit formats argv into the pending output buffer. Only called from the
// poll goroutine.
func (c *connContext) Submit(argv [][]byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	buf := appendRequest(nil, argv)
	if c.ioTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.ioTimeout))
	}
	if _, err := c.w.Write(buf); err != nil {
		c.markDisconnected()
		return rediserr.SubmissionFailed.WrapWithNoMessage(err)
	}
	return nil
}

// OnWrite flushes buffered output. Only called from the poll goroutine.
func (c *connContext) OnWrite() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.w.Buffered() == 0 {
		return nil
	}
	if err := c.w.Flush(); err != nil {
		c.markDisconnected()
		return rediserr.SubmissionFailed.WrapWithNoMessage(err)
	}
	return nil
}

// OnRead blocks for the next reply. Only called from the reader goroutine.
func (c *connContext) OnRead() (*Reply, error) {
	if c.ioTimeout > 0 {
		c.conn.SetReadDeadline(time.Time{}) // reads may legitimately block a long time (BLPOP etc.)
	}
	r, err := readReply(c.r)
	if err != nil {
		c.markDisconnected()
		return nil, err
	}
	return r, nil
}

func (c *connContext) Connected() bool { return c.connected.Load() }

func (c *connContext) Disconnect() {
	c.markDisconnected()
	c.conn.Close()
}

func (c *connContext) Free() {}

func (c *connContext) LocalAddr() string  { return c.conn.LocalAddr().String() }
func (c *connContext) RemoteAddr() string { return c.conn.RemoteAddr().String() }
