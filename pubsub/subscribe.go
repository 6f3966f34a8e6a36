// Package pubsub delivers pub/sub messages as a lazy sequence backed by a
// dedicated connection per subscription: SUBSCRIBE/PSUBSCRIBE are submitted
// with a persistent callback info, and the resulting stream of pushes is
// decoded into a channel of Msg values.
package pubsub

import (
	"context"
	"sync"

	"github.com/relaypipe/redisasync/eventloop"
	"github.com/relaypipe/redisasync/internal/rlog"
	"github.com/relaypipe/redisasync/proto"
	"github.com/relaypipe/redisasync/queue"
	"github.com/relaypipe/redisasync/rediserr"
	"github.com/relaypipe/redisasync/reply"
)

// Type identifies which of the six pub/sub frame shapes a Msg decodes.
type Type int

const (
	TypeMessage Type = iota
	TypePMessage
	TypeSubscribe
	TypeUnsubscribe
	TypePSubscribe
	TypePUnsubscribe
)

// Msg is a decoded pub/sub frame. Channel is decoded eagerly (read on
// almost every message); Payload and Pattern are decoded lazily on first
// access, since many callers never touch one or the other. A Msg is handed
// to exactly one observer; the lazy accessors are not synchronized.
type Msg struct {
	Type    Type
	Channel string

	rawPayload []byte
	payload    string
	payloadSet bool

	rawPattern []byte
	pattern    string
	patternSet bool
}

// Payload returns the message body, decoding it from its raw bytes the
// first time it is called.
func (m *Msg) Payload() string {
	if !m.payloadSet {
		m.payload = string(m.rawPayload)
		m.payloadSet = true
	}
	return m.payload
}

// Pattern returns the matched pattern for a TypePMessage, decoding it
// lazily. Empty for every other Type.
func (m *Msg) Pattern() string {
	if !m.patternSet {
		m.pattern = string(m.rawPattern)
		m.patternSet = true
	}
	return m.pattern
}

// Subscription is the handle returned by Subscribe: a dedicated event loop
// plus the decode loop feeding its lazy sequence of Msg values.
type Subscription struct {
	state  *eventloop.State
	port   *eventloop.Port
	logger rlog.Logger

	messages chan *Msg

	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe opens a fresh connection, sends SUBSCRIBE for channels and
// PSUBSCRIBE for patterns using a persistent Callback Info, and returns a
// Subscription whose Messages channel receives every decoded frame until
// Close is called or the connection is lost. At least one channel or
// pattern must be given.
func Subscribe(ctx context.Context, engine proto.Engine, addr string, opts proto.ConnectOpts, channels, patterns []string, logger rlog.Logger) (*Subscription, error) {
	if len(channels) == 0 && len(patterns) == 0 {
		return nil, rediserr.InvalidRequest.New("subscribe requires at least one channel or pattern")
	}
	if logger == nil {
		logger = rlog.NewDefault()
	}

	port := eventloop.NewPort()
	st, err := eventloop.Connect(ctx, engine, addr, opts, port, logger)
	if err != nil {
		return nil, err
	}
	st.Start()

	s := &Subscription{
		state:    st,
		port:     port,
		logger:   logger,
		messages: make(chan *Msg, 64),
		done:     make(chan struct{}),
	}

	var id uint64 = 1
	if len(channels) > 0 {
		argv := make([][]byte, 0, len(channels)+1)
		argv = append(argv, []byte("SUBSCRIBE"))
		for _, c := range channels {
			argv = append(argv, []byte(c))
		}
		if err := st.Enqueue(&queue.Node{CommandID: id, Argv: argv, Persistent: true}); err != nil {
			st.Close()
			return nil, err
		}
		id++
	}
	if len(patterns) > 0 {
		argv := make([][]byte, 0, len(patterns)+1)
		argv = append(argv, []byte("PSUBSCRIBE"))
		for _, p := range patterns {
			argv = append(argv, []byte(p))
		}
		if err := st.Enqueue(&queue.Node{CommandID: id, Argv: argv, Persistent: true}); err != nil {
			st.Close()
			return nil, err
		}
	}
	st.Wake()
	logger.Report(rlog.SubscriptionOpened, st.ID, addr, channels, patterns)

	go s.recvLoop()
	return s, nil
}

// Messages is the lazy sequence of decoded pub/sub frames.
func (s *Subscription) Messages() <-chan *Msg {
	return s.messages
}

// Close detaches the observer and tears down the dedicated event loop.
// Idempotent.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.logger.Report(rlog.SubscriptionClosed, s.state.ID, s.state.Addr)
	})
	s.state.Close()
	return nil
}

func (s *Subscription) recvLoop() {
	defer close(s.messages)
	for {
		select {
		case <-s.done:
			return
		case p := <-s.port.C():
			if p.Disconnect {
				return
			}
			msg, ok := decode(p.Reply)
			if !ok {
				continue
			}
			select {
			case s.messages <- msg:
			case <-s.done:
				return
			}
		}
	}
}

// decode recognises exactly the six pub/sub frame shapes, dispatching on
// the leading type-tag element. Dispatch-by-length alone would be
// ambiguous: only pmessage has a unique element count, the other five all
// arrive as three-element arrays.
func decode(r reply.Message) (*Msg, bool) {
	if r.Kind != reply.KindArray && r.Kind != reply.KindPush {
		return nil, false
	}
	if len(r.Elems) < 3 {
		return nil, false
	}
	tag := elemBytes(r.Elems[0])

	switch string(tag) {
	case "message":
		if len(r.Elems) != 3 {
			return nil, false
		}
		return &Msg{Type: TypeMessage, Channel: string(elemBytes(r.Elems[1])), rawPayload: elemBytes(r.Elems[2])}, true
	case "pmessage":
		if len(r.Elems) != 4 {
			return nil, false
		}
		return &Msg{
			Type:       TypePMessage,
			rawPattern: elemBytes(r.Elems[1]),
			Channel:    string(elemBytes(r.Elems[2])),
			rawPayload: elemBytes(r.Elems[3]),
		}, true
	case "subscribe":
		return &Msg{Type: TypeSubscribe, Channel: string(elemBytes(r.Elems[1]))}, true
	case "unsubscribe":
		return &Msg{Type: TypeUnsubscribe, Channel: string(elemBytes(r.Elems[1]))}, true
	case "psubscribe":
		return &Msg{Type: TypePSubscribe, Channel: string(elemBytes(r.Elems[1]))}, true
	case "punsubscribe":
		return &Msg{Type: TypePUnsubscribe, Channel: string(elemBytes(r.Elems[1]))}, true
	default:
		return nil, false
	}
}

// elemBytes returns the byte payload of a reply element regardless of
// whether the wire encoded it as a bulk string (Bytes) or a simple status
// (Str) — Redis pub/sub frames use bulk strings, but the helper tolerates
// either so a debug build of the server talking RESP3 push frames still
// decodes.
func elemBytes(m reply.Message) []byte {
	if m.Bytes != nil {
		return m.Bytes
	}
	return []byte(m.Str)
}
