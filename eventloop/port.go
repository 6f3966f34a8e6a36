package eventloop

import "github.com/relaypipe/redisasync/reply"

// Posted is the cross-thread payload: either the disconnect sentinel or a
// (command id, reply) pair.
type Posted struct {
	Disconnect bool
	CommandID  uint64
	Reply      reply.Message
}

// Port is the destination the poll goroutine posts Posted values to,
// consumed by a listener running on the host side. One Port is created per
// client and handed to exactly one State.
type Port struct {
	ch chan Posted
}

// NewPort returns a Port buffered generously enough that the poll
// goroutine's Post never has to wait on a slow consumer during an ordinary
// pipeline burst.
func NewPort() *Port {
	return &Port{ch: make(chan Posted, 4096)}
}

// Post delivers msg to the port's listener. May block if the listener has
// fallen far behind; this is the one place consumer back-pressure is
// allowed to reach the poll goroutine, and is preferable to unbounded
// buffering.
func (p *Port) Post(msg Posted) {
	p.ch <- msg
}

// C is the channel the listener receives from.
func (p *Port) C() <-chan Posted {
	return p.ch
}
