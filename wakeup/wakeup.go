// Package wakeup turns a "work pending" or "stop requested" event on any
// goroutine into a wakeup for the poll goroutine.
//
// A buffered channel of capacity one is the Go shape of a self-pipe:
// Wake's non-blocking send is the "write a byte", and a drained channel
// read is the "drain".
package wakeup

// Chan is a single-byte-equivalent wakeup channel. The zero value is not
// usable; construct with New.
type Chan struct {
	c chan struct{}
}

// New returns an idle wakeup channel.
func New() *Chan {
	return &Chan{c: make(chan struct{}, 1)}
}

// Wake is idempotent and non-blocking: if a wakeup is already pending, this
// call is a no-op, mirroring a full self-pipe being silently absorbed.
func (w *Chan) Wake() {
	select {
	case w.c <- struct{}{}:
	default:
	}
}

// C is the channel to select on alongside the protocol socket's readiness.
func (w *Chan) C() <-chan struct{} {
	return w.c
}

// Drain discards one pending wakeup, if any, after a select on C returns.
func (w *Chan) Drain() {
	select {
	case <-w.c:
	default:
	}
}
