package eventloop

import "sync"

// callbackInfo is the small record associated with each submitted command
// so the reply callback can find its destination.
//
// Ephemeral callback infos (persistent == false) are popped off the
// in-flight FIFO and forgotten the moment their one reply arrives.
// Persistent ones (subscriptions) are peeked, not popped, so every
// subsequent reply on that connection keeps matching the same entry —
// there is no second SUBSCRIBE per incoming pub/sub message to attach a
// fresh callback info to.
type callbackInfo struct {
	port       *Port
	commandID  uint64
	persistent bool
}

// fifo is the in-flight callback-info queue: pushed to by the poll
// goroutine as it submits nodes, popped/peeked by the reader goroutine as
// it matches parsed replies to their destination.
type fifo struct {
	mu    sync.Mutex
	items []*callbackInfo
}

func newFifo() *fifo {
	return &fifo{}
}

func (f *fifo) push(ci *callbackInfo) {
	f.mu.Lock()
	f.items = append(f.items, ci)
	f.mu.Unlock()
}

// pop returns the head entry, removing it unless it is persistent.
// Returns nil if the FIFO is empty (a reply with nothing to match, which
// should not happen in a well-behaved RESP session but is handled rather
// than trusted away).
func (f *fifo) pop() *callbackInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return nil
	}
	ci := f.items[0]
	if !ci.persistent {
		f.items = f.items[1:]
	}
	return ci
}

// drain empties the FIFO, returning whatever was left (used by teardown to
// fail every still-outstanding command).
func (f *fifo) drain() []*callbackInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	return out
}
