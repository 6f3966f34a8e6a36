// Package internal holds a small sharded worker pool for short-lived
// host-regime tasks — the command client's flush microtask is the main
// customer — so a burst of submissions does not pay one goroutine spawn
// per scheduling turn. Tasks must be short: a task that blocks occupies
// its worker for the duration.
package internal

import "sync/atomic"

const shardN = 8
const backlog = 1024

var rr uint32
var workers []chan func()

func init() {
	workers = make([]chan func(), shardN)
	for i := range workers {
		ch := make(chan func(), backlog)
		workers[i] = ch
		go drain(ch)
	}
}

func drain(ch chan func()) {
	for f := range ch {
		f()
	}
}

// Go schedules f on one of the pool's workers. Shards are chosen
// round-robin; if the chosen shard's backlog is full, Go blocks on
// whichever of two shards frees up first rather than dropping the task.
func Go(f func()) {
	i := atomic.AddUint32(&rr, 1)
	select {
	case workers[i%shardN] <- f:
	default:
		select {
		case workers[i%shardN] <- f:
		case workers[(i+shardN/2)%shardN] <- f:
		}
	}
}
