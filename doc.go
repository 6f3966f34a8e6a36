/*
Package redisasync is an asynchronous Redis command dispatch engine: a
two-goroutine coordination layer that sits between host-scheduler tasks and
a non-blocking Redis protocol implementation.

https://redis.io/topics/pipelining

It is built around four pieces, leaves first:

- package queue, a lock-free multi-producer/single-consumer command queue,

- package wakeup, a self-pipe-style signal used to unblock the poll
goroutine without busy-waiting,

- package proto, the Protocol Engine boundary (Connect/Submit/OnWrite/OnRead)
plus a real TCP/Unix implementation and a scriptable mock for tests,

- package eventloop, the poll goroutine, reply callback, and cross-thread
poster that tie the above together into one connection's lifecycle.

On top of the event loop sit the two user-facing façades:

- package client, the Command Client: allocates command ids, tracks
pending completions, batches same-turn submissions into one flush, and
exposes both a raw Command/Send call and mechanical convenience wrappers
(Get, Set, Del, HGet, ...),

- package pubsub, the Subscription Client: a dedicated connection per
subscription that decodes the Redis pub/sub wire frames into a channel of
Msg values.

Structure

- root package is empty

- low-level coordination primitives are in queue, wakeup, proto, eventloop

- the public surface is client and pubsub

Usage

client.Connect dials a connection and starts its event loop; the returned
*Client is safe to call from any number of goroutines concurrently — every
Command call is multiplexed over the one underlying connection, and the
library automatically batches commands issued within the same scheduling
turn into a single pipelined write.

Types accepted as command arguments: nil, []byte, string, int (and all
other integer types), float64, float32, bool. All arguments are converted
to redis bulk strings as usual (ie string and bytes - as is; numbers - in
decimal notation); bool converts as "0"/"1", nil converts to an empty
string.

Results are returned as reply.Message, a value-typed tree mirroring the
RESP2/RESP3 reply shapes (Nil, Status, Error, Integer, Double, Bool,
BigNum, VerbatimString, String, Array, Map, Set, Push) rather than a bag of
plain Go types, so a caller that cares about the distinction between (say)
a RESP3 Double and a bulk string can still observe it.

IO, connection, and other errors are not returned separately but surface
as an *errorx.Error, either from the call that triggered them or, for
commands already in flight when the connection is lost, as the reply's
Error message.

Limitations

- SUBSCRIBE and PSUBSCRIBE are intentionally not exposed on *Client: a
Redis connection in subscribe mode accepts only subscription-management
commands, so mixing the two modes on one connection is a foot-gun this
library avoids at the API level. Use package pubsub instead, which opens
its own dedicated connection per subscription.

- cluster routing, replica discovery, TLS, and reconnection policy are
out of scope; callers that need them should wrap *Client accordingly.
*/
package redisasync
