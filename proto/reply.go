// Package proto is the wire-protocol boundary. Connect, Submit, OnWrite
// and OnRead are the engine's entry points; everything above this package
// (eventloop, client, pubsub) only ever talks to the Engine/Context
// interfaces, never to net.Conn or bufio directly, so it can be driven by
// the mock engine in tests.
package proto

// Kind enumerates the Redis reply shapes, RESP2 and RESP3 alike.
type Kind int

const (
	KindNil Kind = iota
	KindStatus
	KindError
	KindInteger
	KindDouble
	KindBool
	KindBigNum
	KindVerbatimString
	KindString
	KindArray
	KindMap
	KindSet
	KindPush
)

// Reply is the protocol engine's native reply representation: the value
// handed to a registered callback by OnRead, valid only until that call
// returns. Byte-string fields (Bytes, and the Elems they reach through)
// may alias the engine's internal read buffer and must be copied by
// anything that wants to retain them past the callback — which is exactly
// what reply.Serialize (driven from eventloop's poll goroutine) does.
type Reply struct {
	Kind  Kind
	Int   int64
	Bool  bool
	Str   string // Status / Error / Double / BigNum / VerbatimString text
	Bytes []byte // String (bulk string) payload; may alias a scratch buffer
	Elems []Reply
}
