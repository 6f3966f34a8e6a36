// Package reply defines a value-typed, fully owned tree mirroring a Redis
// reply, safe to read from any goroutine at any time after it is
// constructed.
package reply

// Kind mirrors proto.Kind value for value; it is a separate type so that a
// Message exposes no proto type to its readers. The package imports proto
// only for Serialize's input. Nothing the protocol engine owns escapes the
// poll goroutine.
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

// Message is the owned reply tree. Exactly one of the typed fields is
// meaningful, selected by Kind; Elems is used for the four aggregate kinds
// (Array, Map — flattened key/value, even length — Set, Push).
type Message struct {
	Kind  Kind
	Int   int64
	Bool  bool
	Str   string
	Bytes []byte
	Elems []Message
}

// IsError reports whether this message represents a Redis error reply.
func (m Message) IsError() bool { return m.Kind == KindError }

// Error implements the error interface so a Message of KindError can be
// surfaced as a plain Go error by callers that don't care about the rest
// of the Reply Message shape.
func (m Message) Error() string { return m.Str }
