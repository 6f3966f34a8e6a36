package reply

import "github.com/relaypipe/redisasync/proto"

// Serialize performs a depth-first copy: byte strings are copied into
// owned buffers, scalars are copied by value, and aggregates are
// serialized recursively. The result owns all its storage and remains
// valid indefinitely, independent of whatever buffer r's byte slices may
// have aliased.
//
// A nil r (the protocol engine's "null reply") serializes to a Nil
// message.
func Serialize(r *proto.Reply) (msg Message) {
	defer func() {
		// Allocation failure during serialization downgrades to Nil
		// rather than leaking or propagating a panic across the
		// goroutine boundary.
		if recover() != nil {
			msg = Message{Kind: KindNil}
		}
	}()
	return serialize(r)
}

func serialize(r *proto.Reply) Message {
	if r == nil {
		return Message{Kind: KindNil}
	}
	switch r.Kind {
	case proto.KindNil:
		return Message{Kind: KindNil}
	case proto.KindStatus:
		return Message{Kind: KindStatus, Str: r.Str}
	case proto.KindError:
		return Message{Kind: KindError, Str: r.Str}
	case proto.KindInteger:
		return Message{Kind: KindInteger, Int: r.Int}
	case proto.KindDouble:
		return Message{Kind: KindDouble, Str: r.Str}
	case proto.KindBool:
		return Message{Kind: KindBool, Bool: r.Bool}
	case proto.KindBigNum:
		return Message{Kind: KindBigNum, Str: r.Str}
	case proto.KindVerbatimString:
		return Message{Kind: KindVerbatimString, Str: r.Str}
	case proto.KindString:
		return Message{Kind: KindString, Bytes: copyBytes(r.Bytes)}
	case proto.KindArray:
		return Message{Kind: KindArray, Elems: serializeElems(r.Elems)}
	case proto.KindMap:
		return Message{Kind: KindMap, Elems: serializeElems(r.Elems)}
	case proto.KindSet:
		return Message{Kind: KindSet, Elems: serializeElems(r.Elems)}
	case proto.KindPush:
		return Message{Kind: KindPush, Elems: serializeElems(r.Elems)}
	default:
		return Message{Kind: KindNil}
	}
}

func serializeElems(in []proto.Reply) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	for i := range in {
		out[i] = serialize(&in[i])
	}
	return out
}

func copyBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
