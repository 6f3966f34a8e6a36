package reply

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaypipe/redisasync/proto"
)

func TestSerializeNilReply(t *testing.T) {
	msg := Serialize(nil)
	require.Equal(t, KindNil, msg.Kind)
}

func TestSerializeScalars(t *testing.T) {
	cases := []struct {
		in   proto.Reply
		want Message
	}{
		{proto.Reply{Kind: proto.KindStatus, Str: "OK"}, Message{Kind: KindStatus, Str: "OK"}},
		{proto.Reply{Kind: proto.KindError, Str: "ERR bad"}, Message{Kind: KindError, Str: "ERR bad"}},
		{proto.Reply{Kind: proto.KindInteger, Int: 42}, Message{Kind: KindInteger, Int: 42}},
		{proto.Reply{Kind: proto.KindBool, Bool: true}, Message{Kind: KindBool, Bool: true}},
		{proto.Reply{Kind: proto.KindDouble, Str: "3.14"}, Message{Kind: KindDouble, Str: "3.14"}},
		{proto.Reply{Kind: proto.KindBigNum, Str: "12345678901234567890"}, Message{Kind: KindBigNum, Str: "12345678901234567890"}},
		{proto.Reply{Kind: proto.KindVerbatimString, Str: "hello"}, Message{Kind: KindVerbatimString, Str: "hello"}},
	}
	for _, c := range cases {
		got := Serialize(&c.in)
		require.Equal(t, c.want, got)
	}
}

func TestSerializeBinarySafeString(t *testing.T) {
	raw := []byte("\x00\r\n\x00")
	r := proto.Reply{Kind: proto.KindString, Bytes: raw}
	msg := Serialize(&r)
	require.Equal(t, KindString, msg.Kind)
	require.Equal(t, raw, msg.Bytes)

	// mutating the original buffer must not affect the serialized copy
	raw[0] = 'X'
	require.Equal(t, byte(0), msg.Bytes[0])
}

func TestSerializeEmptyArray(t *testing.T) {
	r := proto.Reply{Kind: proto.KindArray, Elems: []proto.Reply{}}
	msg := Serialize(&r)
	require.Equal(t, KindArray, msg.Kind)
	require.Len(t, msg.Elems, 0)
}

func TestSerializeNestedAggregate(t *testing.T) {
	r := proto.Reply{
		Kind: proto.KindArray,
		Elems: []proto.Reply{
			{Kind: proto.KindString, Bytes: []byte("a")},
			{Kind: proto.KindInteger, Int: 1},
			{Kind: proto.KindArray, Elems: []proto.Reply{
				{Kind: proto.KindStatus, Str: "OK"},
			}},
		},
	}
	msg := Serialize(&r)
	require.Equal(t, KindArray, msg.Kind)
	require.Len(t, msg.Elems, 3)
	require.Equal(t, []byte("a"), msg.Elems[0].Bytes)
	require.Equal(t, int64(1), msg.Elems[1].Int)
	require.Equal(t, "OK", msg.Elems[2].Elems[0].Str)
}

func TestSerializeIsIdempotent(t *testing.T) {
	r := proto.Reply{Kind: proto.KindString, Bytes: []byte("v")}
	first := Serialize(&r)
	// re-encoding an already-serialized Message through the same native
	// shape yields the same value.
	reencoded := Serialize(&proto.Reply{Kind: proto.KindString, Bytes: first.Bytes})
	require.Equal(t, first, reencoded)
}
