package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaypipe/redisasync/proto"
)

func TestSubscribeRejectsEmptyChannelsAndPatterns(t *testing.T) {
	engine := proto.NewMockEngine()
	_, err := Subscribe(context.Background(), engine, "mock:0", proto.ConnectOpts{}, nil, nil, nil)
	require.Error(t, err)
}

func TestSubscribeDecodesMessageFrames(t *testing.T) {
	script := []proto.Reply{
		{Kind: proto.KindArray, Elems: []proto.Reply{
			{Kind: proto.KindString, Bytes: []byte("subscribe")},
			{Kind: proto.KindString, Bytes: []byte("c")},
			{Kind: proto.KindInteger, Int: 1},
		}},
	}
	engine := &proto.MockEngine{Script: script}
	sub, err := Subscribe(context.Background(), engine, "mock:0", proto.ConnectOpts{}, []string{"c"}, nil, nil)
	require.NoError(t, err)
	defer sub.Close()

	var got []*Msg
	for i := 0; i < 1; i++ {
		select {
		case m := <-sub.Messages():
			got = append(got, m)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}

	// The push below arrives unsolicited (a real pub/sub message, not a
	// reply to anything this connection submitted).
	engine.Push(proto.Reply{Kind: proto.KindArray, Elems: []proto.Reply{
		{Kind: proto.KindString, Bytes: []byte("message")},
		{Kind: proto.KindString, Bytes: []byte("c")},
		{Kind: proto.KindString, Bytes: []byte("hello")},
	}})
	select {
	case m := <-sub.Messages():
		got = append(got, m)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pushed message")
	}

	require.Equal(t, TypeSubscribe, got[0].Type)
	require.Equal(t, "c", got[0].Channel)

	require.Equal(t, TypeMessage, got[1].Type)
	require.Equal(t, "c", got[1].Channel)
	require.Equal(t, "hello", got[1].Payload())
}

func TestSubscribeClosePreventsFurtherReceives(t *testing.T) {
	engine := proto.NewMockEngine()
	sub, err := Subscribe(context.Background(), engine, "mock:0", proto.ConnectOpts{}, []string{"c"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Messages():
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("messages channel was never closed after Close")
	}
}
