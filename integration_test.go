package redisasync_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaypipe/redisasync/client"
	"github.com/relaypipe/redisasync/proto"
	"github.com/relaypipe/redisasync/pubsub"
	"github.com/relaypipe/redisasync/reply"
	"github.com/relaypipe/redisasync/testbed"
)

func startServer(t *testing.T, port uint16) *testbed.Server {
	t.Helper()
	if testbed.Binary == "" {
		t.Skip("redis-server not found in PATH")
	}
	testbed.InitDir("")
	srv := &testbed.Server{Port: port}
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func TestEcho(t *testing.T) {
	srv := startServer(t, 16380)

	ctx := context.Background()
	c, err := client.Connect(ctx, proto.NewConnEngine(), srv.Addr(), proto.ConnectOpts{}, nil)
	require.NoError(t, err)
	defer c.Close()

	msg, err := c.Ping(ctx)
	require.NoError(t, err)
	require.Equal(t, reply.KindStatus, msg.Kind)
	require.Equal(t, "PONG", msg.Str)
}

func TestBinarySafeRoundTrip(t *testing.T) {
	srv := startServer(t, 16381)

	ctx := context.Background()
	c, err := client.Connect(ctx, proto.NewConnEngine(), srv.Addr(), proto.ConnectOpts{}, nil)
	require.NoError(t, err)
	defer c.Close()

	val := []byte("\x00\r\n\x00")
	set, err := c.Set(ctx, "bink", val)
	require.NoError(t, err)
	require.Equal(t, "OK", set.Str)

	got, err := c.Get(ctx, "bink")
	require.NoError(t, err)
	require.Equal(t, reply.KindString, got.Kind)
	require.Equal(t, val, got.Bytes)

	// cross-check through an independent raw connection, so the value seen
	// on the server does not depend on this module's own reader
	raw, err := testbed.Do(srv.Addr(), "GET", "bink")
	require.NoError(t, err)
	require.Equal(t, proto.KindString, raw.Kind)
	require.Equal(t, val, raw.Bytes)
}

func TestManyPipelinedSets(t *testing.T) {
	srv := startServer(t, 16382)

	ctx := context.Background()
	c, err := client.Connect(ctx, proto.NewConnEngine(), srv.Addr(), proto.ConnectOpts{}, nil)
	require.NoError(t, err)
	defer c.Close()

	const n = 1000
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			_, err := c.Set(ctx, fmt.Sprintf("pipe:%d", i), i)
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	got, err := c.Get(ctx, "pipe:999")
	require.NoError(t, err)
	require.Equal(t, "999", string(got.Bytes))
}

func TestPubSubDelivery(t *testing.T) {
	srv := startServer(t, 16383)

	ctx := context.Background()
	sub, err := pubsub.Subscribe(ctx, proto.NewConnEngine(), srv.Addr(), proto.ConnectOpts{}, []string{"c"}, nil, nil)
	require.NoError(t, err)
	defer sub.Close()

	// wait for the subscribe confirmation before publishing, or the
	// published messages may race the subscription registration
	select {
	case m := <-sub.Messages():
		require.Equal(t, pubsub.TypeSubscribe, m.Type)
		require.Equal(t, "c", m.Channel)
	case <-time.After(2 * time.Second):
		t.Fatal("never received subscribe confirmation")
	}

	pubc, err := client.Connect(ctx, proto.NewConnEngine(), srv.Addr(), proto.ConnectOpts{}, nil)
	require.NoError(t, err)
	defer pubc.Close()

	want := []string{"m0", "m1", "m2", "m3", "m4"}
	for _, m := range want {
		_, err := pubc.Publish(ctx, "c", m)
		require.NoError(t, err)
	}

	for _, w := range want {
		select {
		case m := <-sub.Messages():
			require.Equal(t, pubsub.TypeMessage, m.Type)
			require.Equal(t, "c", m.Channel)
			require.Equal(t, w, m.Payload())
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for published message %q", w)
		}
	}
}
