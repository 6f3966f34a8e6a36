// Package rlog is the ambient logging hook for the event loop and its
// clients: an event-kind enum plus a Report method taking free-form
// arguments. The default implementation is backed by zap; callers wanting
// different routing supply their own Logger.
package rlog

import "go.uber.org/zap"

// Kind enumerates loggable events across the connection lifecycle.
type Kind int

const (
	Connecting Kind = iota
	Connected
	ConnectFailed
	Disconnected
	ContextClosed
	PollError
	SubscriptionOpened
	SubscriptionClosed
	MAX
)

// Logger receives lifecycle notifications. connID is the event loop's
// stable connection identifier (see eventloop.State.ID), not a pointer,
// so log lines survive reconnection and copy cleanly across goroutines.
type Logger interface {
	Report(event Kind, connID, addr string, v ...interface{})
}

// Default is a zap-backed Logger, used whenever callers do not supply
// their own.
type Default struct {
	z *zap.SugaredLogger
}

// NewDefault builds a Default logger around a production zap config,
// falling back to a no-op logger if zap itself cannot initialize (should
// not happen outside of broken environments, but we never want logging
// setup to prevent a connection from being established).
func NewDefault() Default {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return Default{z: l.Sugar()}
}

func (d Default) Report(event Kind, connID, addr string, v ...interface{}) {
	fields := []interface{}{"conn_id", connID, "addr", addr}
	switch event {
	case Connecting:
		d.z.Infow("redisasync: connecting", fields...)
	case Connected:
		d.z.Infow("redisasync: connected", append(fields, "local", v[0], "remote", v[1])...)
	case ConnectFailed:
		d.z.Warnw("redisasync: connect failed", append(fields, "error", v[0])...)
	case Disconnected:
		d.z.Warnw("redisasync: disconnected", append(fields, "error", v[0])...)
	case ContextClosed:
		d.z.Infow("redisasync: closed", fields...)
	case PollError:
		d.z.Errorw("redisasync: poll error", append(fields, "error", v[0])...)
	case SubscriptionOpened:
		d.z.Infow("redisasync: subscription opened", append(fields, "channels", v[0], "patterns", v[1])...)
	case SubscriptionClosed:
		d.z.Infow("redisasync: subscription closed", fields...)
	default:
		d.z.Infow("redisasync: unhandled log event", append(fields, "event", event, "args", v)...)
	}
}
