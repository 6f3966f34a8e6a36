// Package rediserr defines the error kinds surfaced by this module on top
// of github.com/joomcode/errorx: kind plus arbitrary properties, with
// errors.Is/As support and stack capture for free.
package rediserr

import (
	"github.com/joomcode/errorx"
)

// Namespace roots every error kind defined by this package.
var Namespace = errorx.NewNamespace("redisasync")

var (
	// ConnectionFailed: Connect's protocol engine reported a non-zero
	// error flag immediately after construction.
	ConnectionFailed = Namespace.NewType("connection_failed")
	// AllocationFailed: an internal allocation (callback info, command
	// node, cross-thread payload) could not be recovered from.
	AllocationFailed = Namespace.NewType("allocation_failed")
	// SubmissionFailed: Submit returned non-success for a drained node.
	SubmissionFailed = Namespace.NewType("submission_failed")
	// ReplyError: the reply's type was the Redis error variant.
	ReplyError = Namespace.NewType("reply_error")
	// NullReply: the reply callback was invoked with a null reply where
	// one was not expected (reserved for callers that want to
	// distinguish; ordinary Nil replies are not themselves errors).
	NullReply = Namespace.NewType("null_reply")
	// ConnectionLost: the disconnect sentinel was received.
	ConnectionLost = Namespace.NewType("connection_lost")
	// ClientClosed: an operation was attempted after Close, or Close is
	// failing every remaining pending completion.
	ClientClosed = Namespace.NewType("client_closed")
	// InvalidRequest: a contract violation caught before submission
	// (empty argv, empty channel/pattern set, ...).
	InvalidRequest = Namespace.NewType("invalid_request")
	// ResponseFormat: the wire protocol reader found bytes that are not
	// a valid RESP2/RESP3 value.
	ResponseFormat = Namespace.NewType("response_format")
)

// Properties attached to errors for observability, keyed through errorx's
// property registry.
var (
	PConnID  = errorx.RegisterProperty("conn_id")
	PAddr    = errorx.RegisterProperty("addr")
	PCmd     = errorx.RegisterProperty("command")
	PCmdID   = errorx.RegisterProperty("command_id")
	PChannel = errorx.RegisterProperty("channel")
)

// Wrap decorates err with the connection id and address as errorx
// properties. Nothing in this module calls it; the event loop and clients
// surface errors without these properties.
func Wrap(err *errorx.Error, connID, addr string) *errorx.Error {
	if err == nil {
		return nil
	}
	return err.WithProperty(PConnID, connID).WithProperty(PAddr, addr)
}
