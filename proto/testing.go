package proto

import "bufio"

// ReadTestReply exposes readReply to other packages' integration tests
// (testbed's raw fixture connection needs to decode replies without going
// through a full Engine/Context) without widening the Engine/Context
// surface itself.
func ReadTestReply(b *bufio.Reader) (*Reply, error) {
	return readReply(b)
}
