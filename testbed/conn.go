package testbed

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/relaypipe/redisasync/proto"
)

// Conn is a bare-bones RESP client used by integration tests to talk to a
// testbed Server directly, independent of the package under test — useful
// for setting up fixtures or publishing messages from a second
// connection in pub/sub tests.
type Conn struct {
	Addr string
	c    net.Conn
	r    *bufio.Reader
}

// Do sends cmd/args as a RESP array and returns the decoded reply,
// redialing once on a dead connection.
func (c *Conn) Do(cmd string, args ...interface{}) (*proto.Reply, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if c.c == nil {
			conn, err := net.DialTimeout("tcp", c.Addr, 100*time.Millisecond)
			if err != nil {
				return nil, err
			}
			c.c = conn
			c.r = bufio.NewReader(conn)
		}
		c.c.SetDeadline(time.Now().Add(time.Second))

		req := appendRawRequest(nil, cmd, args)
		if _, err := c.c.Write(req); err != nil {
			c.c = nil
			continue
		}
		r, err := proto.ReadTestReply(c.r)
		if err != nil {
			c.c = nil
			continue
		}
		return r, nil
	}
	return nil, fmt.Errorf("testbed: could not reach %s", c.Addr)
}

// Close releases the underlying socket, if any.
func (c *Conn) Close() error {
	if c.c == nil {
		return nil
	}
	err := c.c.Close()
	c.c = nil
	return err
}

// Do is the one-shot form of Conn.Do: dial, send one command, read one
// reply, close.
func Do(addr string, cmd string, args ...interface{}) (*proto.Reply, error) {
	c := &Conn{Addr: addr}
	defer c.Close()
	return c.Do(cmd, args...)
}

func appendRawRequest(buf []byte, cmd string, args []interface{}) []byte {
	argv := make([][]byte, 0, len(args)+1)
	argv = append(argv, []byte(cmd))
	for _, a := range args {
		argv = append(argv, toRawBytes(a))
	}
	buf = append(buf, '*')
	buf = append(buf, []byte(fmt.Sprintf("%d", len(argv)))...)
	buf = append(buf, '\r', '\n')
	for _, a := range argv {
		buf = append(buf, '$')
		buf = append(buf, []byte(fmt.Sprintf("%d", len(a)))...)
		buf = append(buf, '\r', '\n')
		buf = append(buf, a...)
		buf = append(buf, '\r', '\n')
	}
	return buf
}

func toRawBytes(v interface{}) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprintf("%v", t))
	}
}
