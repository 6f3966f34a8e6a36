// Package testbed spawns a real redis-server process for integration
// tests, so the root package's integration and example tests can run the
// client and pubsub packages against an actual server rather than only the
// mock Protocol Engine.
package testbed

import (
	"io/ioutil"
	"os"
	"os/exec"
	"strconv"
	"time"
)

var Binary = func() string { p, _ := exec.LookPath("redis-server"); return p }()
var Dir = ""

func InitDir(base string) {
	if Dir == "" {
		var err error
		Dir, err = ioutil.TempDir(base, "redis_test_")
		if err != nil {
			panic(err)
		}
	}
}

func RmDir() {
	os.RemoveAll(Dir)
}

// Server is one redis-server process, bound to loopback on Port and
// logging into Dir.
type Server struct {
	Port uint16
	Args []string
	Cmd  *exec.Cmd
}

func (s *Server) PortStr() string {
	return strconv.Itoa(int(s.Port))
}

func (s *Server) Addr() string {
	return "127.0.0.1:" + s.PortStr()
}

func (s *Server) Start() error {
	if s.Cmd != nil {
		return nil
	}
	port := s.PortStr()
	args := append([]string{
		"--bind", "127.0.0.1",
		"--port", port,
		"--logfile", port + ".log",
	}, s.Args...)
	s.Cmd = exec.Command(Binary, args...)
	s.Cmd.Dir = Dir
	if err := s.Cmd.Start(); err != nil {
		s.Cmd = nil
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

func (s *Server) Stop() error {
	if s.Cmd == nil {
		return nil
	}
	defer time.Sleep(10 * time.Millisecond)
	p := s.Cmd
	s.Cmd = nil
	defer p.Wait()
	return p.Process.Kill()
}
