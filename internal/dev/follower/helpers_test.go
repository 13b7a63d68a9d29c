package follower

import (
	"bufio"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

// loopbackLeader answers every request with reply(msg) until the Messenger
// is closed. It records what it received.
type loopbackLeader struct {
	mu       sync.Mutex
	received []protocol.FollowerMessage
}

func (l *loopbackLeader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.received)
}

func (l *loopbackLeader) last() protocol.FollowerMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.received[len(l.received)-1]
}

func newLoopback(t *testing.T, reply func(protocol.FollowerMessage) protocol.LeaderMessage, opts ...Option) (*Messenger, *loopbackLeader) {
	t.Helper()

	out := make(chan protocol.FollowerMessage)
	in := make(chan protocol.LeaderMessage)
	leader := &loopbackLeader{}

	go func() {
		defer close(in)
		for msg := range out {
			leader.mu.Lock()
			leader.received = append(leader.received, msg)
			leader.mu.Unlock()
			in <- reply(msg)
		}
	}()

	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	m := NewMainSession(out, in, opts...)
	t.Cleanup(func() { m.Close() })
	return m, leader
}

// fakeLeader is a socket listener whose behavior per connection is scripted.
// n counts accepted connections starting at 1.
type fakeLeader struct {
	path     string
	accepted atomic.Int32
}

func startFakeLeader(t *testing.T, respond func(n int32, msg protocol.FollowerMessage, conn net.Conn)) *fakeLeader {
	t.Helper()

	f := &fakeLeader{path: filepath.Join(t.TempDir(), "l.sock")}
	ln, err := net.Listen("unix", f.path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			n := f.accepted.Add(1)
			go func() {
				defer conn.Close()
				msg, err := protocol.ReadFollower(bufio.NewReader(conn))
				if err != nil {
					return
				}
				respond(n, msg, conn)
			}()
		}
	}()
	return f
}
