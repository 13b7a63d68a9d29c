package follower

import (
	"bufio"
	"net"
	"sync"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
)

// Role is fixed for the life of a Messenger.
type Role int

const (
	// RoleLeader means this process owns the session and messages itself.
	RoleLeader Role = iota + 1
	// RoleAttached means this process reaches the leader over its socket.
	RoleAttached
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "leader"
	case RoleAttached:
		return "attached"
	default:
		return "unknown"
	}
}

// transport sends one request and receives one reply.
// The only implementations are channelTransport and socketTransport.
type transport interface {
	roundTrip(msg protocol.FollowerMessage) (protocol.LeaderMessage, error)
	role() Role
	name() string
	close() error
}

// channelTransport is the loopback pair used by the leader process.
type channelTransport struct {
	mu       sync.Mutex
	closed   bool
	outbound chan<- protocol.FollowerMessage
	inbound  <-chan protocol.LeaderMessage
}

func (t *channelTransport) role() Role   { return RoleLeader }
func (t *channelTransport) name() string { return "channel" }

func (t *channelTransport) roundTrip(msg protocol.FollowerMessage) (protocol.LeaderMessage, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return protocol.LeaderMessage{}, domain.ErrChannelClosed.WithDetails("messenger closed")
	}

	// A dispatcher that exits closes inbound, so watch it while sending.
	select {
	case t.outbound <- msg:
	case reply, ok := <-t.inbound:
		if !ok {
			return protocol.LeaderMessage{}, domain.ErrChannelClosed.WithDetails("dispatcher exited before accepting " + msg.String())
		}
		return protocol.LeaderMessage{}, domain.ErrInternal.WithDetails("unsolicited leader message " + reply.String())
	}

	reply, ok := <-t.inbound
	if !ok {
		return protocol.LeaderMessage{}, domain.ErrChannelClosed.WithDetails("dispatcher exited while handling " + msg.String())
	}
	return reply, nil
}

// close releases the dispatcher by closing the outbound channel.
func (t *channelTransport) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.outbound)
	}
	return nil
}

// socketTransport dials the leader's Unix socket for every request.
type socketTransport struct {
	path string
}

func (t *socketTransport) role() Role   { return RoleAttached }
func (t *socketTransport) name() string { return "socket" }
func (t *socketTransport) close() error { return nil }

func (t *socketTransport) roundTrip(msg protocol.FollowerMessage) (protocol.LeaderMessage, error) {
	conn, err := net.Dial("unix", t.path)
	if err != nil {
		return protocol.LeaderMessage{}, domain.ErrConnectionUnavailable.WithDetails("socket " + t.path).WithCause(err)
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := protocol.WriteFollower(w, msg); err != nil {
		return protocol.LeaderMessage{}, noResponse(msg, err)
	}
	if err := w.Flush(); err != nil {
		return protocol.LeaderMessage{}, noResponse(msg, err)
	}

	reply, err := protocol.ReadLeader(bufio.NewReader(conn))
	if err != nil {
		return protocol.LeaderMessage{}, noResponse(msg, err)
	}
	return reply, nil
}

func noResponse(msg protocol.FollowerMessage, cause error) error {
	return domain.ErrNoResponse.WithDetails("after sending " + msg.String()).WithCause(cause)
}
