package leader

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

// Server exposes a Dispatcher on a Unix socket and on a loopback channel pair.
type Server struct {
	path       string
	dispatcher *Dispatcher
	log        logger.Logger

	mu       sync.Mutex
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// NewServer creates a server for the socket at socketPath.
func NewServer(socketPath string, d *Dispatcher) *Server {
	return &Server{
		path:       socketPath,
		dispatcher: d,
		log:        d.log.With("socket", socketPath),
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen binds the socket. A leftover socket file with no listener behind
// it is removed first; a live one yields ErrSessionActive. A path holding
// anything but a socket yields ErrInvalidArgument and is not touched.
func (s *Server) Listen() error {
	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	l, err := net.Listen("unix", s.path)
	if err != nil {
		return domain.ErrInternal.WithDetails("listen on " + s.path).WithCause(err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.running.Store(true)

	s.log.Info("leader listening")
	return nil
}

// Serve accepts connections until Shutdown. Listen must have succeeded.
// Serve returns nil when Shutdown ran first.
func (s *Server) Serve() error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return domain.ErrInternal.WithDetails("serve called before listen")
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.mu.Lock()
		if !s.running.Load() {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.wg.Add(1)
		s.mu.Unlock()
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// ListenAndServe binds the socket and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// ServeLoopback answers requests from in on out until in is closed, then
// closes out. It runs on the caller's goroutine.
func (s *Server) ServeLoopback(in <-chan protocol.FollowerMessage, out chan<- protocol.LeaderMessage) {
	defer close(out)
	for msg := range in {
		out <- s.dispatcher.Handle(msg)
	}
	s.log.Debug("loopback closed")
}

// Shutdown stops accepting connections and waits for in-flight requests
// (bounded by ctx). Closing the listener unlinks the socket file, so a
// leader that binds the path while this one drains keeps its socket.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.running.Store(false)
	l := s.listener
	s.mu.Unlock()

	var closeErr error
	if l != nil {
		closeErr = l.Close()
		if errors.Is(closeErr, net.ErrClosed) {
			closeErr = nil
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.log.Info("leader stopped")
	return closeErr
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	msg, err := protocol.ReadFollower(bufio.NewReader(conn))
	if err != nil {
		// Liveness checks from Join connect and hang up without a frame.
		if !errors.Is(err, io.EOF) {
			s.log.Warn("failed to read follower message", "error", err)
		}
		return
	}

	reply := s.dispatcher.Handle(msg)

	w := bufio.NewWriter(conn)
	if err := protocol.WriteLeader(w, reply); err != nil {
		s.log.Warn("failed to write leader message", "message", reply.String(), "error", err)
		return
	}
	if err := w.Flush(); err != nil {
		s.log.Warn("failed to write leader message", "message", reply.String(), "error", err)
	}
}

// removeStaleSocket deletes path if it is a socket nothing listens on.
// Anything other than a socket is left alone.
func removeStaleSocket(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return domain.ErrInternal.WithDetails("stat " + path).WithCause(err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return domain.ErrInvalidArgument.WithDetails(path + " exists and is not a socket")
	}

	if conn, err := net.Dial("unix", path); err == nil {
		conn.Close()
		return domain.ErrSessionActive.WithDetails(path)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.ErrInternal.WithDetails("remove stale socket " + path).WithCause(err)
	}
	return nil
}
