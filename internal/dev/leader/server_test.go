package leader

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/follower"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

const testVersion = "0.4.0"

// startServer runs a leader on a temp socket and returns it with a
// main-session Messenger wired to its loopback.
func startServer(t *testing.T) (*Server, *follower.Messenger) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gd.sock")
	srv := NewServer(path, newTestDispatcher(t))
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	out := make(chan protocol.FollowerMessage)
	in := make(chan protocol.LeaderMessage)
	go srv.ServeLoopback(out, in)
	main := follower.NewMainSession(out, in, follower.WithVersion(testVersion), follower.WithLogger(logger.Discard()))

	t.Cleanup(func() {
		main.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
		if err := <-serveErr; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	})
	return srv, main
}

func attach(t *testing.T, srv *Server, version string) *follower.Messenger {
	t.Helper()
	return follower.NewAttachedSession(srv.Path(), follower.WithVersion(version), follower.WithLogger(logger.Discard()))
}

func TestServer_LastWriteWins(t *testing.T) {
	srv, _ := startServer(t)
	m := attach(t, srv, testVersion)

	if _, _, err := m.AddSubgraph(def("products", "http://localhost:4001")); err != nil {
		t.Fatalf("AddSubgraph() error = %v", err)
	}
	if _, _, err := m.UpdateSubgraph(def("products", "http://localhost:5001")); err != nil {
		t.Fatalf("UpdateSubgraph() error = %v", err)
	}

	keys, ok, err := m.SessionSubgraphs()
	if err != nil || !ok {
		t.Fatalf("SessionSubgraphs() = %v, %v", ok, err)
	}
	if url, _ := keys.Lookup("products"); url != "http://localhost:5001" {
		t.Errorf("products -> %q, want the updated url", url)
	}
	if len(keys) != 1 {
		t.Errorf("keys = %v, want one entry", keys)
	}
}

func TestServer_Remove(t *testing.T) {
	srv, main := startServer(t)
	m := attach(t, srv, testVersion)

	main.AddSubgraph(def("products", "http://localhost:4001"))
	m.AddSubgraph(def("reviews", "http://localhost:4002"))

	after, ok, err := m.RemoveSubgraph("products")
	if err != nil || !ok {
		t.Fatalf("RemoveSubgraph() = %v, %v", ok, err)
	}
	if _, found := after.Lookup("products"); found {
		t.Errorf("RemoveSubgraph() reply still lists products: %v", after)
	}

	keys, _, err := main.SessionSubgraphs()
	if err != nil {
		t.Fatal(err)
	}
	if _, found := keys.Lookup("products"); found {
		t.Errorf("SessionSubgraphs() still lists products: %v", keys)
	}
	if _, found := keys.Lookup("reviews"); !found {
		t.Errorf("SessionSubgraphs() lost reviews: %v", keys)
	}
}

func TestServer_ConcurrentFollowers(t *testing.T) {
	srv, _ := startServer(t)
	a := attach(t, srv, testVersion)
	b := attach(t, srv, testVersion)
	observer := attach(t, srv, testVersion)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, c := range []struct {
		m *follower.Messenger
		d domain.SubgraphDefinition
	}{
		{a, def("A", "http://localhost:4001")},
		{b, def("B", "http://localhost:4002")},
	} {
		wg.Add(1)
		go func(m *follower.Messenger, d domain.SubgraphDefinition) {
			defer wg.Done()
			if _, _, err := m.AddSubgraph(d); err != nil {
				errs <- err
			}
		}(c.m, c.d)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AddSubgraph() error = %v", err)
	}

	keys, ok, err := observer.SessionSubgraphs()
	if err != nil || !ok {
		t.Fatalf("SessionSubgraphs() = %v, %v", ok, err)
	}

	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.Name+":"+k.URL)
	}
	sort.Strings(got)
	want := []string{"A:http://localhost:4001", "B:http://localhost:4002"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("membership = %v, want %v", got, want)
	}
}

func TestServer_VersionGate(t *testing.T) {
	srv, main := startServer(t)

	if err := main.VersionCheck(); err != nil {
		t.Errorf("main session VersionCheck() error = %v", err)
	}
	if err := attach(t, srv, testVersion).VersionCheck(); err != nil {
		t.Errorf("matching follower VersionCheck() error = %v", err)
	}

	stale := attach(t, srv, "0.3.9")
	if err := stale.VersionCheck(); !errors.Is(err, domain.ErrVersionMismatch) {
		t.Errorf("stale follower VersionCheck() error = %v, want ErrVersionMismatch", err)
	}

	// The leader keeps serving after a mismatch.
	if _, _, err := main.SessionSubgraphs(); err != nil {
		t.Errorf("leader unusable after mismatch: %v", err)
	}
}

func TestServer_BareConnection(t *testing.T) {
	srv, main := startServer(t)

	conn, err := net.Dial("unix", srv.Path())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	if _, _, err := main.SessionSubgraphs(); err != nil {
		t.Errorf("server unusable after a bare connection: %v", err)
	}
}

func TestServer_Listen_SocketInUse(t *testing.T) {
	srv, _ := startServer(t)

	second := NewServer(srv.Path(), newTestDispatcher(t))
	if err := second.Listen(); !errors.Is(err, domain.ErrSessionActive) {
		t.Errorf("Listen() on a live socket error = %v, want ErrSessionActive", err)
	}
}

// staleSocket leaves a socket file at path with nothing listening on it.
func staleSocket(t *testing.T, path string) {
	t.Helper()
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	l.(*net.UnixListener).SetUnlinkOnClose(false)
	l.Close()
}

func TestServer_Listen_StaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gd.sock")
	staleSocket(t, path)

	srv := NewServer(path, newTestDispatcher(t))
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() over stale socket error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("socket file left behind: %v", err)
	}
}

func TestServer_Listen_NotASocket(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		setup func(path string) error
	}{
		{"regular file", func(p string) error { return os.WriteFile(p, []byte("important"), 0o600) }},
		{"directory", func(p string) error { return os.Mkdir(p, 0o700) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := tt.setup(path); err != nil {
				t.Fatal(err)
			}

			srv := NewServer(path, newTestDispatcher(t))
			if err := srv.Listen(); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("Listen() error = %v, want ErrInvalidArgument", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("path removed: %v", err)
			}
		})
	}

	b, err := os.ReadFile(filepath.Join(dir, "regular file"))
	if err != nil || string(b) != "important" {
		t.Errorf("regular file content = %q, %v", b, err)
	}
}

func TestServer_ShutdownBeforeServe(t *testing.T) {
	for i := 0; i < 20; i++ {
		srv := NewServer(filepath.Join(t.TempDir(), "gd.sock"), newTestDispatcher(t))
		if err := srv.Listen(); err != nil {
			t.Fatal(err)
		}
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if err := srv.Serve(); err != nil {
			t.Fatalf("Serve() after Shutdown error = %v", err)
		}
	}
}

func TestServer_DrainKeepsSuccessorSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gd.sock")
	old := NewServer(path, newTestDispatcher(t))
	if err := old.Listen(); err != nil {
		t.Fatal(err)
	}
	go old.Serve()

	// A request stuck halfway through its frame keeps old draining.
	pending, err := net.Dial("unix", path)
	if err != nil {
		t.Fatal(err)
	}
	defer pending.Close()
	if _, err := pending.Write([]byte{0, 0}); err != nil {
		t.Fatal(err)
	}
	// Connections are accepted in order, so this reply means pending is in flight.
	m := follower.NewAttachedSession(path, follower.WithLogger(logger.Discard()))
	if _, _, err := m.SessionSubgraphs(); err != nil {
		t.Fatal(err)
	}

	stopped := make(chan error, 1)
	go func() { stopped <- old.Shutdown(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("old leader did not release the socket")
		}
		time.Sleep(5 * time.Millisecond)
	}

	next := NewServer(path, newTestDispatcher(t))
	if err := next.Listen(); err != nil {
		t.Fatalf("successor Listen() error = %v", err)
	}
	go next.Serve()
	defer next.Shutdown(context.Background())

	pending.Close()
	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("old Shutdown() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("old leader did not finish draining")
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("successor socket gone after old leader shutdown: %v", err)
	}
	if _, _, err := m.SessionSubgraphs(); err != nil {
		t.Errorf("successor unreachable: %v", err)
	}
}

func TestServer_ServeBeforeListen(t *testing.T) {
	srv := NewServer(filepath.Join(t.TempDir(), "gd.sock"), newTestDispatcher(t))
	if err := srv.Serve(); !errors.Is(err, domain.ErrInternal) {
		t.Errorf("Serve() error = %v, want ErrInternal", err)
	}
}

func TestServer_ShutdownStopsFollowers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gd.sock")
	srv := NewServer(path, newTestDispatcher(t))
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	go srv.Serve()

	m := follower.NewAttachedSession(path, follower.WithLogger(logger.Discard()))
	if _, _, err := m.SessionSubgraphs(); err != nil {
		t.Fatalf("SessionSubgraphs() error = %v", err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.SessionSubgraphs(); !errors.Is(err, domain.ErrConnectionUnavailable) {
		t.Errorf("after shutdown error = %v, want ErrConnectionUnavailable", err)
	}
}

func TestServeLoopback_ClosesOut(t *testing.T) {
	srv := NewServer(filepath.Join(t.TempDir(), "gd.sock"), newTestDispatcher(t))

	in := make(chan protocol.FollowerMessage)
	out := make(chan protocol.LeaderMessage)
	go srv.ServeLoopback(in, out)

	in <- protocol.HealthCheck(true)
	if reply := <-out; reply.Kind != protocol.LeaderMessageReceived {
		t.Errorf("reply = %v", reply)
	}

	close(in)
	select {
	case _, ok := <-out:
		if ok {
			t.Error("out received a value after in closed")
		}
	case <-time.After(time.Second):
		t.Error("out not closed after in closed")
	}
}
