package command

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/session"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
	"github.com/yndnr/graphdev-go/internal/telemetry/metric"
)

// syncBuffer is a bytes.Buffer safe for the leader's change hook.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolate keeps the user's config file and GRAPHDEV_* variables out of tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

// run executes the CLI and returns stdout and the error.
func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr syncBuffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.RunContext(ctx, append([]string{"graphdev"}, args...))
	return stdout.String(), err
}

// startLeader runs a leader session contributing def on a fresh socket.
func startLeader(t *testing.T, def domain.SubgraphDefinition) string {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "gd.sock")

	s, err := session.Join(session.Config{
		SocketPath:        socket,
		HeartbeatInterval: 20 * time.Millisecond,
		Logger:            logger.Discard(),
		Metrics:           metric.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, def, "") }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	waitFor(t, func() bool {
		keys, _, err := s.Messenger().SessionSubgraphs()
		if err != nil {
			return false
		}
		_, ok := keys.Lookup(def.Name)
		return ok
	})
	return socket
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
