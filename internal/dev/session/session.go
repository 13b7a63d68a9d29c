package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/follower"
	"github.com/yndnr/graphdev-go/internal/dev/leader"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
	"github.com/yndnr/graphdev-go/internal/infra/confloader"
	"github.com/yndnr/graphdev-go/internal/infra/shutdown"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
	"github.com/yndnr/graphdev-go/internal/telemetry/metric"
)

// DefaultShutdownTimeout bounds teardown hooks.
const DefaultShutdownTimeout = 5 * time.Second

// Config configures a participant.
type Config struct {
	// SocketPath is where the leader listens.
	SocketPath string

	// HeartbeatInterval is the liveness cadence of attached participants.
	HeartbeatInterval time.Duration

	// Version overrides buildinfo.Version for both roles.
	Version string

	// MetricsAddr, if set, serves /metrics from the leader.
	MetricsAddr string

	// OnChange is called by the leader whenever membership changes.
	OnChange func(domain.SubgraphKeys)

	// ShutdownTimeout bounds teardown. Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration

	Logger  logger.Logger
	Metrics *metric.Registry
}

func (c *Config) setDefaults() {
	if c.Version == "" {
		c.Version = buildinfo.Version
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = follower.DefaultHeartbeatInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.Default()
	}
	if c.Metrics == nil {
		c.Metrics = metric.Global()
	}
}

// Session is one participant: either the leader or an attached follower.
type Session struct {
	cfg       Config
	log       logger.Logger
	messenger *follower.Messenger

	// Leader only.
	server     *leader.Server
	serveErr   chan error
	metricsSrv *http.Server

	closeOnce sync.Once
	closeErr  error
}

// Join attaches to the leader on cfg.SocketPath or, when nothing answers
// there, becomes the leader.
func Join(cfg Config) (*Session, error) {
	cfg.setDefaults()
	if cfg.SocketPath == "" {
		return nil, domain.ErrMissingArgument.WithDetails("socket path is required")
	}

	s := &Session{cfg: cfg}

	if leaderAlive(cfg.SocketPath) {
		s.attach()
		return s, nil
	}

	err := s.lead()
	if errors.Is(err, domain.ErrSessionActive) {
		// Another process won the race to lead.
		s.attach()
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func leaderAlive(path string) bool {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (s *Session) messengerOptions() []follower.Option {
	return []follower.Option{
		follower.WithVersion(s.cfg.Version),
		follower.WithLogger(s.log),
		follower.WithHeartbeatInterval(s.cfg.HeartbeatInterval),
		follower.WithMetrics(s.cfg.Metrics),
	}
}

func (s *Session) attach() {
	s.log = s.cfg.Logger.With("socket", s.cfg.SocketPath)
	s.messenger = follower.NewAttachedSession(s.cfg.SocketPath, s.messengerOptions()...)
	s.log.Info("attached to running graphdev dev session")
}

func (s *Session) lead() error {
	s.log = s.cfg.Logger.With("socket", s.cfg.SocketPath)

	opts := []leader.Option{
		leader.WithVersion(s.cfg.Version),
		leader.WithLogger(s.cfg.Logger),
		leader.WithMetrics(s.cfg.Metrics),
	}
	if s.cfg.OnChange != nil {
		opts = append(opts, leader.WithChangeHook(s.cfg.OnChange))
	}
	registry := leader.NewRegistry()
	srv := leader.NewServer(s.cfg.SocketPath, leader.NewDispatcher(registry, opts...))
	if err := srv.Listen(); err != nil {
		return err
	}

	s.server = srv
	s.serveErr = make(chan error, 1)
	go func() { s.serveErr <- srv.Serve() }()

	out := make(chan protocol.FollowerMessage)
	in := make(chan protocol.LeaderMessage)
	go srv.ServeLoopback(out, in)
	s.messenger = follower.NewMainSession(out, in, s.messengerOptions()...)

	if s.cfg.MetricsAddr != "" {
		if err := s.cfg.Metrics.Register(metric.NewCollector(registry)); err != nil {
			s.log.Warn("session collector not registered", "error", err)
		}
		s.serveMetrics()
	}

	s.log.Info("started graphdev dev session leader")
	return nil
}

func (s *Session) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.cfg.Metrics.Handler())
	s.metricsSrv = &http.Server{
		Addr:              s.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("metrics endpoint stopped", "addr", s.cfg.MetricsAddr, "error", err)
		}
	}()
}

// Role reports whether this participant leads the session.
func (s *Session) Role() follower.Role {
	return s.messenger.Role()
}

// Messenger returns the participant's messenger.
func (s *Session) Messenger() *follower.Messenger {
	return s.messenger
}

// Run contributes def to the session and blocks until ctx is done, a
// signal arrives, or (for attached participants) the leader stops
// answering. If schemaPath is set, edits to that file are pushed to the
// leader as updates. def is removed from the session before Run returns.
func (s *Session) Run(ctx context.Context, def domain.SubgraphDefinition, schemaPath string) error {
	ctx = logger.WithSubgraph(logger.WithLogger(ctx, s.log), def.Name)
	log := logger.L(ctx)

	if err := s.messenger.VersionCheck(); err != nil {
		s.Close(context.Background())
		return err
	}

	keys, _, err := s.messenger.AddSubgraph(def)
	if err != nil {
		s.Close(context.Background())
		return err
	}
	log.Info("subgraph added to session", "url", def.URL, "subgraphs", len(keys))

	h := shutdown.NewHandler(s.cfg.ShutdownTimeout)
	h.OnShutdown(s.Close)
	h.OnShutdown(func(context.Context) error {
		if _, _, err := s.messenger.RemoveSubgraph(def.Name); err != nil {
			log.Debug("could not remove subgraph from session", "error", err)
		}
		return nil
	})

	if schemaPath != "" {
		w, err := s.watchSchema(ctx, def, schemaPath)
		if err != nil {
			h.Trigger()
			return errors.Join(err, h.Wait(ctx))
		}
		h.OnShutdown(func(context.Context) error { return w.Stop() })
	}

	var heartbeatErr error
	if s.messenger.Role() == follower.RoleAttached {
		hbCtx, stop := context.WithCancel(context.Background())
		hbDone := make(chan struct{})
		go func() {
			defer close(hbDone)
			if err := s.messenger.HealthCheck(hbCtx); err != nil && hbCtx.Err() == nil {
				heartbeatErr = err
				h.Trigger()
			}
		}()
		h.OnShutdown(func(context.Context) error {
			stop()
			<-hbDone
			return nil
		})
	}

	waitErr := h.Wait(ctx)
	log.Info("left graphdev dev session", "reason", string(h.Reason()))

	if heartbeatErr != nil {
		return heartbeatErr
	}
	return waitErr
}

func (s *Session) watchSchema(ctx context.Context, def domain.SubgraphDefinition, path string) (*confloader.Watcher, error) {
	log := logger.L(ctx)

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, domain.ErrInternal.WithDetails("start schema watcher").WithCause(err)
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, domain.ErrInvalidArgument.WithDetails("watch schema " + path).WithCause(err)
	}

	w.OnChange(func(string) {
		schema, err := LoadSchema(path)
		if err == nil {
			next := def
			next.Schema = schema
			_, _, err = s.messenger.UpdateSubgraph(next)
		}
		s.cfg.Metrics.RecordSchemaReload(err)
		if err != nil {
			log.Warn("schema update not sent", "schema", path, "error", err)
			return
		}
		log.Info("schema updated", "schema", path)
	})
	w.StartAsync()
	return w, nil
}

// LoadSchema reads a schema document from path.
func LoadSchema(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", domain.ErrInvalidArgument.WithDetails("read schema " + path).WithCause(err)
	}
	return string(b), nil
}

// Close releases the loopback and stops the leader socket and metrics
// endpoint. Attached followers lose their leader when it closes.
// Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.messenger.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.metricsSrv != nil {
			if err := s.metricsSrv.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if s.server != nil {
			if err := s.server.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			if err := <-s.serveErr; err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
