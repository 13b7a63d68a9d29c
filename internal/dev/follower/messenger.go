package follower

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
	"github.com/yndnr/graphdev-go/internal/telemetry/metric"
)

// DefaultHeartbeatInterval is the liveness check cadence.
const DefaultHeartbeatInterval = time.Second

// Messenger sends requests to the session leader.
//
// Round trips are serialized, so one Messenger may be shared by the
// heartbeat goroutine and the session's own calls.
type Messenger struct {
	transport transport
	version   string
	interval  time.Duration
	log       logger.Logger
	metrics   *metric.Registry

	mu   sync.Mutex
	gate versionGate

	// onLeaderMessage is a test seam: it observes every reply before
	// interpretation. Nothing outside tests sets it.
	onLeaderMessage func(protocol.LeaderMessage)
}

// Option configures a Messenger.
type Option func(*Messenger)

// WithVersion overrides the build version sent in and checked against
// GetVersion exchanges.
func WithVersion(v string) Option {
	return func(m *Messenger) {
		m.version = v
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Messenger) {
		if l != nil {
			m.log = l
		}
	}
}

// WithHeartbeatInterval sets the HealthCheck cadence.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(m *Messenger) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithMetrics records round trips and heartbeats in r.
func WithMetrics(r *metric.Registry) Option {
	return func(m *Messenger) {
		m.metrics = r
	}
}

// NewMainSession creates a Messenger for the leader process. Requests go
// out on outbound and replies come back on inbound; the leader's
// dispatcher sits on the other end of both.
func NewMainSession(outbound chan<- protocol.FollowerMessage, inbound <-chan protocol.LeaderMessage, opts ...Option) *Messenger {
	return newMessenger(&channelTransport{outbound: outbound, inbound: inbound}, opts)
}

// NewAttachedSession creates a Messenger that reaches the leader through
// the Unix socket at socketPath.
func NewAttachedSession(socketPath string, opts ...Option) *Messenger {
	return newMessenger(&socketTransport{path: socketPath}, opts)
}

func newMessenger(t transport, opts []Option) *Messenger {
	m := &Messenger{
		transport: t,
		version:   buildinfo.Version,
		interval:  DefaultHeartbeatInterval,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("role", t.role().String())
	return m
}

// Role reports whether this Messenger belongs to the leader process.
func (m *Messenger) Role() Role {
	return m.transport.role()
}

// Version returns the build version this Messenger reports.
func (m *Messenger) Version() string {
	return m.version
}

// VersionState reports the result of the last version handshake.
func (m *Messenger) VersionState() VersionState {
	return m.gate.current()
}

// Close releases the loopback dispatcher. Later calls fail with
// ErrChannelClosed. It is a no-op for attached sessions.
func (m *Messenger) Close() error {
	return m.transport.close()
}

func (m *Messenger) fromMain() bool {
	return m.transport.role() == RoleLeader
}

// VersionCheck asks the leader for its version and fails with
// ErrVersionMismatch unless it equals ours exactly.
func (m *Messenger) VersionCheck() error {
	_, _, err := m.messageLeader(protocol.GetVersion(m.fromMain(), m.version))
	if m.metrics != nil {
		switch {
		case err == nil:
			m.metrics.RecordVersionCheck("compatible")
		case m.gate.current() == VersionIncompatible:
			m.metrics.RecordVersionCheck("incompatible")
		default:
			m.metrics.RecordVersionCheck(metric.ResultError)
		}
	}
	return err
}

// SessionSubgraphs returns the leader's current membership. ok is false
// when the leader answered with something other than session info.
func (m *Messenger) SessionSubgraphs() (keys domain.SubgraphKeys, ok bool, err error) {
	return m.messageLeader(protocol.GetSubgraphs(m.fromMain()))
}

// AddSubgraph registers def with the leader and returns the membership
// the leader reports afterwards.
func (m *Messenger) AddSubgraph(def domain.SubgraphDefinition) (domain.SubgraphKeys, bool, error) {
	msg, err := protocol.AddSubgraph(m.fromMain(), def)
	if err != nil {
		return nil, false, err
	}
	return m.messageLeader(msg)
}

// UpdateSubgraph replaces def on the leader.
func (m *Messenger) UpdateSubgraph(def domain.SubgraphDefinition) (domain.SubgraphKeys, bool, error) {
	msg, err := protocol.UpdateSubgraph(m.fromMain(), def)
	if err != nil {
		return nil, false, err
	}
	return m.messageLeader(msg)
}

// RemoveSubgraph drops the named subgraph from the session.
func (m *Messenger) RemoveSubgraph(name domain.SubgraphName) (domain.SubgraphKeys, bool, error) {
	msg, err := protocol.RemoveSubgraph(m.fromMain(), name)
	if err != nil {
		return nil, false, err
	}
	return m.messageLeader(msg)
}

// messageLeader performs one round trip and interprets the reply.
// It never retries.
func (m *Messenger) messageLeader(msg protocol.FollowerMessage) (domain.SubgraphKeys, bool, error) {
	if err := m.gate.blocked(); err != nil {
		return nil, false, err
	}

	ctx := logger.WithLogger(context.Background(), m.log)
	if traceID, err := domain.NewTraceID(); err == nil {
		ctx = logger.WithTraceID(ctx, traceID)
	}
	log := logger.L(ctx)

	m.mu.Lock()
	log.Debug("sending follower message", "message", msg.String(), "transport", m.transport.name())
	start := time.Now()
	reply, err := m.transport.roundTrip(msg)
	elapsed := time.Since(start)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordRoundTrip(msg.Kind.String(), m.transport.name(), err, elapsed.Seconds())
	}
	if err != nil {
		log.Debug("round trip failed", "message", msg.String(), "error", err)
		return nil, false, err
	}

	log.Debug("received leader message", "message", reply.String(), "elapsed", elapsed)
	return m.handleLeaderMessage(log, reply)
}

// handleLeaderMessage interprets a reply independently of its transport.
func (m *Messenger) handleLeaderMessage(log logger.Logger, reply protocol.LeaderMessage) (domain.SubgraphKeys, bool, error) {
	if m.onLeaderMessage != nil {
		m.onLeaderMessage(reply)
	}

	switch reply.Kind {
	case protocol.LeaderGetVersion:
		if err := m.gate.observe(reply.LeaderVersion, m.version); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	case protocol.LeaderSessionInfo:
		return reply.Subgraphs.Clone(), true, nil
	case protocol.LeaderErrorNotification:
		log.Warn("leader reported an error", "detail", reply.Message)
		return nil, false, nil
	default:
		return nil, false, nil
	}
}
