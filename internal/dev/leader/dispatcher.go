package leader

import (
	"sync"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/protocol"
	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
	"github.com/yndnr/graphdev-go/internal/telemetry/metric"
)

// Dispatcher answers follower requests against a Registry.
// Each request is applied and answered under one lock, so a reply always
// reflects its own mutation and no later one.
type Dispatcher struct {
	mu       sync.Mutex
	registry *Registry
	version  string
	log      logger.Logger
	metrics  *metric.Registry
	onChange func(domain.SubgraphKeys)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithVersion overrides the build version the leader reports.
func WithVersion(v string) Option {
	return func(d *Dispatcher) {
		d.version = v
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics counts handled requests in r.
func WithMetrics(r *metric.Registry) Option {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

// WithChangeHook calls fn with the new membership after every add, update
// or effective remove. fn runs under the dispatcher lock and must not call
// back into the Dispatcher.
func WithChangeHook(fn func(domain.SubgraphKeys)) Option {
	return func(d *Dispatcher) {
		d.onChange = fn
	}
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		version:  buildinfo.Version,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher mutates.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle applies msg and returns the single reply for it.
func (d *Dispatcher) Handle(msg protocol.FollowerMessage) protocol.LeaderMessage {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.RecordLeaderRequest(msg.Kind.String())
	}
	log := d.log.With("message", msg.String(), "from_main", msg.IsFromMainSession)

	if err := msg.Validate(); err != nil {
		log.Warn("rejecting follower message", "error", err, "code", domain.GetErrorCode(err))
		return protocol.ErrorNotification(err.Error())
	}

	switch msg.Kind {
	case protocol.FollowerHealthCheck:
		return protocol.MessageReceived()

	case protocol.FollowerGetVersion:
		if msg.Version != d.version {
			// Only the follower treats a mismatch as fatal.
			log.Warn("follower is running a different graphdev version",
				"leader_version", d.version,
				"follower_version", msg.Version,
			)
		}
		return protocol.VersionReply(d.version, msg.Version)

	case protocol.FollowerGetSubgraphs:
		return protocol.SessionInfo(d.registry.Keys())

	case protocol.FollowerAddSubgraph, protocol.FollowerUpdateSubgraph:
		next := *msg.Subgraph
		if prev, ok := d.registry.Get(next.Name); ok && prev.URL != next.URL {
			log.Info("subgraph url changed",
				"subgraph", next.Name,
				"previous_url", prev.URL,
				"url", next.URL,
			)
		}
		rev := d.registry.Upsert(next)
		log.Info("subgraph registered",
			"subgraph", next.Name,
			"url", next.URL,
			"revision", rev,
		)
		return d.changed()

	case protocol.FollowerRemoveSubgraph:
		if !d.registry.Remove(msg.Name) {
			log.Debug("remove for unknown subgraph ignored", "subgraph", msg.Name)
			return protocol.SessionInfo(d.registry.Keys())
		}
		log.Info("subgraph removed", "subgraph", msg.Name)
		return d.changed()
	}

	return protocol.ErrorNotification("unsupported message " + msg.Kind.String())
}

func (d *Dispatcher) changed() protocol.LeaderMessage {
	keys := d.registry.Keys()
	if d.onChange != nil {
		d.onChange(keys.Clone())
	}
	return protocol.SessionInfo(keys)
}
