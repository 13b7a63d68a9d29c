package protocol

import (
	"fmt"

	"github.com/yndnr/graphdev-go/internal/core/domain"
)

// FollowerKind identifies a FollowerMessage variant on the wire.
type FollowerKind uint8

const (
	FollowerKindUnspecified FollowerKind = iota
	FollowerHealthCheck
	FollowerGetVersion
	FollowerGetSubgraphs
	FollowerAddSubgraph
	FollowerUpdateSubgraph
	FollowerRemoveSubgraph
)

var followerKindNames = map[FollowerKind]string{
	FollowerHealthCheck:    "HealthCheck",
	FollowerGetVersion:     "GetVersion",
	FollowerGetSubgraphs:   "GetSubgraphs",
	FollowerAddSubgraph:    "AddSubgraph",
	FollowerUpdateSubgraph: "UpdateSubgraph",
	FollowerRemoveSubgraph: "RemoveSubgraph",
}

// String returns the variant name.
func (k FollowerKind) String() string {
	if name, ok := followerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FollowerKind(%d)", uint8(k))
}

// Valid reports whether k is a known variant.
func (k FollowerKind) Valid() bool {
	_, ok := followerKindNames[k]
	return ok
}

// FollowerMessage is a request sent from a follower to the leader.
type FollowerMessage struct {
	Kind FollowerKind `codec:"-"`

	// IsFromMainSession is true when the leader process is messaging itself.
	IsFromMainSession bool `codec:"main"`

	// Version is the sender's build version. Set on GetVersion.
	Version string `codec:"ver,omitempty"`

	// Subgraph is set on AddSubgraph and UpdateSubgraph.
	Subgraph *domain.SubgraphDefinition `codec:"subgraph,omitempty"`

	// Name is set on RemoveSubgraph.
	Name string `codec:"name,omitempty"`
}

// HealthCheck builds a liveness check.
func HealthCheck(fromMain bool) FollowerMessage {
	return FollowerMessage{Kind: FollowerHealthCheck, IsFromMainSession: fromMain}
}

// GetVersion builds a version request carrying the sender's build version.
func GetVersion(fromMain bool, version string) FollowerMessage {
	return FollowerMessage{Kind: FollowerGetVersion, IsFromMainSession: fromMain, Version: version}
}

// GetSubgraphs builds a membership request.
func GetSubgraphs(fromMain bool) FollowerMessage {
	return FollowerMessage{Kind: FollowerGetSubgraphs, IsFromMainSession: fromMain}
}

// AddSubgraph builds a request to add def to the session.
func AddSubgraph(fromMain bool, def domain.SubgraphDefinition) (FollowerMessage, error) {
	return subgraphMessage(FollowerAddSubgraph, fromMain, def)
}

// UpdateSubgraph builds a request to replace def in the session.
func UpdateSubgraph(fromMain bool, def domain.SubgraphDefinition) (FollowerMessage, error) {
	return subgraphMessage(FollowerUpdateSubgraph, fromMain, def)
}

// RemoveSubgraph builds a request to drop the named subgraph from the session.
func RemoveSubgraph(fromMain bool, name domain.SubgraphName) (FollowerMessage, error) {
	if err := domain.ValidateSubgraphName(name); err != nil {
		return FollowerMessage{}, err
	}
	return FollowerMessage{Kind: FollowerRemoveSubgraph, IsFromMainSession: fromMain, Name: name}, nil
}

// subgraphMessage checks only the name the leader keys on. The rest of the
// definition is forwarded untouched.
func subgraphMessage(kind FollowerKind, fromMain bool, def domain.SubgraphDefinition) (FollowerMessage, error) {
	if err := domain.ValidateSubgraphName(def.Name); err != nil {
		return FollowerMessage{}, err
	}
	return FollowerMessage{Kind: kind, IsFromMainSession: fromMain, Subgraph: &def}, nil
}

// Validate checks that the payload matches the variant.
func (m FollowerMessage) Validate() error {
	switch m.Kind {
	case FollowerHealthCheck, FollowerGetVersion, FollowerGetSubgraphs:
		return nil
	case FollowerAddSubgraph, FollowerUpdateSubgraph:
		if m.Subgraph == nil {
			return domain.ErrMissingArgument.WithDetails(m.Kind.String() + " requires a subgraph definition")
		}
		return domain.ValidateSubgraphName(m.Subgraph.Name)
	case FollowerRemoveSubgraph:
		return domain.ValidateSubgraphName(m.Name)
	default:
		return domain.ErrInvalidArgument.WithDetails("unknown follower message " + m.Kind.String())
	}
}

// String renders the message for logs and diagnostics. Schemas are elided.
func (m FollowerMessage) String() string {
	switch m.Kind {
	case FollowerAddSubgraph, FollowerUpdateSubgraph:
		if m.Subgraph != nil {
			return fmt.Sprintf("%s(%s @ %s)", m.Kind, m.Subgraph.Name, m.Subgraph.URL)
		}
	case FollowerRemoveSubgraph:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Name)
	case FollowerGetVersion:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Version)
	}
	return m.Kind.String()
}
