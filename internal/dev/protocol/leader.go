package protocol

import (
	"fmt"

	"github.com/yndnr/graphdev-go/internal/core/domain"
)

// LeaderKind identifies a LeaderMessage variant on the wire.
// Leader kinds start at 64 so a frame can never be mistaken for a follower frame.
type LeaderKind uint8

const LeaderKindUnspecified LeaderKind = 0

const (
	LeaderGetVersion LeaderKind = iota + 64
	LeaderSessionInfo
	LeaderMessageReceived
	LeaderCompositionSuccess
	LeaderCompositionError
	LeaderErrorNotification
)

var leaderKindNames = map[LeaderKind]string{
	LeaderGetVersion:         "GetVersion",
	LeaderSessionInfo:        "LeaderSessionInfo",
	LeaderMessageReceived:    "MessageReceived",
	LeaderCompositionSuccess: "CompositionSuccess",
	LeaderCompositionError:   "CompositionError",
	LeaderErrorNotification:  "ErrorNotification",
}

// String returns the variant name.
func (k LeaderKind) String() string {
	if name, ok := leaderKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("LeaderKind(%d)", uint8(k))
}

// Valid reports whether k is a known variant.
func (k LeaderKind) Valid() bool {
	_, ok := leaderKindNames[k]
	return ok
}

// LeaderMessage is the leader's reply to exactly one FollowerMessage.
type LeaderMessage struct {
	Kind LeaderKind `codec:"-"`

	// GetVersion
	LeaderVersion   string `codec:"leader_ver,omitempty"`
	FollowerVersion string `codec:"follower_ver,omitempty"`

	// LeaderSessionInfo
	Subgraphs domain.SubgraphKeys `codec:"subgraphs"`

	// CompositionSuccess
	Action string `codec:"action,omitempty"`

	// CompositionError and ErrorNotification
	Message string `codec:"msg,omitempty"`
}

// VersionReply answers a GetVersion request.
func VersionReply(leaderVersion, followerVersion string) LeaderMessage {
	return LeaderMessage{Kind: LeaderGetVersion, LeaderVersion: leaderVersion, FollowerVersion: followerVersion}
}

// SessionInfo reports the current membership. The keys are copied.
func SessionInfo(keys domain.SubgraphKeys) LeaderMessage {
	return LeaderMessage{Kind: LeaderSessionInfo, Subgraphs: keys.Clone()}
}

// MessageReceived acknowledges a request that carries no result.
func MessageReceived() LeaderMessage {
	return LeaderMessage{Kind: LeaderMessageReceived}
}

// CompositionSuccess reports that the composed view was rebuilt.
func CompositionSuccess(action string) LeaderMessage {
	return LeaderMessage{Kind: LeaderCompositionSuccess, Action: action}
}

// CompositionError reports that the composed view could not be rebuilt.
func CompositionError(message string) LeaderMessage {
	return LeaderMessage{Kind: LeaderCompositionError, Message: message}
}

// ErrorNotification reports that the leader rejected a request.
func ErrorNotification(message string) LeaderMessage {
	return LeaderMessage{Kind: LeaderErrorNotification, Message: message}
}

// String renders the message for logs.
func (m LeaderMessage) String() string {
	switch m.Kind {
	case LeaderGetVersion:
		return fmt.Sprintf("%s(leader=%s, follower=%s)", m.Kind, m.LeaderVersion, m.FollowerVersion)
	case LeaderSessionInfo:
		return fmt.Sprintf("%s(%d subgraphs)", m.Kind, len(m.Subgraphs))
	case LeaderCompositionSuccess:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Action)
	case LeaderCompositionError, LeaderErrorNotification:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Message)
	}
	return m.Kind.String()
}
