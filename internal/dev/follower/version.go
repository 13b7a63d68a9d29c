package follower

import (
	"fmt"
	"sync"

	"github.com/yndnr/graphdev-go/internal/core/domain"
)

// VersionState is the outcome of the most recent version handshake.
type VersionState int

const (
	VersionUnchecked VersionState = iota
	VersionCompatible
	// VersionIncompatible is terminal.
	VersionIncompatible
)

func (s VersionState) String() string {
	switch s {
	case VersionCompatible:
		return "compatible"
	case VersionIncompatible:
		return "incompatible"
	default:
		return "unchecked"
	}
}

type versionGate struct {
	mu    sync.Mutex
	state VersionState
	err   error
}

// observe compares the leader's version with ours byte for byte.
func (g *versionGate) observe(leader, own string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == VersionIncompatible {
		return g.err
	}
	if leader == own {
		g.state = VersionCompatible
		return nil
	}

	g.state = VersionIncompatible
	g.err = domain.ErrVersionMismatch.WithDetails(fmt.Sprintf(
		"the main process is running version %s, and this process is running version %s", leader, own))
	return g.err
}

// blocked returns the terminal error once the gate has failed.
func (g *versionGate) blocked() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == VersionIncompatible {
		return g.err
	}
	return nil
}

func (g *versionGate) current() VersionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
