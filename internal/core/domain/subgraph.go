package domain

import (
	"crypto/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Subgraph constraints.
const (
	MaxSubgraphNameLength = 64

	// TraceIDPrefix is the prefix for round-trip trace IDs.
	TraceIDPrefix = "gdrt-"
)

// SubgraphName identifies a subgraph within a session.
type SubgraphName = string

// SubgraphDefinition is a subgraph contributed to a dev session.
// The schema document is forwarded as-is and never parsed here.
type SubgraphDefinition struct {
	Name   string `json:"name" yaml:"name" codec:"name"`
	URL    string `json:"url" yaml:"url" codec:"url"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty" codec:"sdl"`
}

// Validate checks the definition's name and routing URL.
// Returns a DomainError with code GD-ARG-1001 if validation fails.
func (d *SubgraphDefinition) Validate() error {
	var violations []string

	if err := ValidateSubgraphName(d.Name); err != nil {
		violations = append(violations, err.(*DomainError).Details)
	}

	if d.URL == "" {
		violations = append(violations, "url is required")
	} else if u, err := url.Parse(d.URL); err != nil || u.Scheme == "" || u.Host == "" {
		violations = append(violations, "url must be absolute, e.g. http://localhost:4001")
	}

	if len(violations) > 0 {
		return ErrInvalidArgument.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// Key returns the (name, url) pair for this definition.
func (d *SubgraphDefinition) Key() SubgraphKey {
	return SubgraphKey{Name: d.Name, URL: d.URL}
}

// ValidateSubgraphName checks that a subgraph name is usable as a registry key.
func ValidateSubgraphName(name string) error {
	switch {
	case name == "":
		return ErrInvalidArgument.WithDetails("name is required")
	case len(name) > MaxSubgraphNameLength:
		return ErrInvalidArgument.WithDetails("name exceeds 64 characters")
	case strings.TrimSpace(name) != name:
		return ErrInvalidArgument.WithDetails("name must not have surrounding whitespace")
	}
	return nil
}

// SubgraphKey is one member of a session: a subgraph name and its routing URL.
type SubgraphKey struct {
	Name string `json:"name" yaml:"name" codec:"name"`
	URL  string `json:"url" yaml:"url" codec:"url"`
}

// SubgraphKeys is the session membership as last reported by the leader.
type SubgraphKeys []SubgraphKey

// Clone returns an independent copy. A nil receiver yields an empty, non-nil slice.
func (k SubgraphKeys) Clone() SubgraphKeys {
	out := make(SubgraphKeys, len(k))
	copy(out, k)
	return out
}

// Sorted returns a copy ordered by subgraph name.
func (k SubgraphKeys) Sorted() SubgraphKeys {
	out := k.Clone()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the routing URL of the named subgraph.
func (k SubgraphKeys) Lookup(name string) (string, bool) {
	for _, key := range k {
		if key.Name == name {
			return key.URL, true
		}
	}
	return "", false
}

// Names returns the subgraph names in order.
func (k SubgraphKeys) Names() []string {
	names := make([]string, len(k))
	for i, key := range k {
		names[i] = key.Name
	}
	return names
}

// NewTraceID generates an ID used to correlate log lines of one round trip.
// Format: gdrt-{ulid_lowercase}.
func NewTraceID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return TraceIDPrefix + strings.ToLower(id.String()), nil
}
