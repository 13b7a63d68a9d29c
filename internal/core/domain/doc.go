// Package domain defines the core domain models for graphdev.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - SubgraphDefinition: a subgraph contributed to a dev session
//   - SubgraphKeys: the session membership as reported by the leader
//   - Errors: structured error codes with user-facing suggestions
//
// Values defined here travel unchanged between the follower messenger,
// the wire codec, and the leader registry.
package domain
