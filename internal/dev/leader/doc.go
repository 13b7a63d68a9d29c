// Package leader owns the shared state of a graphdev dev session.
//
// The Dispatcher applies follower requests to an in-memory Registry and
// answers each with exactly one reply. The Server feeds it from two
// sources: connections on the session's Unix socket, one request per
// connection, and the loopback channel pair used by the leader process
// itself.
package leader
