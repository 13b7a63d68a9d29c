// Package follower is the client side of a graphdev dev session.
//
// A Messenger talks to the session leader through one of two transports:
//
//   - channel: the leader process messaging its own dispatcher through a
//     pair of Go channels
//   - socket: an attached process dialing the leader's Unix socket, one
//     connection per request
//
// Every operation is one request followed by one reply. Replies are
// interpreted the same way whichever transport carried them: a GetVersion
// reply runs the version gate, a LeaderSessionInfo reply yields the
// current subgraph keys, and any other reply is ignored.
//
// HealthCheck blocks for the life of the session and must run on its own
// goroutine. It stops on the first failed round trip.
package follower
