// Package protocol defines the messages exchanged between a dev session
// follower and its leader, and the frame codec used on the local socket.
//
// Messages form two closed sets:
//
//   - FollowerMessage: HealthCheck, GetVersion, GetSubgraphs, AddSubgraph,
//     UpdateSubgraph, RemoveSubgraph
//   - LeaderMessage: GetVersion, LeaderSessionInfo, MessageReceived,
//     CompositionSuccess, CompositionError, ErrorNotification
//
// Frame layout (big endian):
//
//	[length:4][crc32:4][kind:1][payload...]
//
// length counts crc, kind and payload. The crc32 (IEEE) covers kind and
// payload. The payload is MessagePack. Every connection carries exactly
// one follower frame followed by exactly one leader frame.
package protocol
