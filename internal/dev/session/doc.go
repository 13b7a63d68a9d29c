// Package session runs one participant of a graphdev dev session.
//
// Join decides the participant's role: if a leader already answers on the
// session socket the process attaches to it, otherwise it becomes the
// leader itself and serves the socket. Run then contributes one subgraph,
// keeps it current while its schema file changes, and removes it again on
// exit.
package session
