// Package main provides the entry point for graphdev.
//
// graphdev composes locally running subgraphs into one dev session. The
// first `graphdev dev` becomes the session leader and listens on a Unix
// socket; later invocations attach to it, contribute their subgraph and
// leave when the leader stops answering.
//
// Usage:
//
//	graphdev dev --name products --url http://localhost:4001 --schema products.graphql
//	graphdev session list -o json
//	graphdev version
package main
