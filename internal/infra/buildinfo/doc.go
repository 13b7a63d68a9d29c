// Package buildinfo provides build information for graphdev.
//
// This package exposes build-time information injected via ldflags:
//
//   - Version: the build version string exchanged in the leader handshake
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// GoVersion is read from the binary's embedded build info.
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/graphdev-go/internal/infra/buildinfo.Version=0.4.0"
package buildinfo
