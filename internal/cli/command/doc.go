// Package command provides the graphdev command tree.
//
// Commands are defined with urfave/cli/v2:
//
//   - root.go: App, global flags, config and logger setup
//   - dev.go: `graphdev dev`, join or lead a local session
//   - session.go: one-shot requests against a running session
//   - config.go: `graphdev config show`
//   - version.go: `graphdev version`
//
// Every command loads configuration in the root Before hook, so actions
// only read the resolved env from the context.
package command
