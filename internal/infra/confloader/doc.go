// Package confloader loads graphdev configuration and watches files.
//
// Configuration is layered with koanf. Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap after Load)
//  2. Environment variables (GRAPHDEV_ prefix)
//  3. Configuration file (YAML)
//  4. Default values (WithDefaults)
//
// Watcher wraps fsnotify and reports debounced changes to individual files.
// The dev session uses it to push schema edits to the leader.
package confloader
