// Package output renders command results for the graphdev CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned columns for terminals (default)
//   - json.go: indented JSON for scripting
//   - yaml.go: YAML via gopkg.in/yaml.v3
//
// Table output derives columns from json struct tags, so the domain types
// print without per-type glue.
package output
