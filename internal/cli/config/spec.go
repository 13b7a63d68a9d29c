package config

import "time"

// Config is the root configuration for graphdev.
type Config struct {
	Session SessionSection `koanf:"session" json:"session" yaml:"session"`
	Log     LogSection     `koanf:"log" json:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" json:"metrics" yaml:"metrics"`
	Output  OutputSection  `koanf:"output" json:"output" yaml:"output"`
}

// SessionSection configures the dev session socket and liveness.
type SessionSection struct {
	Socket    string        `koanf:"socket" json:"socket" yaml:"socket"`
	Heartbeat time.Duration `koanf:"heartbeat" json:"heartbeat" yaml:"heartbeat"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level" json:"level" yaml:"level"`
	Format  string `koanf:"format" json:"format" yaml:"format"`
	Backend string `koanf:"backend" json:"backend" yaml:"backend"`
}

// MetricsSection configures the leader's Prometheus endpoint.
// An empty Addr disables it.
type MetricsSection struct {
	Addr string `koanf:"addr" json:"addr" yaml:"addr"`
}

// OutputSection configures command output.
type OutputSection struct {
	Format string `koanf:"format" json:"format" yaml:"format"`
}
