package config

import (
	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/infra/confloader"
)

// Load builds the configuration from defaults, the config file, GRAPHDEV_*
// environment variables and overrides, in increasing priority.
//
// An empty path reads DefaultConfigPath if it exists. An explicit path must
// exist. Overrides are keyed by dotted path (e.g. "session.socket") and are
// usually the flags the user actually set.
func Load(path string, overrides map[string]any) (*Config, error) {
	opts := []confloader.Option{confloader.WithDefaults(flatten(Default()))}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if p := DefaultConfigPath(); p != "" {
		opts = append(opts, confloader.WithOptionalConfigFile(p))
	}

	l := confloader.NewLoader(opts...)
	cfg := &Config{}
	if err := l.Load(cfg); err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("load configuration").WithCause(err)
	}

	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails("apply flags").WithCause(err)
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails("apply flags").WithCause(err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
