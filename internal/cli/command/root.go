package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/graphdev-go/internal/cli/config"
	"github.com/yndnr/graphdev-go/internal/cli/output"
	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

const envKey = "graphdev.env"

// env is what every action needs, resolved once in the Before hook.
type env struct {
	cfg *config.Config
	log logger.Logger
	out output.Formatter
	w   io.Writer
}

func (e *env) print(data any) error {
	return e.out.Format(e.w, data)
}

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:                 "graphdev",
		Usage:                "Compose locally running subgraphs into one dev session",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			DevCommand(),
			SessionCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Metadata:     map[string]any{},
		Before:       setup,
		OnUsageError: usageError,
	}
	withUsageErrors(app.Commands)
	return app
}

// usageError turns flag parsing failures into argument errors.
func usageError(_ *cli.Context, err error, _ bool) error {
	return domain.ErrInvalidArgument.WithDetails(err.Error()).WithCause(err)
}

func withUsageErrors(cmds []*cli.Command) {
	for _, cmd := range cmds {
		cmd.OnUsageError = usageError
		withUsageErrors(cmd.Subcommands)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file",
		},
		&cli.StringFlag{
			Name:  "socket",
			Usage: "Unix socket of the dev session (default: $TMPDIR/graphdev.sock)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:  "log-backend",
			Usage: "Logger implementation: slog, zap",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
	}
}

// flagKeys maps global flags to config keys. Only flags the user set
// override the file and environment.
var flagKeys = map[string]string{
	"socket":      "session.socket",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-backend": "log.backend",
	"output":      "output.format",
}

func setup(c *cli.Context) error {
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
		Output:  c.App.ErrWriter,
	})
	if err != nil {
		return domain.ErrInvalidArgument.WithDetails("log.backend").WithCause(err)
	}
	logger.SetDefault(log)

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	c.App.Metadata[envKey] = &env{
		cfg: cfg,
		log: log,
		out: output.NewFormatter(format),
		w:   c.App.Writer,
	}
	return nil
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

// PrintError writes err and, for session failures, what to do about it.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	if s := hint(err); s != domain.SuggestionNone {
		fmt.Fprintf(w, "  %s\n", s)
	}
}

// hint returns the suggestion for err. Usage and argument errors get none;
// unclassified failures get SuggestionSubmitIssue.
func hint(err error) domain.Suggestion {
	if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrMissingArgument) {
		return domain.SuggestionNone
	}
	return domain.SuggestionFor(err)
}
