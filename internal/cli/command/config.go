package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/graphdev-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the default config file location",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	e := envFrom(c)
	return e.print(e.cfg)
}

func configPath(c *cli.Context) error {
	e := envFrom(c)
	_, err := e.w.Write([]byte(config.DefaultConfigPath() + "\n"))
	return err
}
