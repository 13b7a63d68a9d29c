package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/graphdev-go/internal/infra/buildinfo"
)

// VersionCommand returns `graphdev version`.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return envFrom(c).print(buildinfo.Get())
		},
	}
}
