package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/session"
)

// DevCommand returns `graphdev dev`.
func DevCommand() *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Add a subgraph to the local dev session, starting one if none is running",
		Description: "The first `graphdev dev` leads the session on the socket. Later ones attach,\n" +
			"contribute their subgraph and exit when the leader goes away.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Subgraph name (required)",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Routing URL of the running subgraph (required)",
			},
			&cli.PathFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "SDL file; edits are pushed to the session",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics here when leading (e.g. 127.0.0.1:9464)",
			},
		},
		Action: devRun,
	}
}

func devRun(c *cli.Context) error {
	e := envFrom(c)

	def, err := definition(c)
	if err != nil {
		return err
	}
	schemaPath := c.Path("schema")

	metricsAddr := e.cfg.Metrics.Addr
	if c.IsSet("metrics-addr") {
		metricsAddr = c.String("metrics-addr")
	}

	s, err := session.Join(session.Config{
		SocketPath:        e.cfg.Session.Socket,
		HeartbeatInterval: e.cfg.Session.Heartbeat,
		MetricsAddr:       metricsAddr,
		Logger:            e.log,
		OnChange: func(keys domain.SubgraphKeys) {
			fmt.Fprintf(e.w, "session has %d subgraph(s)\n", len(keys))
			if err := e.print(keys); err != nil {
				e.log.Warn("could not print session membership", "error", err)
			}
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(e.w, "%s: %s session on %s\n", def.Name, s.Role(), e.cfg.Session.Socket)
	return s.Run(c.Context, def, schemaPath)
}
