package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/dev/follower"
	"github.com/yndnr/graphdev-go/internal/dev/session"
)

// SessionCommand returns the session subcommand group. Each subcommand is
// a single round trip to the running leader.
func SessionCommand() *cli.Command {
	definitionFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Subgraph name (required)",
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Routing URL (required)",
		},
		&cli.PathFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "SDL file",
		},
	}

	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Inspect or change a running dev session",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the subgraphs in the session",
				Action: sessionList,
			},
			{
				Name:   "add",
				Usage:  "Add a subgraph",
				Flags:  definitionFlags,
				Action: sessionAdd,
			},
			{
				Name:   "update",
				Usage:  "Replace a subgraph's URL or schema",
				Flags:  definitionFlags,
				Action: sessionUpdate,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a subgraph",
				ArgsUsage: "NAME",
				Action:    sessionRemove,
			},
			{
				Name:   "version",
				Usage:  "Check that the session leader runs this graphdev build",
				Action: sessionVersion,
			},
		},
	}
}

func attach(e *env) *follower.Messenger {
	return follower.NewAttachedSession(e.cfg.Session.Socket,
		follower.WithLogger(e.log),
		follower.WithHeartbeatInterval(e.cfg.Session.Heartbeat),
	)
}

// definition builds the subgraph from --name, --url and --schema. The URL
// is checked here; the session forwards definitions without looking inside.
func definition(c *cli.Context) (domain.SubgraphDefinition, error) {
	def := domain.SubgraphDefinition{Name: c.String("name"), URL: c.String("url")}
	for _, flag := range []string{"name", "url"} {
		if c.String(flag) == "" {
			return def, domain.ErrMissingArgument.WithDetails("--" + flag + " is required")
		}
	}
	if path := c.Path("schema"); path != "" {
		sdl, err := session.LoadSchema(path)
		if err != nil {
			return def, err
		}
		def.Schema = sdl
	}
	if err := def.Validate(); err != nil {
		return def, err
	}
	return def, nil
}

func sessionList(c *cli.Context) error {
	e := envFrom(c)
	keys, _, err := attach(e).SessionSubgraphs()
	if err != nil {
		return err
	}
	return e.print(keys.Sorted())
}

func sessionAdd(c *cli.Context) error {
	return sendDefinition(c, (*follower.Messenger).AddSubgraph)
}

func sessionUpdate(c *cli.Context) error {
	return sendDefinition(c, (*follower.Messenger).UpdateSubgraph)
}

func sendDefinition(c *cli.Context, send func(*follower.Messenger, domain.SubgraphDefinition) (domain.SubgraphKeys, bool, error)) error {
	e := envFrom(c)
	def, err := definition(c)
	if err != nil {
		return err
	}

	m := attach(e)
	if err := m.VersionCheck(); err != nil {
		return err
	}
	keys, _, err := send(m, def)
	if err != nil {
		return err
	}
	return e.print(keys.Sorted())
}

func sessionRemove(c *cli.Context) error {
	e := envFrom(c)
	name := c.Args().First()
	if name == "" {
		return domain.ErrMissingArgument.WithDetails("subgraph NAME is required")
	}

	m := attach(e)
	if err := m.VersionCheck(); err != nil {
		return err
	}
	keys, _, err := m.RemoveSubgraph(name)
	if err != nil {
		return err
	}
	return e.print(keys.Sorted())
}

// versionReport is the result of `graphdev session version`.
type versionReport struct {
	Version string `json:"version" yaml:"version"`
	Socket  string `json:"socket" yaml:"socket"`
	State   string `json:"state" yaml:"state"`
}

func sessionVersion(c *cli.Context) error {
	e := envFrom(c)
	m := attach(e)
	if err := m.VersionCheck(); err != nil {
		return err
	}
	return e.print(versionReport{
		Version: m.Version(),
		Socket:  e.cfg.Session.Socket,
		State:   m.VersionState().String(),
	})
}
