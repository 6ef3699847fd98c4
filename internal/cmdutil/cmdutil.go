package cmdutil

import (
	"log/slog"
	"strings"

	"github.com/agnosticeng/cnf"
	"github.com/agnosticeng/cnf/providers/env"
	"github.com/agnosticeng/dbal"
	"github.com/agnosticeng/dbal/sqldriver"
	tallyctx "github.com/agnosticeng/tallyctx"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"
)

var Flags = []cli.Flag{
	&cli.StringFlag{Name: "driver", Value: "sqlite"},
	&cli.StringFlag{Name: "name"},
	&cli.StringFlag{Name: "write-dsn"},
	&cli.StringFlag{Name: "read-dsn"},
	&cli.StringFlag{Name: "username"},
	&cli.StringFlag{Name: "password"},
}

type Config struct {
	Driver     string
	Connection dbal.Config
}

func (conf Config) WithDefaults() Config {
	if len(conf.Driver) == 0 {
		conf.Driver = "sqlite"
	}

	conf.Connection = conf.Connection.WithDefaults()
	return conf
}

// Load resolves connection configuration from the environment (DBAL prefix)
// and command line flags, flags winning.
func Load(ctx *cli.Context) (Config, error) {
	var conf Config

	if err := cnf.Load(
		&conf,
		cnf.WithProvider(env.NewEnvProvider("DBAL")),
	); err != nil {
		return conf, err
	}

	if ctx.IsSet("driver") || len(conf.Driver) == 0 {
		conf.Driver = ctx.String("driver")
	}

	if s := ctx.String("name"); len(s) > 0 {
		conf.Connection.Name = s
	}

	if s := ctx.String("write-dsn"); len(s) > 0 {
		conf.Connection.WriteDSN = s
	}

	if s := ctx.String("read-dsn"); len(s) > 0 {
		conf.Connection.ReadDSN = s
	}

	if s := ctx.String("username"); len(s) > 0 {
		conf.Connection.Username = s
	}

	if s := ctx.String("password"); len(s) > 0 {
		conf.Connection.Password = s
	}

	return conf.WithDefaults(), nil
}

// Open builds a Connection from the resolved configuration, with query
// events mirrored to the context logger.
func Open(ctx *cli.Context) (*dbal.Connection, error) {
	conf, err := Load(ctx)

	if err != nil {
		return nil, err
	}

	var logger = dbal.NewSlogLog(
		dbal.NewMemoryLog(),
		slogctx.FromCtx(ctx.Context),
		slog.LevelDebug,
	)

	return dbal.New(
		sqldriver.New(conf.Driver),
		conf.Connection,
		dbal.WithLogger(logger),
		dbal.WithMetricsScope(tallyctx.FromContextOrNoop(ctx.Context)),
	)
}

/// ParseParams turns --param values into a parameter collection: entries of
// the form name=value become named parameters, anything else positional.
func ParseParams(kvs []string) any {
	if len(kvs) == 0 {
		return nil
	}

	var named = true

	for _, kv := range kvs {
		if !strings.Contains(kv, "=") {
			named = false
			break
		}
	}

	if !named {
		var args = make([]any, 0, len(kvs))

		for _, kv := range kvs {
			args = append(args, kv)
		}

		return args
	}

	var m = make(map[string]any)

	for _, kv := range kvs {
		var k, v, _ = strings.Cut(kv, "=")
		m[k] = v
	}

	return m
}
