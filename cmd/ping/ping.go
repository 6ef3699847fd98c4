package ping

import (
	"context"
	"time"

	"github.com/agnosticeng/dbal"
	"github.com/agnosticeng/dbal/internal/cmdutil"
	"github.com/agnosticeng/dbal/sqldriver"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"
)

// A Connection is single-goroutine, so each probe gets its own Connection
// and the probes run concurrently.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Flags: cmdutil.Flags,
		Action: func(ctx *cli.Context) error {
			conf, err := cmdutil.Load(ctx)

			if err != nil {
				return err
			}

			var group, groupctx = errgroup.WithContext(ctx.Context)

			group.Go(probe(groupctx, conf.Driver, conf.Connection.Name+"-write", conf.Connection.WriteDSN, conf.Connection))

			if len(conf.Connection.ReadDSN) > 0 {
				group.Go(probe(groupctx, conf.Driver, conf.Connection.Name+"-read", conf.Connection.ReadDSN, conf.Connection))
			}

			return group.Wait()
		},
	}
}

func probe(ctx context.Context, driver string, name string, dsn string, base dbal.Config) func() error {
	return func() error {
		var logger = slogctx.FromCtx(ctx)

		conn, err := dbal.New(sqldriver.New(driver), dbal.Config{
			Name:     name,
			WriteDSN: dsn,
			Username: base.Username,
			Password: base.Password,
		})

		if err != nil {
			return err
		}

		defer conn.Close()

		var t0 = time.Now()

		if _, err := conn.FetchOne(ctx, "SELECT 1", nil); err != nil {
			return err
		}

		logger.Info("connection alive", "connection", name, "duration", time.Since(t0))
		return nil
	}
}
