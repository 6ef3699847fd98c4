package exec

import (
	"fmt"
	"time"

	"github.com/agnosticeng/dbal/internal/cmdutil"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"
)

var Flags = append(
	[]cli.Flag{
		&cli.StringSliceFlag{Name: "param"},
	},
	cmdutil.Flags...,
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "exec",
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			var (
				logger = slogctx.FromCtx(ctx.Context)
				query  = ctx.Args().Get(0)
				params = cmdutil.ParseParams(ctx.StringSlice("param"))
			)

			if len(query) == 0 {
				return fmt.Errorf("a statement must be specified")
			}

			conn, err := cmdutil.Open(ctx)

			if err != nil {
				return err
			}

			defer conn.Close()

			var t0 = time.Now()

			affected, err := conn.Exec(ctx.Context, query, params)

			if err != nil {
				return err
			}

			logger.Info("statement executed", "affected", affected, "duration", time.Since(t0))
			fmt.Println(affected)
			return nil
		},
	}
}
