package query

import (
	"encoding/json"
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
		Name:  "query",
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			var (
				logger = slogctx.FromCtx(ctx.Context)
				query  = ctx.Args().Get(0)
				params = cmdutil.ParseParams(ctx.StringSlice("param"))
			)

			if len(query) == 0 {
				return fmt.Errorf("a query must be specified")
			}

			conn, err := cmdutil.Open(ctx)

			if err != nil {
				return err
			}

			defer conn.Close()

			var t0 = time.Now()

			iter, err := conn.YieldAll(ctx.Context, query, params)

			if err != nil {
				return err
			}

			defer iter.Close()

			var rows int

			for iter.Next(ctx.Context) {
				data, err := json.Marshal(iter.Row())

				if err != nil {
					return err
				}

				fmt.Println(string(data))
				rows++
			}

			if err := iter.Err(); err != nil {
				return err
			}

			logger.Debug("query finished", "rows", rows, "duration", time.Since(t0))
			return nil
		},
	}
}
