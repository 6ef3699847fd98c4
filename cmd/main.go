package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agnosticeng/dbal/cmd/capabilities"
	"github.com/agnosticeng/dbal/cmd/exec"
	"github.com/agnosticeng/dbal/cmd/ping"
	"github.com/agnosticeng/dbal/cmd/query"
	"github.com/agnosticeng/panicsafe"
	"github.com/agnosticeng/slogcli"
	"github.com/urfave/cli/v2"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	app := cli.App{
		Name:   "dbal",
		Flags:  slogcli.SlogFlags(),
		Before: slogcli.SlogBefore,
		Commands: []*cli.Command{
			query.Command(),
			exec.Command(),
			capabilities.Command(),
			ping.Command(),
		},
	}

	var err = panicsafe.Recover(func() error { return app.Run(os.Args) })

	if err != nil {
		slog.Error(fmt.Sprintf("%v", err))
		os.Exit(1)
	}
}
