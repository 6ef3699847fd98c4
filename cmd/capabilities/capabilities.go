package capabilities

import (
	"fmt"

	"github.com/agnosticeng/dbal/internal/cmdutil"
	"github.com/urfave/cli/v2"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:  "capabilities",
		Flags: cmdutil.Flags,
		Action: func(ctx *cli.Context) error {
			conn, err := cmdutil.Open(ctx)

			if err != nil {
				return err
			}

			defer conn.Close()

			info, err := conn.DriverInfo(ctx.Context)

			if err != nil {
				return err
			}

			fmt.Println("driver:", info.Driver)
			fmt.Println("version:", info.Version)
			fmt.Println("lock:", info.Capabilities.HasLock())
			fmt.Println("lock_and_skip:", info.Capabilities.HasLockAndSkip())
			fmt.Println("window_functions:", info.Capabilities.HasWindowFunctions())
			fmt.Println("json:", info.Capabilities.HasJSON())
			fmt.Println("strict_mode:", info.Capabilities.HasStrictMode())
			return nil
		},
	}
}
