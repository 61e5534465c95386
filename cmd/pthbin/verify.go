package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/qrv0/pthbin/internal/convert"
)

var errVerifyFailed = errors.New("checksum verify: FAILED")

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check .bin files against the manifest written with --manifest",
		ArgsUsage: "[-d output-dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "directory holding .bin files and manifest.json"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			dir := c.String("dir")
			if dir == "" { dir = c.Args().First() }
			if dir == "" { dir = convert.DefaultOutputDir }
			bad, err := convert.Verify(dir)
			if err != nil { return err }
			out := c.Root().Writer
			for _, m := range bad { fmt.Fprintf(out, "%s: %s\n", m.File, m.Reason) }
			if len(bad) > 0 { return fmt.Errorf("%w (%d files)", errVerifyFailed, len(bad)) }
			fmt.Fprintln(out, "checksum verify: OK")
			return nil
		},
	}
}
