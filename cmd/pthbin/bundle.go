package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/qrv0/pthbin/internal/convert"
)

func bundleCmd() *cli.Command {
	return &cli.Command{
		Name:      "bundle",
		Usage:     "write every parameter as an F32 tensor into a single GGUF file",
		ArgsUsage: "-m <checkpoint> -o <out.gguf>",
		Action: func(ctx context.Context, c *cli.Command) error {
			args := c.Args().Slice()
			in := c.String("model-path")
			if in == "" && len(args) > 0 { in, args = args[0], args[1:] }
			outPath := ""
			if c.IsSet("output-dir") {
				outPath = c.String("output-dir")
			} else if len(args) > 0 {
				outPath = args[0]
			}
			if in == "" || outPath == "" { return errors.New("usage: pthbin bundle -m <checkpoint> -o <out.gguf>") }
			ck, err := loadCheckpoint(ctx, in, c.String("key"))
			if err != nil { return err }
			if err := convert.Bundle(ck, outPath); err != nil { return err }
			fmt.Fprintf(c.Root().Writer, "Bundled %d tensors into %s\n", len(ck.Params), outPath)
			return nil
		},
	}
}
