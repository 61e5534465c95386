package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/qrv0/pthbin/internal/checkpoint"
	"github.com/qrv0/pthbin/internal/convert"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pthbin: ")
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Print(err)
		os.Exit(exitCode(err))
	}
}

func newApp(out io.Writer) *cli.Command {
	var opt convertOptions
	return &cli.Command{
		Name:      "pthbin",
		Usage:     "dump each parameter of a checkpoint to its own raw float32 .bin file",
		UsageText: "pthbin --model-path model.pth [--output-dir bins] [--manifest]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "model-path",
				Aliases:     []string{"m"},
				Usage:       "path or http(s) URL of the checkpoint (.pth, .pt, .safetensors, optionally .zst/.lz4)",
				Sources:     cli.EnvVars("PTHBIN_MODEL_PATH"),
				Destination: &opt.modelPath,
			},
			&cli.StringFlag{
				Name:        "output-dir",
				Aliases:     []string{"o"},
				Usage:       "directory to write .bin files into",
				Value:       convert.DefaultOutputDir,
				Sources:     cli.EnvVars("PTHBIN_OUTPUT_DIR"),
				Destination: &opt.outputDir,
			},
			&cli.StringFlag{
				Name:        "key",
				Aliases:     []string{"k"},
				Usage:       "wrapper key holding the parameter mapping",
				Value:       checkpoint.DefaultKey,
				Sources:     cli.EnvVars("PTHBIN_KEY"),
				Destination: &opt.key,
			},
			&cli.BoolFlag{
				Name:        "manifest",
				Usage:       "also write manifest.json with shapes and xxh3 checksums",
				Destination: &opt.manifest,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runConvert(ctx, c.Root().Writer, opt)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			verifyCmd(),
			bundleCmd(),
		},
	}
}

// exit codes per failure class; 1 covers usage and anything unclassified
func exitCode(err error) int {
	var (
		de *checkpoint.DeserializationError
		ce *checkpoint.CastError
		fe *convert.FilesystemError
	)
	switch {
	case errors.As(err, &de):
		return 2
	case errors.As(err, &ce):
		return 3
	case errors.As(err, &fe):
		return 4
	case errors.Is(err, errVerifyFailed):
		return 5
	}
	return 1
}
