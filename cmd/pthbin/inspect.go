package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/qrv0/pthbin/internal/convert"
	"github.com/qrv0/pthbin/internal/fileformat"
	"github.com/qrv0/pthbin/internal/tensorstat"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "list parameters of a checkpoint with shape, dtype and value statistics",
		ArgsUsage: "-m <checkpoint|file.gguf>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.String("model-path")
			if path == "" { path = c.Args().First() }
			if path == "" { return errors.New("usage: pthbin inspect -m <checkpoint|file.gguf>") }
			out := c.Root().Writer
			if filepath.Ext(path) == ".gguf" { return inspectGGUF(out, path) }
			return inspectCheckpoint(ctx, out, path, c.String("key"))
		},
	}
}

func inspectCheckpoint(ctx context.Context, out io.Writer, path, key string) error {
	ck, err := loadCheckpoint(ctx, path, key)
	if err != nil { return err }
	fmt.Fprintf(out, "%s: format=%s params=%d\n", path, ck.Format, len(ck.Params))
	keys := make([]string, 0, len(ck.Metadata))
	for k := range ck.Metadata { keys = append(keys, k) }
	sort.Strings(keys)
	for _, k := range keys { fmt.Fprintf(out, "  %s=%s\n", k, ck.Metadata[k]) }
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHAPE\tDTYPE\tCOUNT\tMIN\tMAX\tMEAN\tSTD")
	for _, s := range tensorstat.SummarizeAll(ck.Params) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.6g\t%.6g\t%.6g\t%.6g", s.Name, convert.FormatShape(s.Shape), s.DType, s.Count, s.Min, s.Max, s.Mean, s.Std)
		if s.NonFinite > 0 { fmt.Fprintf(tw, "\t(%d non-finite)", s.NonFinite) }
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func inspectGGUF(out io.Writer, path string) error {
	info, err := fileformat.InspectGGUF(path)
	if err != nil { return err }
	fmt.Fprintf(out, "GGUF: magic=%q version=%d tensors=%d kvs=%d\n", string(info.Magic[:]), info.Version, info.TensorCount, info.KVCount)
	for _, t := range info.Tensors {
		fmt.Fprintf(out, "  %-30s %s offset=%d\n", t.Name, convert.FormatShape(t.Shape), t.Offset)
	}
	return nil
}
