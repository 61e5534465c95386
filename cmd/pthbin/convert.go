package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/qrv0/pthbin/internal/checkpoint"
	"github.com/qrv0/pthbin/internal/convert"
	"github.com/qrv0/pthbin/internal/downloader"
)

type convertOptions struct {
	modelPath string
	outputDir string
	key       string
	manifest  bool
}

func runConvert(ctx context.Context, out io.Writer, opt convertOptions) error {
	if opt.modelPath == "" {
		return errors.New("--model-path (-m) is required")
	}
	ck, err := loadCheckpoint(ctx, opt.modelPath, opt.key)
	if err != nil { return err }
	_, err = convert.Run(ck.Params, convert.Options{OutputDir: opt.outputDir, Manifest: opt.manifest, Out: out})
	return err
}

// loadCheckpoint loads a local checkpoint, fetching URLs into a temp file first.
func loadCheckpoint(ctx context.Context, modelPath, key string) (*checkpoint.Checkpoint, error) {
	src := modelPath
	if downloader.IsURL(modelPath) {
		tmp, err := downloader.Fetch(ctx, modelPath)
		if err != nil { return nil, &checkpoint.DeserializationError{Path: modelPath, Err: err} }
		defer os.Remove(tmp)
		src = tmp
	}
	ck, err := checkpoint.Load(src, checkpoint.Options{Key: key})
	if err != nil { return nil, err }
	ck.Path = modelPath
	return ck, nil
}
