// Package checkpoint loads named parameter tensors from model checkpoints and
// casts them to flat row-major float32 buffers.
package checkpoint

import (
	"os"

	"github.com/pkg/errors"
)

type Format string

const (
	FormatTorch       Format = "torch"
	FormatSafetensors Format = "safetensors"
)

// DefaultKey is the wrapper key unwrapped when the checkpoint is a mapping
// that carries the parameters under it.
const DefaultKey = "state_dict"

// Param is one named tensor, already cast to float32 and flattened.
type Param struct {
	Name  string
	Shape []int
	DType string
	Data  []float32
}

// NumElements is the product of the shape; 1 for scalars.
func (p Param) NumElements() int {
	n := 1
	for _, d := range p.Shape { n *= d }
	return n
}

type Checkpoint struct {
	Path   string
	Format Format
	// Params keeps the checkpoint's own iteration order.
	Params []Param
	// Metadata is the safetensors __metadata__ block; nil for torch files.
	Metadata map[string]string
}

type Options struct {
	// Key overrides DefaultKey. Ignored for formats without wrappers.
	Key string
}

// Load reads the checkpoint at path. Compressed (zstd, lz4) checkpoints are
// decompressed to a temp file first.
func Load(path string, opt Options) (*Checkpoint, error) {
	if opt.Key == "" { opt.Key = DefaultKey }
	format, tmp, err := detect(path)
	if err != nil { return nil, &DeserializationError{Path: path, Err: err} }
	src := path
	if tmp != "" {
		defer os.Remove(tmp)
		src = tmp
	}
	var (
		params []Param
		meta   map[string]string
	)
	switch format {
	case FormatTorch:
		params, err = loadTorch(src, opt.Key)
	case FormatSafetensors:
		params, meta, err = loadSafetensors(src)
	default:
		err = errors.Errorf("unrecognized checkpoint format")
	}
	if err != nil {
		var ce *CastError
		if errors.As(err, &ce) { return nil, err }
		var de *DeserializationError
		if errors.As(err, &de) { return nil, err }
		return nil, &DeserializationError{Path: path, Err: err}
	}
	return &Checkpoint{Path: path, Format: format, Params: params, Metadata: meta}, nil
}
