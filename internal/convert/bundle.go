package convert

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/qrv0/pthbin/internal/checkpoint"
	"github.com/qrv0/pthbin/internal/fileformat"
)

// Bundle writes all parameters as F32 tensors into one GGUF file at path,
// keeping checkpoint order. Scalars are stored with shape [1].
func Bundle(ck *checkpoint.Checkpoint, path string) error {
	w := fileformat.NewGGUFWriter()
	w.AddKV(fileformat.GGUFKV{Key: "general.name", Type: fileformat.GGUFTypeString, Value: filepath.Base(ck.Path)})
	w.AddKV(fileformat.GGUFKV{Key: "general.alignment", Type: fileformat.GGUFTypeUint32, Value: uint32(w.DataAlign)})
	w.AddKV(fileformat.GGUFKV{Key: "pthbin.source_format", Type: fileformat.GGUFTypeString, Value: string(ck.Format)})
	for _, p := range ck.Params {
		shape := p.Shape
		if len(shape) == 0 { shape = []int{1} }
		w.AddTensor(fileformat.GGUFTensor{Name: p.Name, Shape: shape, Data: EncodeF32(p.Data)})
	}
	// encode before creating the file; encoding errors are not filesystem errors
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil { return errors.Wrapf(err, "bundle %s", path) }
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil { return &FilesystemError{Op: "mkdir", Path: dir, Err: err} }
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}
