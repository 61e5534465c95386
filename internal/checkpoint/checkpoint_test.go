package checkpoint

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/qrv0/pthbin/internal/safetensors"
)

func writeToySafetensors(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, safetensors.WriteF32(path, []safetensors.Entry{
		{Name: "fc.weight", Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}},
		{Name: "fc.bias", Shape: []int{2}, Data: []float32{0.5, -0.5}},
	}))
}

func TestLoadSafetensors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	writeToySafetensors(t, path)

	ck, err := Load(path, Options{})
	require.NoError(t, err)
	require.Equal(t, FormatSafetensors, ck.Format)
	require.Len(t, ck.Params, 2)
	require.Equal(t, "fc.weight", ck.Params[0].Name)
	require.Equal(t, "F32", ck.Params[0].DType)
	require.Equal(t, []int{2, 3}, ck.Params[0].Shape)
	require.Equal(t, []float32{0.5, -0.5}, ck.Params[1].Data)
}

func TestLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "model.safetensors")
	writeToySafetensors(t, plain)
	raw, err := os.ReadFile(plain)
	require.NoError(t, err)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zpath := filepath.Join(dir, "model.safetensors.zst")
	require.NoError(t, os.WriteFile(zpath, enc.EncodeAll(raw, nil), 0o644))
	require.NoError(t, enc.Close())

	var lb bytes.Buffer
	lw := lz4.NewWriter(&lb)
	_, err = lw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	lpath := filepath.Join(dir, "model.safetensors.lz4")
	require.NoError(t, os.WriteFile(lpath, lb.Bytes(), 0o644))

	for _, p := range []string{zpath, lpath} {
		ck, err := Load(p, Options{})
		require.NoError(t, err, p)
		require.Equal(t, FormatSafetensors, ck.Format)
		require.Equal(t, p, ck.Path)
		require.Len(t, ck.Params, 2)
		require.Equal(t, []float32{1, 2, 3, 4, 5, 6}, ck.Params[0].Data)
	}
}

func TestLoadCompressedTorch(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "model.pth")
	writeTorchZip(t, plain, "state_dict", fcTensors())
	raw, err := os.ReadFile(plain)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zpath := plain + ".zst"
	require.NoError(t, os.WriteFile(zpath, enc.EncodeAll(raw, nil), 0o644))
	require.NoError(t, enc.Close())

	ck, err := Load(zpath, Options{})
	require.NoError(t, err)
	require.Equal(t, FormatTorch, ck.Format)
	require.Len(t, ck.Params, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.pth"), Options{})
	var de *DeserializationError
	require.ErrorAs(t, err, &de)
	require.True(t, os.IsNotExist(de.Err))
}

func TestLoadUnrecognized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pth")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a checkpoint"), 0o644))
	_, err := Load(path, Options{})
	var de *DeserializationError
	require.ErrorAs(t, err, &de)
	require.ErrorContains(t, err, "unrecognized")
}

func TestLoadCorruptZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torn.pth")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04 truncated"), 0o644))
	_, err := Load(path, Options{})
	var de *DeserializationError
	require.ErrorAs(t, err, &de)
}
