package fileformat

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func f32le(vals ...float32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals { binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v)) }
	return b
}

func TestGGUFWriteInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.gguf")
	w := NewGGUFWriter()
	w.AddKV(GGUFKV{Key: "general.name", Type: GGUFTypeString, Value: "toy"})
	w.AddKV(GGUFKV{Key: "general.alignment", Type: GGUFTypeUint32, Value: uint32(32)})
	w.AddTensor(GGUFTensor{Name: "fc.weight", Shape: []int{2, 3}, Data: f32le(1, 2, 3, 4, 5, 6)})
	w.AddTensor(GGUFTensor{Name: "fc.bias", Shape: []int{2}, Data: f32le(7, 8)})
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	info, err := InspectGGUF(path)
	require.NoError(t, err)
	require.Equal(t, "GGUF", string(info.Magic[:]))
	require.EqualValues(t, 3, info.Version)
	require.EqualValues(t, 2, info.TensorCount)
	require.EqualValues(t, 2, info.KVCount)
	require.Equal(t, "toy", info.KVs["general.name"])
	require.Equal(t, uint32(32), info.KVs["general.alignment"])
	require.Len(t, info.Tensors, 2)
	require.Equal(t, "fc.weight", info.Tensors[0].Name)
	require.Equal(t, []int{2, 3}, info.Tensors[0].Shape)
	require.EqualValues(t, 0, info.Tensors[0].Offset)
	require.Equal(t, "fc.bias", info.Tensors[1].Name)
	require.EqualValues(t, 32, info.Tensors[1].Offset)

	// data region starts at the first aligned offset after the metadata
	raw := buf.Bytes()
	start := len(raw) - (32 + 8)
	require.Zero(t, start%32)
	require.Equal(t, f32le(1, 2, 3, 4, 5, 6), raw[start:start+24])
	require.Equal(t, f32le(7, 8), raw[start+32:])
}

func TestGGUFWriteRejectsSizeMismatch(t *testing.T) {
	w := NewGGUFWriter()
	w.AddTensor(GGUFTensor{Name: "x", Shape: []int{3}, Data: f32le(1)})
	require.Error(t, w.Write(&bytes.Buffer{}))
}

func TestGGUFWriteRejectsKVTypeMismatch(t *testing.T) {
	w := NewGGUFWriter()
	w.AddKV(GGUFKV{Key: "k", Type: GGUFTypeUint32, Value: "nope"})
	require.Error(t, w.Write(&bytes.Buffer{}))
}

func TestInspectGGUFRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gguf")
	require.NoError(t, os.WriteFile(path, []byte("NOPE0000"), 0o644))
	_, err := InspectGGUF(path)
	require.Error(t, err)
}
