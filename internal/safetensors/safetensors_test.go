package safetensors

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestWriteOpenKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.safetensors")
	entries := []Entry{
		{Name: "z.weight", Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}},
		{Name: "a.bias", Shape: []int{2}, Data: []float32{-1, 0.5}},
		{Name: "scalar", Shape: []int{}, Data: []float32{7}},
	}
	require.NoError(t, WriteF32(path, entries))

	f, err := Open(path)
	require.NoError(t, err)
	require.Len(t, f.Tensors, 3)
	for i, e := range entries {
		got := f.Tensors[i]
		require.Equal(t, e.Name, got.Name)
		require.Equal(t, "F32", got.Meta.Dtype)
		require.Equal(t, len(e.Data), got.Meta.NumElements())
		vals, err := ToFloat32(got.Data, got.Meta.Dtype, got.Meta.NumElements())
		require.NoError(t, err)
		require.Equal(t, e.Data, vals)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.safetensors")
	meta := map[string]string{"format": "pt", "epoch": "12"}
	require.NoError(t, WriteF32Meta(path, meta, []Entry{{Name: "w", Shape: []int{1}, Data: []float32{1}}}))
	f, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, meta, f.Metadata)
	require.Len(t, f.Tensors, 1)
}

func TestOpenRejectsNonStringMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.safetensors")
	hdr := []byte(`{"__metadata__":{"epoch":12},"w":{"dtype":"F32","shape":[1],"data_offsets":[0,4]}}`)
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], uint64(len(hdr)))
	buf := append(b8[:], hdr...)
	buf = append(buf, make([]byte, 4)...)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	_, err := Open(path)
	require.ErrorContains(t, err, "__metadata__")
}

func TestOpenRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.safetensors")
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], 1<<40)
	require.NoError(t, os.WriteFile(path, append(b8[:], '{', '}'), 0o644))
	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenRejectsOutOfRangeOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.safetensors")
	hdr := []byte(`{"w":{"dtype":"F32","shape":[4],"data_offsets":[0,16]}}`)
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], uint64(len(hdr)))
	buf := append(b8[:], hdr...)
	buf = append(buf, make([]byte, 8)...)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	_, err := Open(path)
	require.ErrorContains(t, err, "out of range")
}

func TestToFloat32Dtypes(t *testing.T) {
	le := binary.LittleEndian

	f16 := make([]byte, 4)
	le.PutUint16(f16[0:], float16.Fromfloat32(1.5).Bits())
	le.PutUint16(f16[2:], float16.Fromfloat32(-2).Bits())
	got, err := ToFloat32(f16, "F16", 2)
	require.NoError(t, err)
	require.Equal(t, []float32{1.5, -2}, got)

	bf16 := make([]byte, 2)
	le.PutUint16(bf16, uint16(math.Float32bits(3.0)>>16))
	got, err = ToFloat32(bf16, "BF16", 1)
	require.NoError(t, err)
	require.Equal(t, []float32{3}, got)

	f64 := make([]byte, 8)
	le.PutUint64(f64, math.Float64bits(0.25))
	got, err = ToFloat32(f64, "F64", 1)
	require.NoError(t, err)
	require.Equal(t, []float32{0.25}, got)

	i64 := make([]byte, 8)
	neg := int64(-5)
	le.PutUint64(i64, uint64(neg))
	got, err = ToFloat32(i64, "I64", 1)
	require.NoError(t, err)
	require.Equal(t, []float32{-5}, got)

	got, err = ToFloat32([]byte{0xff, 0x02}, "I8", 2)
	require.NoError(t, err)
	require.Equal(t, []float32{-1, 2}, got)

	got, err = ToFloat32([]byte{0, 3}, "BOOL", 2)
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1}, got)
}

func TestToFloat32Errors(t *testing.T) {
	_, err := ToFloat32(make([]byte, 8), "C64", 1)
	require.ErrorContains(t, err, "unsupported dtype")
	_, err = ToFloat32(make([]byte, 6), "F32", 2)
	require.Error(t, err)
}
