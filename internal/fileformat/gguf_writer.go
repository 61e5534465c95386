package fileformat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Minimal GGUF v3 writer for F32 tensor containers.

// GGUF value types
const (
	GGUFTypeUint8   uint32 = 0
	GGUFTypeInt8    uint32 = 1
	GGUFTypeUint16  uint32 = 2
	GGUFTypeInt16   uint32 = 3
	GGUFTypeUint32  uint32 = 4
	GGUFTypeInt32   uint32 = 5
	GGUFTypeFloat32 uint32 = 6
	GGUFTypeBool    uint32 = 7
	GGUFTypeString  uint32 = 8
	GGUFTypeArray   uint32 = 9
	GGUFTypeUint64  uint32 = 10
	GGUFTypeInt64   uint32 = 11
	GGUFTypeFloat64 uint32 = 12
)

// GGMLTypeF32 is the only tensor type this writer emits.
const GGMLTypeF32 uint32 = 0

const ggufMagic = "GGUF"

type GGUFKV struct {
	Key   string
	Type  uint32
	Value any
}

// GGUFTensor describes one tensor to serialize.
type GGUFTensor struct {
	Name  string
	Shape []int   // row-major, outermost first
	Data  []byte  // little-endian f32, product(Shape)*4 bytes
}

// GGUFWriter builds a GGUF file. Tensors keep the order they were added in.
type GGUFWriter struct {
	KVs       []GGUFKV
	Tensors   []GGUFTensor
	DataAlign int
}

func NewGGUFWriter() *GGUFWriter { return &GGUFWriter{DataAlign: 32} }

func (w *GGUFWriter) AddKV(k GGUFKV)         { w.KVs = append(w.KVs, k) }
func (w *GGUFWriter) AddTensor(t GGUFTensor) { w.Tensors = append(w.Tensors, t) }

func alignUp64(x, a uint64) uint64 {
	r := x % a
	if r == 0 { return x }
	return x + (a - r)
}

func writeU64(buf *bytes.Buffer, v uint64) { _ = binary.Write(buf, binary.LittleEndian, v) }
func writeU32(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.LittleEndian, v) }

func writeString(buf *bytes.Buffer, s string) {
	writeU64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeKV(buf *bytes.Buffer, kv GGUFKV) error {
	writeString(buf, kv.Key)
	writeU32(buf, kv.Type)
	switch kv.Type {
	case GGUFTypeString:
		s, ok := kv.Value.(string)
		if !ok { return errors.Errorf("gguf: kv %s: want string, have %T", kv.Key, kv.Value) }
		writeString(buf, s)
	case GGUFTypeBool:
		b, _ := kv.Value.(bool)
		var u uint8
		if b { u = 1 }
		buf.WriteByte(u)
	case GGUFTypeUint8, GGUFTypeInt8, GGUFTypeUint16, GGUFTypeInt16, GGUFTypeUint32, GGUFTypeInt32,
		GGUFTypeUint64, GGUFTypeInt64, GGUFTypeFloat32, GGUFTypeFloat64:
		// fixed-size scalars
		if scalarSize(kv.Type) != binary.Size(kv.Value) {
			return errors.Errorf("gguf: kv %s: value %T does not match type %d", kv.Key, kv.Value, kv.Type)
		}
		return binary.Write(buf, binary.LittleEndian, kv.Value)
	default:
		return errors.New("gguf: unsupported kv type")
	}
	return nil
}

func scalarSize(t uint32) int {
	switch t {
	case GGUFTypeUint8, GGUFTypeInt8, GGUFTypeBool:
		return 1
	case GGUFTypeUint16, GGUFTypeInt16:
		return 2
	case GGUFTypeUint32, GGUFTypeInt32, GGUFTypeFloat32:
		return 4
	case GGUFTypeUint64, GGUFTypeInt64, GGUFTypeFloat64:
		return 8
	}
	return -1
}

// Write serializes header, KVs, tensor infos and the aligned data region.
// Dims are stored in ggml order, innermost first.
func (w *GGUFWriter) Write(out io.Writer) error {
	align := uint64(w.DataAlign)
	if align == 0 { align = 32 }
	var meta bytes.Buffer
	meta.WriteString(ggufMagic)
	writeU32(&meta, 3)
	writeU64(&meta, uint64(len(w.Tensors)))
	writeU64(&meta, uint64(len(w.KVs)))
	for _, kv := range w.KVs {
		if err := writeKV(&meta, kv); err != nil { return err }
	}
	offs := make([]uint64, len(w.Tensors))
	var cur uint64
	for i, t := range w.Tensors {
		expect := uint64(4)
		for _, d := range t.Shape { expect *= uint64(d) }
		if uint64(len(t.Data)) != expect {
			return errors.Errorf("gguf: tensor %s: have %d bytes, want %d", t.Name, len(t.Data), expect)
		}
		cur = alignUp64(cur, align)
		offs[i] = cur
		cur += expect
	}
	for i, t := range w.Tensors {
		writeString(&meta, t.Name)
		writeU32(&meta, uint32(len(t.Shape)))
		for j := len(t.Shape) - 1; j >= 0; j-- { writeU64(&meta, uint64(t.Shape[j])) }
		writeU32(&meta, GGMLTypeF32)
		writeU64(&meta, offs[i])
	}
	if pad := alignUp64(uint64(meta.Len()), align) - uint64(meta.Len()); pad > 0 {
		meta.Write(make([]byte, pad))
	}
	if _, err := out.Write(meta.Bytes()); err != nil { return err }
	var pos uint64
	for i, t := range w.Tensors {
		if gap := offs[i] - pos; gap > 0 {
			if _, err := out.Write(make([]byte, gap)); err != nil { return err }
		}
		if _, err := out.Write(t.Data); err != nil { return err }
		pos = offs[i] + uint64(len(t.Data))
	}
	return nil
}
