package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
)

// Entry is one F32 tensor to serialize.
type Entry struct {
	Name  string
	Shape []int
	Data  []float32
}

// WriteF32 writes entries as F32 tensors, laid out in slice order.
func WriteF32(path string, entries []Entry) error { return WriteF32Meta(path, nil, entries) }

// WriteF32Meta is WriteF32 with a __metadata__ block.
func WriteF32Meta(path string, metadata map[string]string, entries []Entry) error {
	header := make(map[string]any, len(entries)+1)
	if len(metadata) > 0 { header["__metadata__"] = metadata }
	off := 0
	for _, e := range entries {
		size := 4 * len(e.Data)
		shape := e.Shape
		if shape == nil { shape = []int{} }
		header[e.Name] = map[string]any{
			"dtype":        "F32",
			"shape":        shape,
			"data_offsets": []int{off, off + size},
		}
		off += size
	}
	hb, err := json.Marshal(header)
	if err != nil { return err }
	f, err := os.Create(path)
	if err != nil { return err }
	defer f.Close()
	bw := bufio.NewWriter(f)
	var b8 [8]byte
	binary.LittleEndian.PutUint64(b8[:], uint64(len(hb)))
	if _, err := bw.Write(b8[:]); err != nil { return err }
	if _, err := bw.Write(hb); err != nil { return err }
	var b4 [4]byte
	for _, e := range entries {
		for _, v := range e.Data {
			binary.LittleEndian.PutUint32(b4[:], math.Float32bits(v))
			if _, err := bw.Write(b4[:]); err != nil { return err }
		}
	}
	if err := bw.Flush(); err != nil { return err }
	return f.Close()
}
