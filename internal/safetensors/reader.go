package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

// Minimal safetensors reader for a single file.
// File layout: [header_len:u64][header_json][tensor_data...]

type TensorMeta struct {
	Dtype string  `json:"dtype"`
	Shape []int64 `json:"shape"`
	Data  []int64 `json:"data_offsets"`
}

type Tensor struct {
	Name string
	Meta TensorMeta
	Data []byte
}

// File holds every tensor of a safetensors file, ordered by data offset.
type File struct {
	// Metadata is the free-form __metadata__ string map, if present.
	Metadata map[string]string
	Tensors  []Tensor
}

// maxHeaderLen guards against reading garbage as a header length.
const maxHeaderLen = 100 << 20

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil { return nil, err }
	defer f.Close()
	st, err := f.Stat()
	if err != nil { return nil, err }
	br := bufio.NewReader(f)
	var hdrLen uint64
	if err := binary.Read(br, binary.LittleEndian, &hdrLen); err != nil { return nil, errors.Wrap(err, "read header length") }
	if hdrLen == 0 || hdrLen > maxHeaderLen || int64(8+hdrLen) > st.Size() {
		return nil, errors.Errorf("invalid header length %d", hdrLen)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(br, hdrBytes); err != nil { return nil, err }
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(hdrBytes, &raw); err != nil { return nil, errors.Wrap(err, "invalid header") }
	out := &File{}
	base := int64(8 + hdrLen)
	dataLen := st.Size() - base
	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &out.Metadata); err != nil { return nil, errors.Wrap(err, "invalid __metadata__") }
			continue
		}
		var meta TensorMeta
		if err := json.Unmarshal(msg, &meta); err != nil { return nil, errors.Wrapf(err, "tensor %s", name) }
		if len(meta.Data) != 2 { return nil, errors.Errorf("tensor %s: missing data_offsets", name) }
		start, end := meta.Data[0], meta.Data[1]
		if start < 0 || end < start || end > dataLen {
			return nil, errors.Errorf("tensor %s: data_offsets [%d,%d) out of range", name, start, end)
		}
		buf := make([]byte, end-start)
		if len(buf) > 0 {
			if _, err := f.ReadAt(buf, base+start); err != nil { return nil, err }
		}
		out.Tensors = append(out.Tensors, Tensor{Name: name, Meta: meta, Data: buf})
	}
	// writers lay tensors out in insertion order, so offsets recover it
	sort.SliceStable(out.Tensors, func(i, j int) bool {
		a, b := out.Tensors[i].Meta.Data[0], out.Tensors[j].Meta.Data[0]
		if a != b { return a < b }
		return out.Tensors[i].Name < out.Tensors[j].Name
	})
	return out, nil
}

// NumElements is the product of the shape; 1 for scalars.
func (m TensorMeta) NumElements() int {
	n := 1
	for _, d := range m.Shape { n *= int(d) }
	return n
}
