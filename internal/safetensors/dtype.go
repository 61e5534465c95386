package safetensors

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// elemSize reports the byte width of a safetensors dtype, 0 if unknown.
func elemSize(dtype string) int {
	switch dtype {
	case "F64", "I64", "U64":
		return 8
	case "F32", "I32", "U32":
		return 4
	case "F16", "BF16", "I16", "U16":
		return 2
	case "I8", "U8", "BOOL":
		return 1
	}
	return 0
}

// ToFloat32 decodes little-endian tensor bytes of the given dtype into float32,
// applying plain numeric conversion for every dtype.
func ToFloat32(b []byte, dtype string, nelem int) ([]float32, error) {
	sz := elemSize(dtype)
	if sz == 0 { return nil, errors.Errorf("unsupported dtype %q", dtype) }
	if len(b) != sz*nelem {
		return nil, errors.Errorf("dtype %s: have %d bytes, want %d for %d elements", dtype, len(b), sz*nelem, nelem)
	}
	out := make([]float32, nelem)
	le := binary.LittleEndian
	switch dtype {
	case "F32":
		for i := range out { out[i] = math.Float32frombits(le.Uint32(b[4*i:])) }
	case "F64":
		for i := range out { out[i] = float32(math.Float64frombits(le.Uint64(b[8*i:]))) }
	case "F16":
		for i := range out { out[i] = float16.Frombits(le.Uint16(b[2*i:])).Float32() }
	case "BF16":
		// bf16 is the high half of an f32
		for i := range out { out[i] = math.Float32frombits(uint32(le.Uint16(b[2*i:])) << 16) }
	case "I64":
		for i := range out { out[i] = float32(int64(le.Uint64(b[8*i:]))) }
	case "U64":
		for i := range out { out[i] = float32(le.Uint64(b[8*i:])) }
	case "I32":
		for i := range out { out[i] = float32(int32(le.Uint32(b[4*i:]))) }
	case "U32":
		for i := range out { out[i] = float32(le.Uint32(b[4*i:])) }
	case "I16":
		for i := range out { out[i] = float32(int16(le.Uint16(b[2*i:]))) }
	case "U16":
		for i := range out { out[i] = float32(le.Uint16(b[2*i:])) }
	case "I8":
		for i := range out { out[i] = float32(int8(b[i])) }
	case "U8":
		for i := range out { out[i] = float32(b[i]) }
	case "BOOL":
		for i := range out {
			if b[i] != 0 { out[i] = 1 }
		}
	}
	return out, nil
}
