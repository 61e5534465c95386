package checkpoint

import "github.com/pkg/errors"

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~float32 | ~float64
}

func contiguousStride(shape []int) []int {
	stride := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		stride[i] = acc
		acc *= shape[i]
	}
	return stride
}

// gather copies the view (offset, shape, stride) of src into a row-major
// float32 buffer, last dimension varying fastest.
func gather[T number](src []T, offset int, shape, stride []int) ([]float32, error) {
	n := 1
	for _, d := range shape {
		if d < 0 { return nil, errors.Errorf("negative dimension in shape %v", shape) }
		n *= d
	}
	if n == 0 { return []float32{}, nil }
	if len(stride) != len(shape) { stride = contiguousStride(shape) }
	last := offset
	for i, d := range shape {
		if stride[i] < 0 { return nil, errors.Errorf("negative stride %v", stride) }
		last += (d - 1) * stride[i]
	}
	if offset < 0 || last >= len(src) {
		return nil, errors.Errorf("view offset=%d shape=%v stride=%v exceeds storage of %d elements", offset, shape, stride, len(src))
	}
	out := make([]float32, n)
	if isContiguous(shape, stride) {
		for i, v := range src[offset : offset+n] { out[i] = float32(v) }
		return out, nil
	}
	idx := make([]int, len(shape))
	pos := offset
	for i := 0; i < n; i++ {
		out[i] = float32(src[pos])
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			pos += stride[d]
			if idx[d] < shape[d] { break }
			pos -= stride[d] * shape[d]
			idx[d] = 0
		}
	}
	return out, nil
}

func isContiguous(shape, stride []int) bool {
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] != 1 && stride[i] != acc { return false }
		acc *= shape[i]
	}
	return true
}

func boolsToBytes(b []bool) []uint8 {
	out := make([]uint8, len(b))
	for i, v := range b {
		if v { out[i] = 1 }
	}
	return out
}
