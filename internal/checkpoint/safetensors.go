package checkpoint

import (
	"github.com/qrv0/pthbin/internal/safetensors"
)

func loadSafetensors(path string) ([]Param, map[string]string, error) {
	st, err := safetensors.Open(path)
	if err != nil { return nil, nil, err }
	params := make([]Param, 0, len(st.Tensors))
	for _, t := range st.Tensors {
		shape := make([]int, len(t.Meta.Shape))
		for i, d := range t.Meta.Shape { shape[i] = int(d) }
		data, err := safetensors.ToFloat32(t.Data, t.Meta.Dtype, t.Meta.NumElements())
		if err != nil { return nil, nil, &CastError{Name: t.Name, DType: t.Meta.Dtype, Err: err} }
		params = append(params, Param{Name: t.Name, Shape: shape, DType: t.Meta.Dtype, Data: data})
	}
	return params, st.Metadata, nil
}
