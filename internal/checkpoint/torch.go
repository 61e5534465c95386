package checkpoint

import (
	"fmt"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/pkg/errors"
)

type entry struct {
	key   interface{}
	value interface{}
}

// loadTorch reads a PyTorch zip or legacy checkpoint. Storages are always
// materialized in host memory regardless of their saved device.
func loadTorch(path, key string) ([]Param, error) {
	obj, err := pytorch.Load(path)
	if err != nil { return nil, err }
	if v, ok := lookup(obj, key); ok {
		obj = v
	}
	entries, err := items(obj)
	if err != nil { return nil, err }
	params := make([]Param, 0, len(entries))
	for _, e := range entries {
		name, ok := e.key.(string)
		if !ok { return nil, errors.Errorf("parameter name %v is %T, not a string", e.key, e.key) }
		t, ok := e.value.(*pytorch.Tensor)
		if !ok {
			return nil, &CastError{Name: name, Err: errors.Errorf("value of type %T is not a tensor", e.value)}
		}
		p, err := torchParam(name, t)
		if err != nil { return nil, err }
		params = append(params, p)
	}
	return params, nil
}

func lookup(obj interface{}, key string) (interface{}, bool) {
	switch m := obj.(type) {
	case *types.OrderedDict:
		return m.Get(key)
	case *types.Dict:
		return m.Get(key)
	}
	return nil, false
}

func items(obj interface{}) ([]entry, error) {
	switch m := obj.(type) {
	case *types.OrderedDict:
		var out []entry
		for el := m.List.Front(); el != nil; el = el.Next() {
			oe := el.Value.(*types.OrderedDictEntry)
			out = append(out, entry{key: oe.Key, value: oe.Value})
		}
		return out, nil
	case *types.Dict:
		var out []entry
		for _, de := range *m {
			out = append(out, entry{key: de.Key, value: de.Value})
		}
		return out, nil
	}
	return nil, errors.Errorf("checkpoint holds %T, not a parameter mapping", obj)
}

func torchParam(name string, t *pytorch.Tensor) (Param, error) {
	shape := append([]int{}, t.Size...)
	var (
		data  []float32
		dtype string
		err   error
	)
	switch s := t.Source.(type) {
	case *pytorch.FloatStorage:
		dtype = "float32"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.HalfStorage:
		dtype = "float16"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.BFloat16Storage:
		dtype = "bfloat16"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.DoubleStorage:
		dtype = "float64"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.CharStorage:
		dtype = "int8"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.ShortStorage:
		dtype = "int16"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.IntStorage:
		dtype = "int32"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.LongStorage:
		dtype = "int64"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.ByteStorage:
		dtype = "uint8"
		data, err = gather(s.Data, t.StorageOffset, shape, t.Stride)
	case *pytorch.BoolStorage:
		dtype = "bool"
		data, err = gather(boolsToBytes(s.Data), t.StorageOffset, shape, t.Stride)
	default:
		return Param{}, &CastError{Name: name, DType: fmt.Sprintf("%T", t.Source), Err: errors.New("unsupported storage")}
	}
	if err != nil {
		return Param{}, &CastError{Name: name, DType: dtype, Err: err}
	}
	return Param{Name: name, Shape: shape, DType: dtype, Data: data}, nil
}
