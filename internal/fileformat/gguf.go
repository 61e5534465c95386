package fileformat

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

type GGUFTensorInfo struct {
	Name   string
	Shape  []int // row-major, outermost first
	Type   uint32
	Offset uint64
}

type GGUFInfo struct {
	Magic       [4]byte
	Version     uint32
	TensorCount uint64
	KVCount     uint64
	// KVs holds scalar and string values; arrays are skipped.
	KVs     map[string]any
	Tensors []GGUFTensorInfo
}

// maxGGUFString bounds key and string lengths read from untrusted files.
const maxGGUFString = 1 << 20

func InspectGGUF(path string) (*GGUFInfo, error) {
	f, err := os.Open(path)
	if err != nil { return nil, err }
	defer f.Close()
	r := bufio.NewReader(f)
	var info GGUFInfo
	if _, err := io.ReadFull(r, info.Magic[:]); err != nil { return nil, err }
	if string(info.Magic[:]) != ggufMagic {
		return nil, errors.New("not GGUF")
	}
	le := binary.LittleEndian
	if err := binary.Read(r, le, &info.Version); err != nil { return nil, err }
	if info.Version < 2 { return nil, errors.Errorf("gguf: unsupported version %d", info.Version) }
	if err := binary.Read(r, le, &info.TensorCount); err != nil { return nil, err }
	if err := binary.Read(r, le, &info.KVCount); err != nil { return nil, err }
	info.KVs = make(map[string]any)
	for i := uint64(0); i < info.KVCount; i++ {
		key, err := readString(r)
		if err != nil { return nil, err }
		var typ uint32
		if err := binary.Read(r, le, &typ); err != nil { return nil, err }
		v, err := readValue(r, typ)
		if err != nil { return nil, errors.Wrapf(err, "gguf: kv %s", key) }
		if v != nil { info.KVs[key] = v }
	}
	for i := uint64(0); i < info.TensorCount; i++ {
		var t GGUFTensorInfo
		if t.Name, err = readString(r); err != nil { return nil, err }
		var nd uint32
		if err := binary.Read(r, le, &nd); err != nil { return nil, err }
		if nd > 8 { return nil, errors.Errorf("gguf: tensor %s has %d dims", t.Name, nd) }
		t.Shape = make([]int, nd)
		for j := int(nd) - 1; j >= 0; j-- {
			var d uint64
			if err := binary.Read(r, le, &d); err != nil { return nil, err }
			t.Shape[j] = int(d)
		}
		if err := binary.Read(r, le, &t.Type); err != nil { return nil, err }
		if err := binary.Read(r, le, &t.Offset); err != nil { return nil, err }
		info.Tensors = append(info.Tensors, t)
	}
	return &info, nil
}

func readString(r io.Reader) (string, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil { return "", err }
	if n > maxGGUFString { return "", errors.Errorf("gguf: string length %d too large", n) }
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil { return "", err }
	return string(b), nil
}

func readValue(r io.Reader, typ uint32) (any, error) {
	le := binary.LittleEndian
	switch typ {
	case GGUFTypeString:
		return readString(r)
	case GGUFTypeBool:
		var b uint8
		err := binary.Read(r, le, &b)
		return b != 0, err
	case GGUFTypeUint8:
		var v uint8
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeInt8:
		var v int8
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeUint16:
		var v uint16
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeInt16:
		var v int16
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeUint32:
		var v uint32
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeInt32:
		var v int32
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeFloat32:
		var v float32
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeUint64:
		var v uint64
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeInt64:
		var v int64
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeFloat64:
		var v float64
		err := binary.Read(r, le, &v)
		return v, err
	case GGUFTypeArray:
		var et uint32
		var n uint64
		if err := binary.Read(r, le, &et); err != nil { return nil, err }
		if err := binary.Read(r, le, &n); err != nil { return nil, err }
		for i := uint64(0); i < n; i++ {
			if _, err := readValue(r, et); err != nil { return nil, err }
		}
		return nil, nil
	}
	return nil, errors.Errorf("unknown value type %d", typ)
}
