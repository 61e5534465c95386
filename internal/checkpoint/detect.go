package checkpoint

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	lz4 "github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

var (
	magicZip  = []byte{'P', 'K', 0x03, 0x04}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicLZ4  = []byte{0x04, 0x22, 0x4D, 0x18}
)

const pickleProto = 0x80

type sniffed int

const (
	sniffUnknown sniffed = iota
	sniffTorch
	sniffSafetensors
	sniffZstd
	sniffLZ4
)

func sniff(head []byte) sniffed {
	switch {
	case bytes.HasPrefix(head, magicZip):
		return sniffTorch
	case bytes.HasPrefix(head, magicZstd):
		return sniffZstd
	case bytes.HasPrefix(head, magicLZ4):
		return sniffLZ4
	case len(head) > 0 && head[0] == pickleProto:
		return sniffTorch
	case len(head) >= 9 && head[8] == '{' && binary.LittleEndian.Uint64(head) > 1:
		return sniffSafetensors
	}
	return sniffUnknown
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil { return nil, err }
	defer f.Close()
	head := make([]byte, 16)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF { return nil, err }
	return head[:n], nil
}

// detect returns the checkpoint format at path. If path is compressed, it is
// inflated into a temp file whose name is returned; the caller removes it.
func detect(path string) (Format, string, error) {
	head, err := readHead(path)
	if err != nil { return "", "", err }
	kind := sniff(head)
	tmp := ""
	if kind == sniffZstd || kind == sniffLZ4 {
		tmp, err = inflate(path, kind)
		if err != nil { return "", "", err }
		head, err = readHead(tmp)
		if err != nil { os.Remove(tmp); return "", "", err }
		kind = sniff(head)
	}
	switch kind {
	case sniffTorch:
		return FormatTorch, tmp, nil
	case sniffSafetensors:
		return FormatSafetensors, tmp, nil
	}
	if tmp != "" { os.Remove(tmp) }
	return "", "", errors.New("unrecognized checkpoint format")
}

func inflate(path string, kind sniffed) (string, error) {
	in, err := os.Open(path)
	if err != nil { return "", err }
	defer in.Close()
	var r io.Reader
	switch kind {
	case sniffZstd:
		dec, err := zstd.NewReader(in)
		if err != nil { return "", errors.Wrap(err, "zstd") }
		defer dec.Close()
		r = dec
	case sniffLZ4:
		r = lz4.NewReader(in)
	}
	out, err := os.CreateTemp("", "pthbin-*.ckpt")
	if err != nil { return "", err }
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", errors.Wrap(err, "decompress")
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
