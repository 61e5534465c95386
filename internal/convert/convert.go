// Package convert writes checkpoint parameters as raw little-endian float32
// files, one per parameter.
package convert

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	xxh3 "github.com/zeebo/xxh3"

	"github.com/qrv0/pthbin/internal/checkpoint"
)

const DefaultOutputDir = "bins"

// FilesystemError reports a failure to create the output directory or write
// one of the files in it.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e *FilesystemError) Unwrap() error { return e.Err }

type Options struct {
	OutputDir string
	// Manifest also writes manifest.json with per-file checksums.
	Manifest bool
	// Out receives progress and summary lines; nil means os.Stdout.
	Out io.Writer
}

// File describes one written parameter file.
type File struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
	Size  int64  `json:"size"`
	XXH3  string `json:"xxh3"`
}

type Result struct {
	OutputDir string
	Files     []File
}

// FileName maps a parameter name to its output file name: every '.' becomes
// '_' and ".bin" is appended. Distinct names may collide; the later one wins.
func FileName(param string) string {
	return strings.ReplaceAll(param, ".", "_") + ".bin"
}

// EncodeF32 lays values out as consecutive 4-byte little-endian floats.
func EncodeF32(a []float32) []byte {
	b := make([]byte, 4*len(a))
	for i, v := range a {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

// FormatShape renders dims the way Python prints a tuple: (), (2,), (2, 3).
func FormatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return "(" + strconv.Itoa(shape[0]) + ",)"
	}
	parts := make([]string, len(shape))
	for i, d := range shape { parts[i] = strconv.Itoa(d) }
	return "(" + strings.Join(parts, ", ") + ")"
}

// joinPath appends name to dir without cleaning dir, so "./bins" prints as
// "./bins/x.bin" the way the user typed it.
func joinPath(dir, name string) string {
	if dir == "" { return name }
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

// quote renders s like Python's repr of a str: single quotes unless s holds a
// single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') { q = '"' }
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case q:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// Run writes every parameter, in order, to opt.OutputDir and prints a progress
// line per file followed by a summary. The first failure aborts the run;
// files already written stay on disk.
func Run(params []checkpoint.Param, opt Options) (*Result, error) {
	if opt.OutputDir == "" { opt.OutputDir = DefaultOutputDir }
	out := opt.Out
	if out == nil { out = os.Stdout }
	if err := os.MkdirAll(opt.OutputDir, 0o755); err != nil {
		return nil, &FilesystemError{Op: "mkdir", Path: opt.OutputDir, Err: err}
	}
	res := &Result{OutputDir: opt.OutputDir, Files: make([]File, 0, len(params))}
	for _, p := range params {
		if len(p.Data) != p.NumElements() {
			return nil, &checkpoint.CastError{Name: p.Name, DType: p.DType,
				Err: errors.Errorf("have %d elements for shape %v", len(p.Data), p.Shape)}
		}
		name := FileName(p.Name)
		path := joinPath(opt.OutputDir, name)
		buf := EncodeF32(p.Data)
		if err := os.WriteFile(path, buf, 0o644); err != nil {
			return nil, &FilesystemError{Op: "write", Path: path, Err: err}
		}
		res.Files = append(res.Files, File{
			Name:  p.Name,
			File:  name,
			Shape: p.Shape,
			DType: p.DType,
			Size:  int64(len(buf)),
			XXH3:  fmt.Sprintf("%016x", xxh3.Hash(buf)),
		})
		fmt.Fprintf(out, "Wrote %-30s → %s  (shape=%s)\n", p.Name, path, FormatShape(p.Shape))
	}
	if opt.Manifest {
		if err := WriteManifest(res); err != nil { return nil, err }
	}
	fmt.Fprintf(out, "\nAll done! %d files written to %s.\n", len(params), quote(opt.OutputDir))
	return res, nil
}
