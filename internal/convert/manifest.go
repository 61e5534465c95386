package convert

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	xxh3 "github.com/zeebo/xxh3"
)

const ManifestName = "manifest.json"

type Manifest struct {
	FormatVersion int    `json:"format_version"`
	Algo          string `json:"algo"`
	Files         []File `json:"files"`
}

func WriteManifest(res *Result) error {
	m := Manifest{FormatVersion: 1, Algo: "xxh3-64", Files: lastWritten(res.Files)}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil { return err }
	path := filepath.Join(res.OutputDir, ManifestName)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// lastWritten drops entries whose file was overwritten by a later parameter
// that sanitized to the same name.
func lastWritten(files []File) []File {
	last := make(map[string]int, len(files))
	for i, f := range files { last[f.File] = i }
	out := make([]File, 0, len(last))
	for i, f := range files {
		if last[f.File] == i { out = append(out, f) }
	}
	return out
}

func ReadManifest(dir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil { return nil, err }
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil { return nil, errors.Wrap(err, "parse manifest") }
	if m.Algo != "xxh3-64" { return nil, errors.Errorf("unsupported checksum algo %q", m.Algo) }
	return &m, nil
}

// Mismatch is one file that no longer matches its manifest entry.
type Mismatch struct {
	File   string
	Reason string
}

// Verify checks size and checksum of every file listed in dir's manifest.
func Verify(dir string) ([]Mismatch, error) {
	m, err := ReadManifest(dir)
	if err != nil { return nil, err }
	var bad []Mismatch
	for _, f := range m.Files {
		b, err := os.ReadFile(filepath.Join(dir, f.File))
		if err != nil {
			bad = append(bad, Mismatch{File: f.File, Reason: err.Error()})
			continue
		}
		if int64(len(b)) != f.Size {
			bad = append(bad, Mismatch{File: f.File, Reason: fmt.Sprintf("size %d, want %d", len(b), f.Size)})
			continue
		}
		if h := fmt.Sprintf("%016x", xxh3.Hash(b)); h != f.XXH3 {
			bad = append(bad, Mismatch{File: f.File, Reason: fmt.Sprintf("xxh3 %s, want %s", h, f.XXH3)})
		}
	}
	return bad, nil
}
