// Package downloader fetches remote checkpoints into local temp files.
package downloader

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// IsURL reports whether s names an http(s) resource rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func Download(ctx context.Context, url, out string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil { return err }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("http error: %s", resp.Status)
	}
	f, err := os.Create(out)
	if err != nil { return err }
	defer f.Close()
	if _, err = io.Copy(f, resp.Body); err != nil { return err }
	return f.Close()
}

// Fetch downloads url into a new temp file and returns its path. The caller
// removes it.
func Fetch(ctx context.Context, url string) (string, error) {
	base := path.Base(strings.SplitN(url, "?", 2)[0])
	f, err := os.CreateTemp("", "pthbin-*-"+strings.ReplaceAll(base, "*", "_"))
	if err != nil { return "", err }
	name := f.Name()
	f.Close()
	if err := Download(ctx, url, name); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
