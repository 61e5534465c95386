package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	require.True(t, IsURL("https://example.com/model.pth"))
	require.True(t, IsURL("http://localhost:8000/w.pt"))
	require.False(t, IsURL("model.pth"))
	require.False(t, IsURL("/tmp/https/model.pth"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model.pth" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	path, err := Fetch(context.Background(), srv.URL+"/model.pth?download=1")
	require.NoError(t, err)
	defer os.Remove(path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "payload", string(b))

	_, err = Fetch(context.Background(), srv.URL+"/missing.pth")
	require.ErrorContains(t, err, "404")
}
